package roster

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"alcyxob/gym-membership/internal/domain"
)

// StatusFilter selects members by lifecycle status. The zero value and
// FilterAll keep everyone.
type StatusFilter string

const FilterAll StatusFilter = "All"

// ParseStatusFilter accepts "All" (or empty) and the three status names,
// case-insensitively.
func ParseStatusFilter(s string) (StatusFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, string(FilterAll)) {
		return FilterAll, nil
	}
	st, ok := domain.ParseStatus(s)
	if !ok {
		return "", fmt.Errorf("unknown status filter %q", s)
	}
	return StatusFilter(st), nil
}

// Tab identifies which screen the query serves. The messaging tab also
// matches phone numbers and sorts lapsed members to the top.
type Tab string

const (
	TabMembers   Tab = "members"
	TabDashboard Tab = "dashboard"
	TabMessaging Tab = "messaging"
)

// ParseTab maps user input to a Tab, defaulting to TabMembers.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(TabMembers):
		return TabMembers, nil
	case string(TabDashboard):
		return TabDashboard, nil
	case string(TabMessaging), "whatsapp":
		return TabMessaging, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// Options narrows a Query.
type Options struct {
	Status StatusFilter
	Search string
	Tab    Tab
}

// Query filters records by status, then by search text, and for the
// messaging tab sorts them by priority. The input slice is never modified;
// with no status filter and no search text on a non-messaging tab the
// result equals the input in content and order.
func Query(records []domain.Member, asOf time.Time, opts Options) []domain.Member {
	out := make([]domain.Member, 0, len(records))

	wantStatus := opts.Status != "" && opts.Status != FilterAll
	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	matchPhone := opts.Tab == TabMessaging
	needleDigits := ""
	if matchPhone {
		needleDigits = domain.PhoneDigits(needle)
	}

	for _, m := range records {
		if wantStatus && Classify(m, asOf) != domain.Status(opts.Status) {
			continue
		}
		if needle != "" && !matches(m, needle, needleDigits, matchPhone) {
			continue
		}
		out = append(out, m)
	}

	if opts.Tab == TabMessaging {
		PrioritySort(out, asOf)
	}
	return out
}

func matches(m domain.Member, needle, needleDigits string, matchPhone bool) bool {
	if strings.Contains(strings.ToLower(m.Name), needle) {
		return true
	}
	if matchPhone && needleDigits != "" {
		return strings.Contains(domain.PhoneDigits(m.Phone), needleDigits)
	}
	return false
}

// PrioritySort orders records in place: Expired, then Expiring Soon, then
// Active. Members with the same status keep their relative order.
func PrioritySort(records []domain.Member, asOf time.Time) {
	// Classify once per member rather than once per comparison.
	keys := make([]int, len(records))
	idx := make([]int, len(records))
	for i, m := range records {
		idx[i] = i
		keys[i] = priority(Classify(m, asOf))
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return keys[a] - keys[b]
	})
	sorted := make([]domain.Member, len(records))
	for i, j := range idx {
		sorted[i] = records[j]
	}
	copy(records, sorted)
}
