// Package roster classifies memberships and answers filter, search and sort
// queries over a member list. Every function is pure: callers hand in a
// snapshot of members and the reference time, nothing is cached or mutated.
package roster

import (
	"time"

	"alcyxob/gym-membership/internal/domain"
)

// ExpiringWindowDays is how many days ahead of expiry a membership is
// reported as expiring soon. The expiry day itself counts as day 0.
const ExpiringWindowDays = 7

// DaysLeft returns the whole calendar days from asOf to the member's expiry
// date. ok is false when the member has no usable expiry date. The result is
// negative once the membership has lapsed.
func DaysLeft(m domain.Member, asOf time.Time) (days int, ok bool) {
	expiry, ok := domain.ParseDate(m.ExpiryDate, asOf.Location())
	if !ok {
		return 0, false
	}
	diff := domain.CivilDay(expiry).Sub(domain.CivilDay(asOf))
	return int(diff.Hours() / 24), true
}

// Classify derives the lifecycle status of m as of asOf.
//
// A server-supplied status is taken as the base value when it names one of
// the known statuses, except that "Active" is upgraded to "Expiring Soon"
// when the dates say so. Members without a parsable expiry are Active.
func Classify(m domain.Member, asOf time.Time) domain.Status {
	computed := classifyByDate(m, asOf)
	hint, ok := domain.ParseStatus(m.Status)
	if !ok {
		return computed
	}
	if hint == domain.StatusActive && computed == domain.StatusExpiringSoon {
		return domain.StatusExpiringSoon
	}
	return hint
}

func classifyByDate(m domain.Member, asOf time.Time) domain.Status {
	days, ok := DaysLeft(m, asOf)
	switch {
	case !ok:
		return domain.StatusActive
	case days < 0:
		return domain.StatusExpired
	case days <= ExpiringWindowDays:
		return domain.StatusExpiringSoon
	default:
		return domain.StatusActive
	}
}

// priority orders statuses for the reminder list: lapsed members first.
func priority(s domain.Status) int {
	switch s {
	case domain.StatusExpired:
		return 0
	case domain.StatusExpiringSoon:
		return 1
	default:
		return 2
	}
}
