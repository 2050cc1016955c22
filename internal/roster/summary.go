package roster

import (
	"slices"
	"time"

	"alcyxob/gym-membership/internal/domain"
)

// ExpiringMember is a member in the expiring window with the days remaining.
type ExpiringMember struct {
	Member   domain.Member
	DaysLeft int
}

// Summary is the dashboard view of the roster.
type Summary struct {
	Total        int
	Active       int
	ExpiringSoon int
	Expired      int
	// TotalFees sums the fee amount of every member on the roster.
	TotalFees float64
	// NewThisMonth counts members whose joining date falls in asOf's month.
	NewThisMonth int
	// Expiring lists Expiring Soon members, fewest days left first.
	Expiring []ExpiringMember
}

// Summarize computes dashboard counts with the same classification the
// member list and the reminder list use.
func Summarize(records []domain.Member, asOf time.Time) Summary {
	s := Summary{Total: len(records), Expiring: []ExpiringMember{}}
	year, month, _ := asOf.Date()

	for _, m := range records {
		status := Classify(m, asOf)
		switch status {
		case domain.StatusExpired:
			s.Expired++
		case domain.StatusExpiringSoon:
			s.ExpiringSoon++
			days, _ := DaysLeft(m, asOf)
			s.Expiring = append(s.Expiring, ExpiringMember{Member: m, DaysLeft: days})
		default:
			s.Active++
		}
		s.TotalFees += m.Amount

		if joined, ok := domain.ParseDate(m.JoiningDate, asOf.Location()); ok {
			if y, mo, _ := joined.Date(); y == year && mo == month {
				s.NewThisMonth++
			}
		}
	}

	slices.SortStableFunc(s.Expiring, func(a, b ExpiringMember) int {
		return a.DaysLeft - b.DaysLeft
	})
	return s
}
