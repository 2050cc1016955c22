package messaging

import (
	"strconv"
	"strings"
	"time"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/roster"
)

// Default reminder bodies per status. Placeholders are filled by RenderTemplate.
const (
	DefaultExpiredTemplate  = "Hi {name}, your {plan} membership expired on {expiry}. Renew today to keep training with us!"
	DefaultExpiringTemplate = "Hi {name}, your {plan} membership expires in {days} day(s) on {expiry}. Fee due: {amount}."
	DefaultActiveTemplate   = "Hi {name}, thanks for training with us! Your {plan} membership is valid till {expiry}."
)

// DefaultTemplate picks the reminder body that fits status.
func DefaultTemplate(status domain.Status) string {
	switch status {
	case domain.StatusExpired:
		return DefaultExpiredTemplate
	case domain.StatusExpiringSoon:
		return DefaultExpiringTemplate
	default:
		return DefaultActiveTemplate
	}
}

// RenderTemplate fills {name}, {plan}, {expiry}, {days}, {amount} and
// {status} for m as of asOf. Unknown placeholders are left untouched.
func RenderTemplate(tpl string, m domain.Member, asOf time.Time) string {
	expiry := m.ExpiryDate
	if d, ok := domain.ParseDate(m.ExpiryDate, asOf.Location()); ok {
		expiry = d.Format("02 Jan 2006")
	}
	days := ""
	if n, ok := roster.DaysLeft(m, asOf); ok {
		days = strconv.Itoa(max(n, 0))
	}

	r := strings.NewReplacer(
		"{name}", m.Name,
		"{plan}", m.Plan,
		"{expiry}", expiry,
		"{days}", days,
		"{amount}", strconv.FormatFloat(m.Amount, 'f', -1, 64),
		"{status}", string(roster.Classify(m, asOf)),
	)
	return r.Replace(tpl)
}
