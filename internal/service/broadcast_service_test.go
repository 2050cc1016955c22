package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository/memory"
	"alcyxob/gym-membership/internal/roster"
)

func broadcastRoster() *memory.Members {
	return memory.NewMembers(
		domain.Member{Name: "Ravi", Phone: "98765 43210", Plan: "Monthly", ExpiryDate: "2025-04-30"},
		domain.Member{Name: "Anita", Phone: "09811122233", Plan: "Monthly", ExpiryDate: "2025-03-07", Amount: 800},
		domain.Member{Name: "Rahul", Phone: "12345", Plan: "Yearly", ExpiryDate: "2025-03-12"},
	)
}

func TestBroadcastTargets_PriorityOrder(t *testing.T) {
	members := broadcastRoster()
	svc := NewBroadcastService(members, clock.NewManualClock(today), Templates{}, "91", nil)

	targets, err := svc.Targets(context.Background(), roster.FilterAll, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Anita", "Rahul", "Ravi"}, memberNames(targets))

	targets, err = svc.Targets(context.Background(), roster.FilterAll, "9876")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ravi"}, memberNames(targets))
}

func TestBroadcastSend_RendersAndFallsBackToWebLink(t *testing.T) {
	members := broadcastRoster()
	svc := NewBroadcastService(members, clock.NewManualClock(today), Templates{Expired: "{name}: lapsed on {expiry}, pay {amount}"}, "91", nil)

	deliveries, err := svc.Send(context.Background(), BroadcastRequest{Status: roster.FilterAll})
	require.NoError(t, err)
	require.Len(t, deliveries, 3)

	anita := deliveries[0]
	assert.Equal(t, "Anita", anita.Name)
	assert.Equal(t, domain.StatusExpired, anita.Status)
	assert.Equal(t, "Anita: lapsed on 07 Mar 2025, pay 800", anita.Message)
	assert.Empty(t, anita.Error)
	require.True(t, strings.HasPrefix(anita.Link, "https://wa.me/919811122233?"))
	link, err := url.Parse(anita.Link)
	require.NoError(t, err)
	assert.Equal(t, anita.Message, link.Query().Get("text"))

	rahul := deliveries[1]
	assert.Equal(t, domain.StatusExpiringSoon, rahul.Status)
	assert.Contains(t, rahul.Message, "expires in 2 day(s)")
	assert.Empty(t, rahul.Link)
	assert.Contains(t, rahul.Error, "malformed phone number")

	ravi := deliveries[2]
	assert.Equal(t, domain.StatusActive, ravi.Status)
	assert.Contains(t, ravi.Message, "valid till 30 Apr 2025")
	assert.True(t, strings.HasPrefix(ravi.Link, "https://wa.me/919876543210?"))
}

func TestBroadcastSend_SelectedMembersAndCustomTemplate(t *testing.T) {
	members := broadcastRoster()
	svc := NewBroadcastService(members, clock.NewManualClock(today), Templates{}, "91", nil)
	raviID := members.IDs()[0].Hex()

	deliveries, err := svc.Send(context.Background(), BroadcastRequest{
		MemberIDs: []string{raviID},
		Template:  "Hi {name}, gym closed Sunday.",
	})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, raviID, deliveries[0].MemberID)
	assert.Equal(t, "Hi Ravi, gym closed Sunday.", deliveries[0].Message)
}

func TestBroadcastSend_StatusFilter(t *testing.T) {
	members := broadcastRoster()
	svc := NewBroadcastService(members, clock.NewManualClock(today), Templates{}, "91", nil)

	deliveries, err := svc.Send(context.Background(), BroadcastRequest{Status: roster.StatusFilter(domain.StatusExpired)})
	require.NoError(t, err)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "Anita", deliveries[0].Name)
}

func TestTemplatesFor(t *testing.T) {
	tpls := Templates{Active: "custom"}
	assert.Equal(t, "custom", tpls.For(domain.StatusActive))
	assert.NotEmpty(t, tpls.For(domain.StatusExpired))
	assert.NotEqual(t, tpls.For(domain.StatusExpired), tpls.For(domain.StatusExpiringSoon))
}

func TestDashboardSummary(t *testing.T) {
	members := memory.NewMembers(
		domain.Member{Name: "Ravi", JoiningDate: "2025-03-02", ExpiryDate: "2025-04-30", Amount: 800},
		domain.Member{Name: "Anita", JoiningDate: "2025-01-07", ExpiryDate: "2025-03-07", Amount: 1500},
		domain.Member{Name: "Rahul", JoiningDate: "2024-03-12", ExpiryDate: "2025-03-12", Amount: 8000},
		domain.Member{Name: "Off", JoiningDate: "2025-03-01", ExpiryDate: "2025-09-01", Status: "Expired"},
	)
	svc := NewDashboardService(members, clock.NewManualClock(today))

	sum, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 1, sum.Active)
	assert.Equal(t, 1, sum.ExpiringSoon)
	assert.Equal(t, 2, sum.Expired)
	assert.Equal(t, 10300.0, sum.TotalFees)
	assert.Equal(t, 2, sum.NewThisMonth)
	require.Len(t, sum.Expiring, 1)
	assert.Equal(t, "Rahul", sum.Expiring[0].Member.Name)
	assert.Equal(t, 2, sum.Expiring[0].DaysLeft)
}
