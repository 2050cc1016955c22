package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alcyxob/gym-membership/internal/domain"
)

func TestSummarize(t *testing.T) {
	in := sampleRoster()
	in[0].Amount = 1000
	in[1].Amount = 2500.5
	in[0].JoiningDate = "2025-03-01"
	in[2].JoiningDate = "2025-02-28"
	in[3].JoiningDate = "10/03/2025"

	s := Summarize(in, asOf)
	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 2, s.Active)
	assert.Equal(t, 2, s.ExpiringSoon)
	assert.Equal(t, 2, s.Expired)
	assert.Equal(t, 3500.5, s.TotalFees)
	assert.Equal(t, 2, s.NewThisMonth)

	require.Len(t, s.Expiring, 2)
	assert.Equal(t, "Rahul Verma", s.Expiring[0].Member.Name)
	assert.Equal(t, 2, s.Expiring[0].DaysLeft)
	assert.Equal(t, "Arjun Rao", s.Expiring[1].Member.Name)
	assert.Equal(t, 7, s.Expiring[1].DaysLeft)
}

func TestSummarize_CountsMatchQuery(t *testing.T) {
	in := sampleRoster()
	s := Summarize(in, asOf)
	assert.Len(t, Query(in, asOf, Options{Status: StatusFilter(domain.StatusActive)}), s.Active)
	assert.Len(t, Query(in, asOf, Options{Status: StatusFilter(domain.StatusExpiringSoon)}), s.ExpiringSoon)
	assert.Len(t, Query(in, asOf, Options{Status: StatusFilter(domain.StatusExpired)}), s.Expired)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, asOf)
	assert.Zero(t, s.Total)
	assert.NotNil(t, s.Expiring)
}
