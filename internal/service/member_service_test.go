package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-membership/internal/clock"
	"alcyxob/gym-membership/internal/directory"
	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository/memory"
	"alcyxob/gym-membership/internal/roster"
)

var today = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

type memberFixture struct {
	svc      MemberService
	members  *memory.Members
	payments *memory.Payments
	files    *fakeStorage
	clock    *clock.ManualClock
}

func newMemberFixture(seed ...domain.Member) memberFixture {
	f := memberFixture{
		members:  memory.NewMembers(seed...),
		payments: memory.NewPayments(),
		files:    newFakeStorage(),
		clock:    clock.NewManualClock(today),
	}
	f.svc = NewMemberService(f.members, f.payments, directory.NewDeduped(f.members), f.files, f.clock, nil)
	return f
}

func TestCreate_DerivesDatesFromPlan(t *testing.T) {
	f := newMemberFixture()
	ctx := context.Background()

	m, err := f.svc.Create(ctx, MemberInput{Name: "  Ravi Kumar ", Phone: "98765 43210", Plan: "Half-Yearly", Amount: 4500})
	require.NoError(t, err)
	assert.False(t, m.ID.IsZero())
	assert.Equal(t, "Ravi Kumar", m.Name)
	assert.Equal(t, "2025-03-10", m.JoiningDate)
	assert.Equal(t, "2025-09-10", m.ExpiryDate)

	m, err = f.svc.Create(ctx, MemberInput{Name: "Anita", JoiningDate: "15/01/2025"})
	require.NoError(t, err)
	assert.Equal(t, "Monthly", m.Plan)
	assert.Equal(t, "2025-01-15", m.JoiningDate)
	assert.Equal(t, "2025-02-15", m.ExpiryDate)

	m, err = f.svc.Create(ctx, MemberInput{Name: "Meena", Plan: "Yearly", JoiningDate: "2025-01-01", ExpiryDate: "2025-06-30"})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-30", m.ExpiryDate, "explicit expiry wins")
}

func TestCreate_Validation(t *testing.T) {
	f := newMemberFixture()
	ctx := context.Background()

	cases := []MemberInput{
		{Name: " "},
		{Name: "A", Amount: -1},
		{Name: "A", Weight: ptr(0)},
		{Name: "A", JoiningDate: "yesterday"},
		{Name: "A", ExpiryDate: "31-31-2025"},
	}
	for _, in := range cases {
		_, err := f.svc.Create(ctx, in)
		assert.ErrorIs(t, err, ErrValidationFailed, "%+v", in)
	}
}

func TestList_UsesRosterQueryAsOfToday(t *testing.T) {
	f := newMemberFixture(
		domain.Member{Name: "Ravi", Phone: "9876543210", ExpiryDate: "2025-04-30"},
		domain.Member{Name: "Anita", Phone: "9811122233", ExpiryDate: "2025-03-07"},
		domain.Member{Name: "Rahul", Phone: "9000000001", ExpiryDate: "2025-03-12"},
	)
	ctx := context.Background()

	all, err := f.svc.List(ctx, roster.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ravi", "Anita", "Rahul"}, memberNames(all))

	expiring, err := f.svc.List(ctx, roster.Options{Status: roster.StatusFilter(domain.StatusExpiringSoon)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rahul"}, memberNames(expiring))

	messaging, err := f.svc.List(ctx, roster.Options{Tab: roster.TabMessaging})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anita", "Rahul", "Ravi"}, memberNames(messaging))

	byPhone, err := f.svc.List(ctx, roster.Options{Tab: roster.TabMessaging, Search: "98111"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anita"}, memberNames(byPhone))

	// Time moves on: Ravi enters the expiring window.
	f.clock.Set(time.Date(2025, 4, 25, 9, 0, 0, 0, time.UTC))
	expiring, err = f.svc.List(ctx, roster.Options{Status: roster.StatusFilter(domain.StatusExpiringSoon)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ravi"}, memberNames(expiring))
}

func TestDeactivate_OverridesFutureExpiry(t *testing.T) {
	f := newMemberFixture(domain.Member{Name: "Ravi", ExpiryDate: "2025-12-31"})
	ctx := context.Background()
	id := f.members.IDs()[0]

	m, err := f.svc.Deactivate(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExpired, roster.Classify(*m, today))

	expired, err := f.svc.List(ctx, roster.Options{Status: roster.StatusFilter(domain.StatusExpired)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ravi"}, memberNames(expired))

	_, err = f.svc.Deactivate(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestUpdate_KeepsPhotoAndExpiry(t *testing.T) {
	f := newMemberFixture(domain.Member{Name: "Ravi", Plan: "Monthly", JoiningDate: "2025-03-01", ExpiryDate: "2025-04-01", PhotoKey: "members/x/photo-1.jpg"})
	id := f.members.IDs()[0]

	m, err := f.svc.Update(context.Background(), id, MemberInput{Name: "Ravi K", Plan: "Quarterly", JoiningDate: "2025-03-01", Weight: ptr(70), Height: ptr(175)})
	require.NoError(t, err)
	assert.Equal(t, "2025-04-01", m.ExpiryDate, "plan label change does not move expiry")

	m, err = f.svc.Update(context.Background(), id, MemberInput{Name: "Ravi K", Plan: "Quarterly", ExpiryDate: "2025-06-01", Weight: ptr(70), Height: ptr(175)})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", m.ExpiryDate)
	assert.Equal(t, "2025-03-01", m.JoiningDate)

	stored, err := f.svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ravi K", stored.Name)
	assert.Equal(t, "members/x/photo-1.jpg", stored.PhotoKey)

	bmi, err := f.svc.BMI(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 22.9, bmi.Value)
	assert.Equal(t, roster.BMINormal, bmi.Category)
}

func TestUpdate_WithoutDatesKeepsRenewal(t *testing.T) {
	f := newMemberFixture()
	ctx := context.Background()
	payments := NewPaymentService(f.members, f.payments, f.clock, nil)

	m, err := f.svc.Create(ctx, MemberInput{Name: "Ravi", Phone: "98765 43210", Plan: "Monthly", JoiningDate: "2025-01-01", Amount: 800})
	require.NoError(t, err)
	require.Equal(t, "2025-02-01", m.ExpiryDate)

	_, renewed, err := payments.RecordPayment(ctx, m.ID, primitive.NewObjectID(), PaymentInput{Amount: 800, PaidOn: "2025-03-05"})
	require.NoError(t, err)
	require.Equal(t, "2025-04-05", renewed.ExpiryDate)

	f.clock.Set(time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC))
	m, err = f.svc.Update(ctx, m.ID, MemberInput{Name: "Ravi", Phone: "98765 00000", Plan: "Monthly", Amount: 800})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", m.JoiningDate)
	assert.Equal(t, "2025-04-05", m.ExpiryDate)

	stored, err := f.svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", stored.JoiningDate)
	assert.Equal(t, "2025-04-05", stored.ExpiryDate)
	assert.Equal(t, 0, roster.Summarize([]domain.Member{*stored}, f.clock.Now()).NewThisMonth)
}

func TestBMI_WithoutMeasurements(t *testing.T) {
	f := newMemberFixture(domain.Member{Name: "Ravi"})
	_, err := f.svc.BMI(context.Background(), f.members.IDs()[0])
	assert.ErrorIs(t, err, ErrNoMeasurements)
}

func TestPhotoFlow(t *testing.T) {
	f := newMemberFixture(domain.Member{Name: "Ravi"})
	ctx := context.Background()
	id := f.members.IDs()[0]

	_, err := f.svc.PhotoUploadURL(ctx, id, "application/zip")
	assert.ErrorIs(t, err, ErrValidationFailed)

	up, err := f.svc.PhotoUploadURL(ctx, id, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.Key, "members/"+id.Hex()+"/photo-"))
	assert.Contains(t, up.URL, up.Key)
	assert.True(t, up.ExpiresAt.After(today))

	_, err = f.svc.ConfirmPhoto(ctx, id, up.Key)
	assert.ErrorIs(t, err, ErrPhotoNotUploaded)

	_, err = f.svc.ConfirmPhoto(ctx, id, "members/someone-else/photo-1.png")
	assert.ErrorIs(t, err, ErrPhotoKeyMismatch)

	f.files.upload(up.Key)
	m, err := f.svc.ConfirmPhoto(ctx, id, up.Key)
	require.NoError(t, err)
	assert.Equal(t, up.Key, m.PhotoKey)

	url, err := f.svc.PhotoURL(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/get/"+up.Key, url)

	// A replacement photo deletes the previous object.
	second, err := f.svc.PhotoUploadURL(ctx, id, "image/jpeg")
	require.NoError(t, err)
	f.files.upload(second.Key)
	_, err = f.svc.ConfirmPhoto(ctx, id, second.Key)
	require.NoError(t, err)
	assert.Equal(t, []string{up.Key}, f.files.deleted)
}

func TestPhotoWithoutStorage(t *testing.T) {
	members := memory.NewMembers(domain.Member{Name: "Ravi"})
	svc := NewMemberService(members, memory.NewPayments(), members, nil, clock.NewManualClock(today), nil)

	_, err := svc.PhotoUploadURL(context.Background(), members.IDs()[0], "image/png")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestDelete_RemovesPaymentsAndPhoto(t *testing.T) {
	f := newMemberFixture(domain.Member{Name: "Ravi", PhotoKey: "members/r/photo-1.jpg"})
	ctx := context.Background()
	id := f.members.IDs()[0]
	_, err := f.payments.Create(ctx, &domain.Payment{MemberID: id, Amount: 800})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, id))
	_, err = f.svc.Get(ctx, id)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	left, err := f.payments.GetByMemberID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, []string{"members/r/photo-1.jpg"}, f.files.deleted)

	assert.ErrorIs(t, f.svc.Delete(ctx, id), ErrMemberNotFound)
}

func memberNames(ms []domain.Member) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name
	}
	return out
}
