// Package memory implements the repositories in memory for development and testing.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository"
)

var (
	_ repository.UserRepository             = (*Users)(nil)
	_ repository.MemberRepository           = (*Members)(nil)
	_ repository.PaymentRepository          = (*Payments)(nil)
	_ repository.ExerciseTemplateRepository = (*Exercises)(nil)
)

// --- Users ---

type Users struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]domain.User
}

func NewUsers() *Users {
	return &Users{byID: make(map[primitive.ObjectID]domain.User)}
}

func (r *Users) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.byID {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	return user.ID, nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) Count(context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

// --- Members ---

// Members keeps insertion order so listings are stable.
type Members struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	byID  map[primitive.ObjectID]domain.Member
}

// NewMembers creates a member store holding seed, in order.
func NewMembers(seed ...domain.Member) *Members {
	r := &Members{byID: make(map[primitive.ObjectID]domain.Member)}
	for _, m := range seed {
		_, _ = r.Create(context.Background(), &m)
	}
	return r
}

// IDs returns member IDs in insertion order.
func (r *Members) IDs() []primitive.ObjectID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]primitive.ObjectID, 0, len(r.order))
	for _, id := range r.order {
		if _, ok := r.byID[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (r *Members) Create(_ context.Context, member *domain.Member) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	member.CreatedAt, member.UpdatedAt = now, now
	r.order = append(r.order, member.ID)
	r.byID[member.ID] = cloneMember(*member)
	return member.ID, nil
}

func (r *Members) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	m = cloneMember(m)
	return &m, nil
}

func (r *Members) ListMembers(context.Context) ([]domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Member, 0, len(r.byID))
	for _, id := range r.order {
		if m, ok := r.byID[id]; ok {
			out = append(out, cloneMember(m))
		}
	}
	return out, nil
}

// Update mirrors the Mongo repository: PhotoKey and CreatedAt are kept.
func (r *Members) Update(_ context.Context, member *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[member.ID]
	if !ok {
		return repository.ErrNotFound
	}
	member.PhotoKey = existing.PhotoKey
	member.CreatedAt = existing.CreatedAt
	member.UpdatedAt = time.Now().UTC()
	r.byID[member.ID] = cloneMember(*member)
	return nil
}

func (r *Members) SetPhotoKey(_ context.Context, id primitive.ObjectID, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.PhotoKey = key
	m.UpdatedAt = time.Now().UTC()
	r.byID[id] = m
	return nil
}

func (r *Members) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneMember(m domain.Member) domain.Member {
	if m.Weight != nil {
		w := *m.Weight
		m.Weight = &w
	}
	if m.Height != nil {
		h := *m.Height
		m.Height = &h
	}
	return m
}

// --- Payments ---

type Payments struct {
	mu       sync.RWMutex
	payments []domain.Payment
}

func NewPayments() *Payments { return &Payments{} }

func (r *Payments) Create(_ context.Context, p *domain.Payment) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	r.payments = append(r.payments, *p)
	return p.ID, nil
}

// GetByMemberID returns the member's payments, most recently recorded first.
func (r *Payments) GetByMemberID(_ context.Context, memberID primitive.ObjectID) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Payment{}
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].MemberID == memberID {
			out = append(out, r.payments[i])
		}
	}
	return out, nil
}

func (r *Payments) DeleteByMemberID(_ context.Context, memberID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = slices.DeleteFunc(r.payments, func(p domain.Payment) bool {
		return p.MemberID == memberID
	})
	return nil
}

// --- Exercise templates ---

type Exercises struct {
	mu   sync.RWMutex
	byID map[primitive.ObjectID]domain.ExerciseTemplate
}

func NewExercises() *Exercises {
	return &Exercises{byID: make(map[primitive.ObjectID]domain.ExerciseTemplate)}
}

func (r *Exercises) Create(_ context.Context, tpl *domain.ExerciseTemplate) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt, tpl.UpdatedAt = now, now
	r.byID[tpl.ID] = cloneTemplate(*tpl)
	return tpl.ID, nil
}

func (r *Exercises) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	tpl = cloneTemplate(tpl)
	return &tpl, nil
}

// List filters like the Mongo repository and sorts by name.
func (r *Exercises) List(_ context.Context, filter repository.ExerciseFilter) ([]domain.ExerciseTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.ExerciseTemplate{}
	for _, tpl := range r.byID {
		if filter.Tag != "" && !tpl.HasTag(filter.Tag) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(tpl.Category, filter.Category) {
			continue
		}
		out = append(out, cloneTemplate(tpl))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Exercises) Update(_ context.Context, tpl *domain.ExerciseTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[tpl.ID]
	if !ok {
		return repository.ErrNotFound
	}
	tpl.CreatedBy = existing.CreatedBy
	tpl.CreatedAt = existing.CreatedAt
	tpl.UpdatedAt = time.Now().UTC()
	r.byID[tpl.ID] = cloneTemplate(*tpl)
	return nil
}

func (r *Exercises) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneTemplate(t domain.ExerciseTemplate) domain.ExerciseTemplate {
	t.Tags = slices.Clone(t.Tags)
	return t
}
