package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-membership/internal/domain"
)

// Error constants for the repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("already exists")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository stores the staff accounts that sign in to the backend.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}

// MemberRepository stores the gym roster. ListMembers returns every member,
// which also makes it usable as a directory.Directory.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error)
	ListMembers(ctx context.Context) ([]domain.Member, error)
	Update(ctx context.Context, member *domain.Member) error
	SetPhotoKey(ctx context.Context, id primitive.ObjectID, key string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// PaymentRepository stores the fee history of members.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error)
	GetByMemberID(ctx context.Context, memberID primitive.ObjectID) ([]domain.Payment, error) // newest first
	DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error
}

// ExerciseFilter narrows List. Empty fields match everything.
type ExerciseFilter struct {
	Tag      string
	Category string
}

// ExerciseTemplateRepository stores the gym's exercise catalog.
type ExerciseTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.ExerciseTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error)
	List(ctx context.Context, filter ExerciseFilter) ([]domain.ExerciseTemplate, error)
	Update(ctx context.Context, tpl *domain.ExerciseTemplate) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
