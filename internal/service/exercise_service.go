package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository"
)

var ErrExerciseNotFound = errors.New("exercise template not found")

// ExerciseInput carries the editable fields of a template.
type ExerciseInput struct {
	Name        string
	Description string
	Category    string
	Tags        []string
	Sets        int
	Reps        string
	VideoURL    string
}

// ExerciseQuery narrows the catalog listing. Search matches name or
// description as a case-insensitive substring.
type ExerciseQuery struct {
	Tag      string
	Category string
	Search   string
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, createdBy primitive.ObjectID, in ExerciseInput) (*domain.ExerciseTemplate, error)
	GetExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error)
	ListExercises(ctx context.Context, q ExerciseQuery) ([]domain.ExerciseTemplate, error)
	UpdateExercise(ctx context.Context, id primitive.ObjectID, in ExerciseInput) (*domain.ExerciseTemplate, error)
	DeleteExercise(ctx context.Context, id primitive.ObjectID) error
}

type exerciseService struct {
	exerciseRepo repository.ExerciseTemplateRepository
}

func NewExerciseService(exerciseRepo repository.ExerciseTemplateRepository) ExerciseService {
	return &exerciseService{exerciseRepo: exerciseRepo}
}

func (s *exerciseService) CreateExercise(ctx context.Context, createdBy primitive.ObjectID, in ExerciseInput) (*domain.ExerciseTemplate, error) {
	if createdBy == primitive.NilObjectID {
		return nil, errors.New("creator ID is required to create an exercise")
	}
	tpl := &domain.ExerciseTemplate{CreatedBy: createdBy}
	if err := applyExercise(tpl, in); err != nil {
		return nil, err
	}

	id, err := s.exerciseRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	tpl.ID = id
	return tpl, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error) {
	tpl, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, q ExerciseQuery) ([]domain.ExerciseTemplate, error) {
	all, err := s.exerciseRepo.List(ctx, repository.ExerciseFilter{
		Tag:      strings.TrimSpace(q.Tag),
		Category: strings.TrimSpace(q.Category),
	})
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(q.Search))
	if needle == "" {
		return all, nil
	}
	out := make([]domain.ExerciseTemplate, 0, len(all))
	for _, tpl := range all {
		if strings.Contains(strings.ToLower(tpl.Name), needle) ||
			strings.Contains(strings.ToLower(tpl.Description), needle) {
			out = append(out, tpl)
		}
	}
	return out, nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, id primitive.ObjectID, in ExerciseInput) (*domain.ExerciseTemplate, error) {
	tpl, err := s.GetExerciseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyExercise(tpl, in); err != nil {
		return nil, err
	}
	if err := s.exerciseRepo.Update(ctx, tpl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func (s *exerciseService) DeleteExercise(ctx context.Context, id primitive.ObjectID) error {
	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

func applyExercise(tpl *domain.ExerciseTemplate, in ExerciseInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: exercise name is required", ErrValidationFailed)
	}
	if in.Sets < 0 {
		return fmt.Errorf("%w: sets cannot be negative", ErrValidationFailed)
	}

	// Drop blank and duplicate tags, keeping the first spelling.
	tags := make([]string, 0, len(in.Tags))
	seen := domain.ExerciseTemplate{}
	for _, t := range in.Tags {
		t = strings.TrimSpace(t)
		if t == "" || seen.HasTag(t) {
			continue
		}
		seen.Tags = append(seen.Tags, t)
		tags = append(tags, t)
	}

	tpl.Name = name
	tpl.Description = strings.TrimSpace(in.Description)
	tpl.Category = strings.TrimSpace(in.Category)
	tpl.Tags = tags
	tpl.Sets = in.Sets
	tpl.Reps = strings.TrimSpace(in.Reps)
	tpl.VideoURL = strings.TrimSpace(in.VideoURL)
	return nil
}
