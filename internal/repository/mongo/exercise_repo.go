package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository"
)

const exerciseCollectionName = "exercise_templates"

// mongoExerciseRepository implements repository.ExerciseTemplateRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates an exercise template repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseTemplateRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new template into the catalog.
func (r *mongoExerciseRepository) Create(ctx context.Context, tpl *domain.ExerciseTemplate) (primitive.ObjectID, error) {
	if tpl.Name == "" || tpl.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and creator are required")
	}

	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error) {
	var tpl domain.ExerciseTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// List returns templates matching filter, sorted by name. Tag and category
// match whole values, case-insensitively.
func (r *mongoExerciseRepository) List(ctx context.Context, filter repository.ExerciseFilter) ([]domain.ExerciseTemplate, error) {
	query := bson.M{}
	if filter.Tag != "" {
		query["tags"] = exactFold(filter.Tag)
	}
	if filter.Category != "" {
		query["category"] = exactFold(filter.Category)
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []domain.ExerciseTemplate{}
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Update modifies an existing template. CreatedBy is never changed.
func (r *mongoExerciseRepository) Update(ctx context.Context, tpl *domain.ExerciseTemplate) error {
	if tpl.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if tpl.Name == "" {
		return errors.New("exercise name cannot be empty")
	}

	tpl.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        tpl.Name,
			"description": tpl.Description,
			"category":    tpl.Category,
			"tags":        tpl.Tags,
			"sets":        tpl.Sets,
			"reps":        tpl.Reps,
			"videoUrl":    tpl.VideoURL,
			"updatedAt":   tpl.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": tpl.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func exactFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(s) + "$", Options: "i"}
}

// EnsureExerciseIndexes creates necessary indexes for the exercise catalog.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{
			Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("exercise_text_search"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
