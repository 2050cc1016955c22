package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/repository"
)

const memberCollectionName = "members"

// mongoMemberRepository implements repository.MemberRepository
type mongoMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberRepository creates a member repository backed by MongoDB.
func NewMongoMemberRepository(db *mongo.Database) repository.MemberRepository {
	return &mongoMemberRepository{
		collection: db.Collection(memberCollectionName),
	}
}

func (r *mongoMemberRepository) Create(ctx context.Context, member *domain.Member) (primitive.ObjectID, error) {
	if member.Name == "" {
		return primitive.NilObjectID, errors.New("member name is required")
	}

	member.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	member.CreatedAt = now
	member.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, member)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoMemberRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Member, error) {
	var member domain.Member
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// ListMembers returns the whole roster sorted by name. The roster engine
// does its own ordering, this just keeps the raw listing stable.
func (r *mongoMemberRepository) ListMembers(ctx context.Context) ([]domain.Member, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	members := []domain.Member{}
	if err = cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Update replaces the writable fields of a member. PhotoKey and CreatedAt are left alone.
func (r *mongoMemberRepository) Update(ctx context.Context, member *domain.Member) error {
	if member.ID == primitive.NilObjectID {
		return errors.New("member ID is required for update")
	}
	if member.Name == "" {
		return errors.New("member name cannot be empty")
	}

	member.UpdatedAt = time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":        member.Name,
			"phone":       member.Phone,
			"plan":        member.Plan,
			"joiningDate": member.JoiningDate,
			"expiryDate":  member.ExpiryDate,
			"amount":      member.Amount,
			"weight":      member.Weight,
			"height":      member.Height,
			"status":      member.Status,
			"updatedAt":   member.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": member.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMemberRepository) SetPhotoKey(ctx context.Context, id primitive.ObjectID, key string) error {
	update := bson.M{"$set": bson.M{"photoKey": key, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoMemberRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMemberIndexes creates necessary indexes for the members collection.
func EnsureMemberIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
		{Keys: bson.D{{Key: "expiryDate", Value: 1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
