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

const paymentCollectionName = "payments"

type mongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a payment repository backed by MongoDB.
func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection(paymentCollectionName),
	}
}

func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if payment.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("payment requires a memberId")
	}

	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoPaymentRepository) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) ([]domain.Payment, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"memberId": memberID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	payments := []domain.Payment{}
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// DeleteByMemberID drops a member's payment history. Deleting nothing is not an error.
func (r *mongoPaymentRepository) DeleteByMemberID(ctx context.Context, memberID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"memberId": memberID})
	return err
}

// EnsurePaymentIndexes creates necessary indexes for the payments collection.
func EnsurePaymentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "memberId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
