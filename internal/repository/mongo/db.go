package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// ConnectDB connects to MongoDB and pings the primary before returning.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection this package owns.
// Call it once during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	return errors.Join(
		EnsureUserIndexes(ctx, db.Collection(userCollectionName)),
		EnsureMemberIndexes(ctx, db.Collection(memberCollectionName)),
		EnsurePaymentIndexes(ctx, db.Collection(paymentCollectionName)),
		EnsureExerciseIndexes(ctx, db.Collection(exerciseCollectionName)),
	)
}

func insertedObjectID(result *mongo.InsertOneResult) (primitive.ObjectID, error) {
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return id, nil
}
