package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

// MongoInboxRepository implements the InboxRepository interface
type MongoInboxRepository struct {
	collection *mongo.Collection
}

// NewMongoInboxRepository creates a new MongoDB in-app inbox repository
func NewMongoInboxRepository(db *mongo.Database) repository.InboxRepository {
	collection := db.Collection("inAppMessages")

	// Compound index for a passenger's inbox, newest first
	inboxIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "passengerId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}
	collection.Indexes().CreateOne(context.Background(), inboxIndex)

	return &MongoInboxRepository{
		collection: collection,
	}
}

// Insert stores one in-app message. Inserting an existing message ID is a no-op.
func (r *MongoInboxRepository) Insert(ctx context.Context, msg *entity.InAppMessage) error {
	_, err := r.collection.InsertOne(ctx, msg)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

// ListByPassenger returns the passenger's newest messages first
func (r *MongoInboxRepository) ListByPassenger(ctx context.Context, passengerID string, limit int) ([]*entity.InAppMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"passengerId": passengerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []*entity.InAppMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
