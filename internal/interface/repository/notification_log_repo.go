package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"flightalert-service/internal/domain/entity"
	"flightalert-service/internal/domain/repository"
)

// MongoNotificationLogRepository implements the NotificationLogRepository interface
type MongoNotificationLogRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationLogRepository creates a new MongoDB notification log repository
func NewMongoNotificationLogRepository(db *mongo.Database) repository.NotificationLogRepository {
	collection := db.Collection("notificationLogs")

	ctx := context.Background()

	// Attempts of one job, in order
	jobIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "jobId", Value: 1},
			{Key: "attempt", Value: 1},
		},
	}

	// Index on sentAt for the history view
	sentAtIndex := mongo.IndexModel{
		Keys: bson.M{"sentAt": -1},
	}

	flightIndex := mongo.IndexModel{
		Keys: bson.M{"flightId": 1},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		jobIndex,
		sentAtIndex,
		flightIndex,
	})

	return &MongoNotificationLogRepository{
		collection: collection,
	}
}

// Append inserts one delivery attempt
func (r *MongoNotificationLogRepository) Append(ctx context.Context, log *entity.NotificationLog) error {
	_, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to insert notification log: %w", err)
	}
	return nil
}

// ListRecent returns the newest attempts first
func (r *MongoNotificationLogRepository) ListRecent(ctx context.Context, limit int) ([]*entity.NotificationLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sentAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []*entity.NotificationLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
