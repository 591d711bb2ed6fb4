package mongo

import (
	"context"
	"errors"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionLogCollectionName = "session_logs"

// mongoSessionLogRepository implements repository.SessionLogRepository
type mongoSessionLogRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionLogRepository creates a new SessionLog repository backed by MongoDB.
func NewMongoSessionLogRepository(db *mongo.Database) repository.SessionLogRepository {
	return &mongoSessionLogRepository{
		collection: db.Collection(sessionLogCollectionName),
	}
}

// Create appends a completion record. The unique
// (subscriptionId, sessionNumber) index rejects a second log for the same
// slot with ErrDuplicate.
func (r *mongoSessionLogRepository) Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error) {
	if log.SubscriptionID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("subscription ID is required")
	}
	if log.SessionNumber < 1 {
		return primitive.NilObjectID, errors.New("session number must be 1-based")
	}

	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()
	if log.DateCompleted.IsZero() {
		log.DateCompleted = log.CreatedAt
	}

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetBySubscriptionID retrieves all completion records for a subscription,
// ordered by session number.
func (r *mongoSessionLogRepository) GetBySubscriptionID(ctx context.Context, subscriptionID primitive.ObjectID) ([]domain.SessionLog, error) {
	filter := bson.M{"subscriptionId": subscriptionID}
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionNumber", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []domain.SessionLog
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// EnsureSessionLogIndexes creates necessary indexes for the session_logs collection.
func EnsureSessionLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "subscriptionId", Value: 1},
				{Key: "sessionNumber", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
