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

const reportCollectionName = "session_reports"

// mongoReportRepository implements repository.SessionReportRepository
type mongoReportRepository struct {
	collection *mongo.Collection
}

// NewMongoReportRepository creates a new SessionReport repository backed by MongoDB.
func NewMongoReportRepository(db *mongo.Database) repository.SessionReportRepository {
	return &mongoReportRepository{
		collection: db.Collection(reportCollectionName),
	}
}

// Create inserts metadata for an archived session report.
func (r *mongoReportRepository) Create(ctx context.Context, report *domain.SessionReport) (primitive.ObjectID, error) {
	if report.GroupSessionID == primitive.NilObjectID || report.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("group session ID and object key are required")
	}

	report.ID = primitive.NewObjectID()
	if report.ArchivedAt.IsZero() {
		report.ArchivedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByGroupSessionID retrieves the archive metadata for a group session.
func (r *mongoReportRepository) GetByGroupSessionID(ctx context.Context, groupSessionID primitive.ObjectID) (*domain.SessionReport, error) {
	var report domain.SessionReport
	err := r.collection.FindOne(ctx, bson.M{"groupSessionId": groupSessionID}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// EnsureReportIndexes creates necessary indexes for the session_reports collection.
func EnsureReportIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "groupSessionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
