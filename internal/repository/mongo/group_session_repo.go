package mongo

import (
	"context"
	"errors"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/live"
	"cyclecoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const groupSessionCollectionName = "group_sessions"

// mongoGroupSessionRepository implements repository.GroupSessionRepository
type mongoGroupSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoGroupSessionRepository creates a new GroupSession repository backed by MongoDB.
func NewMongoGroupSessionRepository(db *mongo.Database) repository.GroupSessionRepository {
	return &mongoGroupSessionRepository{
		collection: db.Collection(groupSessionCollectionName),
	}
}

// storedGroupSession mirrors domain.GroupSessionRecord but leaves the
// exercise summary raw. Older records stored the summary as serialized JSON
// text rather than a document array; decoding goes through
// live.DecodeExercisesSummary so both forms come out structured.
type storedGroupSession struct {
	ID               primitive.ObjectID          `bson:"_id,omitempty"`
	CoachID          primitive.ObjectID          `bson:"coachId"`
	CoachName        string                      `bson:"coachName,omitempty"`
	DayName          string                      `bson:"dayName"`
	Date             time.Time                   `bson:"date"`
	ExercisesSummary bson.RawValue               `bson:"exercisesSummary"`
	Participants     []domain.SessionParticipant `bson:"participants"`
	CreatedAt        time.Time                   `bson:"createdAt"`
}

func (s *storedGroupSession) toDomain() (*domain.GroupSessionRecord, error) {
	rec := &domain.GroupSessionRecord{
		ID:           s.ID,
		CoachID:      s.CoachID,
		CoachName:    s.CoachName,
		DayName:      s.DayName,
		Date:         s.Date,
		Participants: s.Participants,
		CreatedAt:    s.CreatedAt,
	}

	switch s.ExercisesSummary.Type {
	case bsontype.Null, bsontype.Type(0):
		// No summary stored at all.
	case bsontype.String:
		decoded, err := live.DecodeExercisesSummary(s.ExercisesSummary.StringValue())
		if err != nil {
			return nil, err
		}
		rec.ExercisesSummary = decoded
	default:
		if err := s.ExercisesSummary.Unmarshal(&rec.ExercisesSummary); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Create inserts a finished group session. Records are immutable; there is
// no update path.
func (r *mongoGroupSessionRepository) Create(ctx context.Context, rec *domain.GroupSessionRecord) (primitive.ObjectID, error) {
	if rec.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("coach ID is required")
	}
	if len(rec.ExercisesSummary) == 0 {
		return primitive.NilObjectID, errors.New("exercises summary cannot be empty")
	}

	rec.ID = primitive.NewObjectID()
	rec.CreatedAt = time.Now().UTC()
	if rec.Date.IsZero() {
		rec.Date = rec.CreatedAt
	}

	result, err := r.collection.InsertOne(ctx, rec)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single group session record.
func (r *mongoGroupSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GroupSessionRecord, error) {
	var stored storedGroupSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&stored)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return stored.toDomain()
}

// GetHistoryByParticipantID retrieves one page of sessions the participant
// attended, newest first. Page is 1-based; the page size is fixed at
// repository.HistoryPageSize. HasMore is derived by fetching one extra
// document.
func (r *mongoGroupSessionRepository) GetHistoryByParticipantID(ctx context.Context, participantID primitive.ObjectID, page int) (*repository.HistoryPage, error) {
	if page < 1 {
		page = 1
	}

	filter := bson.M{"participants.participantId": participantID}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64((page - 1) * repository.HistoryPageSize)).
		SetLimit(int64(repository.HistoryPageSize + 1))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stored []storedGroupSession
	if err = cursor.All(ctx, &stored); err != nil {
		return nil, err
	}

	hasMore := len(stored) > repository.HistoryPageSize
	if hasMore {
		stored = stored[:repository.HistoryPageSize]
	}

	records := make([]domain.GroupSessionRecord, 0, len(stored))
	for i := range stored {
		rec, err := stored[i].toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return &repository.HistoryPage{
		Records: records,
		Page:    page,
		HasMore: hasMore,
	}, nil
}

// EnsureGroupSessionIndexes creates necessary indexes for the group_sessions collection.
func EnsureGroupSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "participants.participantId", Value: 1},
				{Key: "date", Value: -1},
			},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "date", Value: -1}},
			Options: options.Index(),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
