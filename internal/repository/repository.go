package repository

import (
	"context"

	"cyclecoach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate entity")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// HistoryPageSize is the fixed page size for group-session history listings.
const HistoryPageSize = 20

// HistoryPage is one page of a participant's group-session history, newest
// first.
type HistoryPage struct {
	Records []domain.GroupSessionRecord
	Page    int
	HasMore bool
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddParticipantToCoach(ctx context.Context, coachID, participantID primitive.ObjectID) error
	GetParticipantsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForParticipant(ctx context.Context, participantID, coachID primitive.ObjectID) error
}

// SubscriptionRepository defines the interface for subscription data.
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error)
	GetByParticipantID(ctx context.Context, participantID primitive.ObjectID) ([]domain.Subscription, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Subscription, error)
}

// TrainingPlanRepository defines the interface for training plan data.
// One plan per subscription; Create fails with ErrDuplicate when a plan
// already exists for the subscription.
type TrainingPlanRepository interface {
	Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID primitive.ObjectID) (*domain.TrainingPlan, error)
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// SessionLogRepository defines the interface for completion records.
// Logs are append-only; there is no update or delete.
type SessionLogRepository interface {
	Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID primitive.ObjectID) ([]domain.SessionLog, error)
}

// ExerciseTemplateRepository defines the interface for the template library.
type ExerciseTemplateRepository interface {
	Create(ctx context.Context, tpl *domain.ExerciseTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.ExerciseTemplate, error)
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// GroupSessionRepository defines the interface for finished group sessions.
// Records are immutable once created.
type GroupSessionRepository interface {
	Create(ctx context.Context, rec *domain.GroupSessionRecord) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GroupSessionRecord, error)
	GetHistoryByParticipantID(ctx context.Context, participantID primitive.ObjectID, page int) (*HistoryPage, error)
}

// SessionReportRepository defines the interface for archived report
// metadata.
type SessionReportRepository interface {
	Create(ctx context.Context, report *domain.SessionReport) (primitive.ObjectID, error)
	GetByGroupSessionID(ctx context.Context, groupSessionID primitive.ObjectID) (*domain.SessionReport, error)
}
