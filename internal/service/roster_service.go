package service

import (
	"context"
	"errors"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrParticipantNotFound        = errors.New("participant user not found")
	ErrParticipantNotRole         = errors.New("user found but is not a participant")
	ErrParticipantAlreadyEnrolled = errors.New("participant is already enrolled with a coach")
	ErrInvalidTotalSessions       = errors.New("total sessions must be a positive number")
)

// --- Service Interface ---
type RosterService interface {
	// EnrollParticipant adds the participant (looked up by email) to the
	// coach's roster and opens a subscription of totalSessions sessions.
	EnrollParticipant(ctx context.Context, coachID primitive.ObjectID, participantEmail string, totalSessions int, startDate time.Time) (*domain.Subscription, error)
	GetRoster(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	GetSubscriptions(ctx context.Context, coachID primitive.ObjectID) ([]domain.Subscription, error)
}

// rosterService implements the RosterService interface.
type rosterService struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	log      *zap.Logger
}

// NewRosterService creates a new instance of rosterService.
func NewRosterService(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository, logger *zap.Logger) RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &rosterService{
		userRepo: userRepo,
		subRepo:  subRepo,
		log:      logger.Named("roster"),
	}
}

// EnrollParticipant finds a participant by email, attaches them to the coach
// and creates their subscription.
func (s *rosterService) EnrollParticipant(ctx context.Context, coachID primitive.ObjectID, participantEmail string, totalSessions int, startDate time.Time) (*domain.Subscription, error) {
	if coachID == primitive.NilObjectID || participantEmail == "" {
		return nil, errors.New("coach ID and participant email are required")
	}
	if totalSessions <= 0 {
		return nil, ErrInvalidTotalSessions
	}

	participant, err := s.userRepo.GetByEmail(ctx, participantEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}
	if participant.Role != domain.RoleParticipant {
		return nil, ErrParticipantNotRole
	}

	// A participant enrolled with a different coach cannot be claimed.
	if participant.CoachID != nil && *participant.CoachID != primitive.NilObjectID && *participant.CoachID != coachID {
		return nil, ErrParticipantAlreadyEnrolled
	}

	if participant.CoachID == nil || *participant.CoachID == primitive.NilObjectID {
		if err := s.userRepo.AddParticipantToCoach(ctx, coachID, participant.ID); err != nil {
			return nil, err
		}
		if err := s.userRepo.SetCoachForParticipant(ctx, participant.ID, coachID); err != nil {
			return nil, err
		}
	}

	if startDate.IsZero() {
		startDate = time.Now().UTC()
	}

	sub := &domain.Subscription{
		ParticipantID: participant.ID,
		CoachID:       coachID,
		TotalSessions: totalSessions,
		StartDate:     startDate,
		Active:        true,
	}
	subID, err := s.subRepo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = subID

	s.log.Info("participant enrolled",
		zap.String("participant", participant.ID.Hex()),
		zap.Int("totalSessions", totalSessions))
	return sub, nil
}

// GetRoster retrieves the participants enrolled with the coach.
func (s *rosterService) GetRoster(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be nil")
	}
	return s.userRepo.GetParticipantsByCoachID(ctx, coachID)
}

// GetSubscriptions retrieves every subscription the coach services.
func (s *rosterService) GetSubscriptions(ctx context.Context, coachID primitive.ObjectID) ([]domain.Subscription, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be nil")
	}
	return s.subRepo.GetByCoachID(ctx, coachID)
}
