package service

import (
	"context"
	"errors"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/repository"
	"cyclecoach/internal/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrPlanNotFound         = errors.New("training plan not found")
	ErrPlanAlreadyExists    = errors.New("subscription already has a training plan")
	ErrPlanAccessDenied     = errors.New("access denied to modify this plan")
	ErrSessionOutOfRange    = errors.New("session number is outside the subscription")
	ErrSessionAlreadyLogged = errors.New("session is already marked complete")
)

// --- Service Interface ---
type ScheduleService interface {
	// Plan setup wizard
	CreatePlan(ctx context.Context, coachID, subscriptionID primitive.ObjectID, cycleLength int, dayNames []string) (*domain.TrainingPlan, error)
	GetPlan(ctx context.Context, subscriptionID primitive.ObjectID) (*domain.TrainingPlan, error)
	DeletePlan(ctx context.Context, coachID, planID primitive.ObjectID) error

	// GetSchedule expands the subscription's plan into cycles and
	// reconciles them against its completion logs.
	GetSchedule(ctx context.Context, subscriptionID primitive.ObjectID) (*schedule.Progress, error)

	// CompleteSession writes the completion log for one session number,
	// attributed to the acting coach when one is supplied.
	CompleteSession(ctx context.Context, subscriptionID primitive.ObjectID, sessionNumber int, coachID primitive.ObjectID) (*domain.SessionLog, error)
}

// scheduleService implements the ScheduleService interface.
type scheduleService struct {
	subRepo  repository.SubscriptionRepository
	planRepo repository.TrainingPlanRepository
	logRepo  repository.SessionLogRepository
	userRepo repository.UserRepository
	log      *zap.Logger
}

// NewScheduleService creates a new instance of scheduleService.
func NewScheduleService(
	subRepo repository.SubscriptionRepository,
	planRepo repository.TrainingPlanRepository,
	logRepo repository.SessionLogRepository,
	userRepo repository.UserRepository,
	logger *zap.Logger,
) ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &scheduleService{
		subRepo:  subRepo,
		planRepo: planRepo,
		logRepo:  logRepo,
		userRepo: userRepo,
		log:      logger.Named("schedule"),
	}
}

// CreatePlan runs the setup wizard outcome: one plan per subscription with a
// dense, ordered set of day templates.
func (s *scheduleService) CreatePlan(ctx context.Context, coachID, subscriptionID primitive.ObjectID, cycleLength int, dayNames []string) (*domain.TrainingPlan, error) {
	if coachID == primitive.NilObjectID || subscriptionID == primitive.NilObjectID {
		return nil, errors.New("coach ID and subscription ID are required")
	}

	sub, err := s.subRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.CoachID != coachID {
		return nil, ErrPlanAccessDenied
	}

	days := make([]domain.DayTemplate, len(dayNames))
	for i, name := range dayNames {
		days[i] = domain.DayTemplate{Name: name, Order: i}
	}
	plan := &domain.TrainingPlan{
		SubscriptionID: subscriptionID,
		CoachID:        coachID,
		CycleLength:    cycleLength,
		DayTemplates:   days,
	}

	id, err := s.planRepo.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrPlanAlreadyExists
		}
		return nil, err
	}
	plan.ID = id
	return plan, nil
}

// GetPlan retrieves the subscription's plan.
func (s *scheduleService) GetPlan(ctx context.Context, subscriptionID primitive.ObjectID) (*domain.TrainingPlan, error) {
	plan, err := s.planRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// DeletePlan removes the plan, resetting scheduling for its subscription.
// SessionLogs are never touched; history outlives the plan.
func (s *scheduleService) DeletePlan(ctx context.Context, coachID, planID primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || planID == primitive.NilObjectID {
		return errors.New("coach ID and plan ID are required")
	}
	err := s.planRepo.Delete(ctx, planID, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPlanNotFound
		}
		return err
	}
	s.log.Info("training plan deleted", zap.String("plan", planID.Hex()))
	return nil
}

// GetSchedule recomputes the full reconciled view: cycles from the plan,
// completion from the logs. Nothing derived here is ever persisted. A
// transient log fetch failure degrades to an all-incomplete schedule.
func (s *scheduleService) GetSchedule(ctx context.Context, subscriptionID primitive.ObjectID) (*schedule.Progress, error) {
	sub, err := s.subRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	plan, err := s.planRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	cycles, err := schedule.Generate(sub.TotalSessions, plan.CycleLength, plan.OrderedDayTemplates())
	if err != nil {
		return nil, err
	}

	logs, err := s.logRepo.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		s.log.Warn("session log fetch failed, rendering schedule without completion",
			zap.String("subscription", subscriptionID.Hex()), zap.Error(err))
		logs = nil
	}

	progress := schedule.Reconcile(cycles, sub.TotalSessions, logs)
	return &progress, nil
}

// CompleteSession appends the completion log for one slot of the
// subscription.
func (s *scheduleService) CompleteSession(ctx context.Context, subscriptionID primitive.ObjectID, sessionNumber int, coachID primitive.ObjectID) (*domain.SessionLog, error) {
	sub, err := s.subRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sessionNumber < 1 || sessionNumber > sub.TotalSessions {
		return nil, ErrSessionOutOfRange
	}

	log := &domain.SessionLog{
		SubscriptionID: subscriptionID,
		SessionNumber:  sessionNumber,
		Completed:      true,
		DateCompleted:  time.Now().UTC(),
	}
	if coachID != primitive.NilObjectID {
		log.CoachID = &coachID
		// Attribution is best-effort; a missing name falls back to the
		// reconciler's default display name.
		if coach, err := s.userRepo.GetByID(ctx, coachID); err == nil {
			log.CoachName = coach.Name
		}
	}

	id, err := s.logRepo.Create(ctx, log)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSessionAlreadyLogged
		}
		return nil, err
	}
	log.ID = id
	return log, nil
}
