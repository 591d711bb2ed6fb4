package service

import (
	"context"
	"errors"
	"strings"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound  = errors.New("exercise template not found")
	ErrTemplateNameBlank = errors.New("template name cannot be blank")
	ErrInvalidExercise   = errors.New("exercise spec has an unknown type")
)

// --- Service Interface ---
type TemplateService interface {
	CreateTemplate(ctx context.Context, coachID primitive.ObjectID, name string, exercises []domain.ExerciseSpec) (*domain.ExerciseTemplate, error)
	GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error)
	ListTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.ExerciseTemplate, error)
	DeleteTemplate(ctx context.Context, coachID, id primitive.ObjectID) error

	// SessionTemplates adapts this service to one coach's live session.
	SessionTemplates(coachID primitive.ObjectID) SessionTemplateStore
}

// SessionTemplateStore matches live.TemplateStore: the template operations a
// running group session needs, pre-bound to the owning coach.
type SessionTemplateStore interface {
	SaveTemplate(ctx context.Context, name string, specs []domain.ExerciseSpec) (*domain.ExerciseTemplate, error)
	DeleteTemplate(ctx context.Context, id primitive.ObjectID) error
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.ExerciseTemplateRepository
	log          *zap.Logger
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(templateRepo repository.ExerciseTemplateRepository, logger *zap.Logger) TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &templateService{
		templateRepo: templateRepo,
		log:          logger.Named("templates"),
	}
}

// CreateTemplate stores a named exercise list for a coach.
func (s *templateService) CreateTemplate(ctx context.Context, coachID primitive.ObjectID, name string, exercises []domain.ExerciseSpec) (*domain.ExerciseTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrTemplateNameBlank
	}
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required to create a template")
	}
	for _, ex := range exercises {
		if !ex.Type.IsValid() {
			return nil, ErrInvalidExercise
		}
	}

	tpl := &domain.ExerciseTemplate{
		CoachID:   coachID,
		Name:      name,
		Exercises: exercises,
	}
	id, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	return s.templateRepo.GetByID(ctx, id)
}

// GetTemplate retrieves a single template.
func (s *templateService) GetTemplate(ctx context.Context, id primitive.ObjectID) (*domain.ExerciseTemplate, error) {
	tpl, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

// ListTemplates retrieves all templates visible to the coach. A transient
// store failure degrades to an empty list rather than surfacing an error;
// list views show an empty state and the next fetch recovers.
func (s *templateService) ListTemplates(ctx context.Context, coachID primitive.ObjectID) ([]domain.ExerciseTemplate, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID cannot be nil")
	}
	templates, err := s.templateRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		s.log.Warn("template list fetch failed, returning empty set", zap.Error(err))
		return []domain.ExerciseTemplate{}, nil
	}
	return templates, nil
}

// DeleteTemplate removes a template owned by the coach. Immediate and
// non-recoverable; the interactive confirmation lives upstream.
func (s *templateService) DeleteTemplate(ctx context.Context, coachID, id primitive.ObjectID) error {
	if coachID == primitive.NilObjectID || id == primitive.NilObjectID {
		return errors.New("coach ID and template ID are required")
	}
	err := s.templateRepo.Delete(ctx, id, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// SessionTemplates returns the coach-bound view used by live sessions.
func (s *templateService) SessionTemplates(coachID primitive.ObjectID) SessionTemplateStore {
	return &boundTemplateStore{svc: s, coachID: coachID}
}

type boundTemplateStore struct {
	svc     *templateService
	coachID primitive.ObjectID
}

func (b *boundTemplateStore) SaveTemplate(ctx context.Context, name string, specs []domain.ExerciseSpec) (*domain.ExerciseTemplate, error) {
	return b.svc.CreateTemplate(ctx, b.coachID, name, specs)
}

func (b *boundTemplateStore) DeleteTemplate(ctx context.Context, id primitive.ObjectID) error {
	return b.svc.DeleteTemplate(ctx, b.coachID, id)
}
