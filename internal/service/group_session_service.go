package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/live"
	"cyclecoach/internal/repository"
	"cyclecoach/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrGroupSessionNotFound = errors.New("group session not found")
	ErrReportNotFound       = errors.New("no archived report for this session")
	ErrEmptySubmission      = errors.New("group session has no exercises")
)

// --- Service Interface ---
type GroupSessionService interface {
	// SubmitGroupSession is the Finish call: persists the record once and
	// archives a report snapshot. Implements live.Submitter.
	SubmitGroupSession(ctx context.Context, record *domain.GroupSessionRecord) (*domain.GroupSessionRecord, error)

	GetSessionDetail(ctx context.Context, id primitive.ObjectID) (*domain.GroupSessionRecord, error)
	GetHistory(ctx context.Context, participantID primitive.ObjectID, page int) (*repository.HistoryPage, error)

	// ReconstructHistory flattens one stored record into a participant's view.
	ReconstructHistory(ctx context.Context, recordID, participantID primitive.ObjectID) (*live.SessionHistory, error)

	// RepeatSeed derives a fresh plan seed from a stored record.
	RepeatSeed(ctx context.Context, recordID primitive.ObjectID) ([]domain.ExerciseSpec, error)

	GetReportURL(ctx context.Context, groupSessionID primitive.ObjectID) (string, error)
}

// groupSessionService implements the GroupSessionService interface.
type groupSessionService struct {
	sessionRepo repository.GroupSessionRepository
	reportRepo  repository.SessionReportRepository
	reports     storage.ReportStorage
	log         *zap.Logger
}

// NewGroupSessionService creates a new instance of groupSessionService.
// reports may be nil when no archive bucket is configured.
func NewGroupSessionService(
	sessionRepo repository.GroupSessionRepository,
	reportRepo repository.SessionReportRepository,
	reports storage.ReportStorage,
	logger *zap.Logger,
) GroupSessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &groupSessionService{
		sessionRepo: sessionRepo,
		reportRepo:  reportRepo,
		reports:     reports,
		log:         logger.Named("groupsession"),
	}
}

// SubmitGroupSession persists the finished session exactly once. The report
// archive is best-effort: a failure there is logged and never fails the
// Finish, since the report is derived data.
func (s *groupSessionService) SubmitGroupSession(ctx context.Context, record *domain.GroupSessionRecord) (*domain.GroupSessionRecord, error) {
	if record == nil || len(record.ExercisesSummary) == 0 {
		return nil, ErrEmptySubmission
	}

	id, err := s.sessionRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = id

	s.archiveReport(ctx, record)
	return record, nil
}

// archiveReport writes a JSON snapshot of the record to the bucket and
// stores the locating metadata row.
func (s *groupSessionService) archiveReport(ctx context.Context, record *domain.GroupSessionRecord) {
	if s.reports == nil {
		return
	}

	body, err := json.Marshal(record)
	if err != nil {
		s.log.Warn("report snapshot marshal failed", zap.Error(err))
		return
	}

	objectKey := fmt.Sprintf("reports/%s.json", record.ID.Hex())
	if err := s.reports.PutObject(ctx, objectKey, "application/json", body); err != nil {
		s.log.Warn("report archive upload failed",
			zap.String("session", record.ID.Hex()), zap.Error(err))
		return
	}

	report := &domain.SessionReport{
		GroupSessionID: record.ID,
		CoachID:        record.CoachID,
		S3ObjectKey:    objectKey,
		ContentType:    "application/json",
		Size:           int64(len(body)),
		ArchivedAt:     time.Now().UTC(),
	}
	if _, err := s.reportRepo.Create(ctx, report); err != nil {
		s.log.Warn("report metadata insert failed",
			zap.String("session", record.ID.Hex()), zap.Error(err))
	}
}

// GetSessionDetail retrieves one stored record.
func (s *groupSessionService) GetSessionDetail(ctx context.Context, id primitive.ObjectID) (*domain.GroupSessionRecord, error) {
	rec, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrGroupSessionNotFound
		}
		return nil, err
	}
	return rec, nil
}

// GetHistory retrieves one page of a participant's session history. A
// transient fetch failure degrades to an empty page; the caller shows an
// empty state and the next fetch recovers.
func (s *groupSessionService) GetHistory(ctx context.Context, participantID primitive.ObjectID, page int) (*repository.HistoryPage, error) {
	if participantID == primitive.NilObjectID {
		return nil, errors.New("participant ID cannot be nil")
	}
	history, err := s.sessionRepo.GetHistoryByParticipantID(ctx, participantID, page)
	if err != nil {
		s.log.Warn("history fetch failed, returning empty page",
			zap.String("participant", participantID.Hex()), zap.Error(err))
		return &repository.HistoryPage{Records: []domain.GroupSessionRecord{}, Page: page}, nil
	}
	return history, nil
}

// ReconstructHistory flattens a stored record into one participant's view.
func (s *groupSessionService) ReconstructHistory(ctx context.Context, recordID, participantID primitive.ObjectID) (*live.SessionHistory, error) {
	rec, err := s.GetSessionDetail(ctx, recordID)
	if err != nil {
		return nil, err
	}
	history := live.Reconstruct(*rec, participantID)
	return &history, nil
}

// RepeatSeed strips a stored record down to the plan seed for a repeat
// session.
func (s *groupSessionService) RepeatSeed(ctx context.Context, recordID primitive.ObjectID) ([]domain.ExerciseSpec, error) {
	rec, err := s.GetSessionDetail(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return live.DeriveRepeatSeed(*rec), nil
}

// GetReportURL returns a presigned download URL for the archived report.
func (s *groupSessionService) GetReportURL(ctx context.Context, groupSessionID primitive.ObjectID) (string, error) {
	if s.reports == nil {
		return "", ErrReportNotFound
	}
	report, err := s.reportRepo.GetByGroupSessionID(ctx, groupSessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrReportNotFound
		}
		return "", err
	}
	return s.reports.GeneratePresignedDownloadURL(ctx, report.S3ObjectKey, storage.DefaultPresignedURLExpiry)
}
