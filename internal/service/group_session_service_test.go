package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeGroupSessionRepo struct {
	records map[primitive.ObjectID]*domain.GroupSessionRecord
	order   []primitive.ObjectID // Insertion order, oldest first
	listErr error
}

func newFakeGroupSessionRepo() *fakeGroupSessionRepo {
	return &fakeGroupSessionRepo{records: make(map[primitive.ObjectID]*domain.GroupSessionRecord)}
}

func (f *fakeGroupSessionRepo) Create(ctx context.Context, rec *domain.GroupSessionRecord) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	rec.ID = id
	f.records[id] = rec
	f.order = append(f.order, id)
	return id, nil
}

func (f *fakeGroupSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.GroupSessionRecord, error) {
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeGroupSessionRepo) GetHistoryByParticipantID(ctx context.Context, participantID primitive.ObjectID, page int) (*repository.HistoryPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matched []domain.GroupSessionRecord
	for i := len(f.order) - 1; i >= 0; i-- { // Newest first
		rec := f.records[f.order[i]]
		for _, p := range rec.Participants {
			if p.ParticipantID == participantID {
				matched = append(matched, *rec)
				break
			}
		}
	}
	start := (page - 1) * repository.HistoryPageSize
	if start >= len(matched) {
		return &repository.HistoryPage{Records: []domain.GroupSessionRecord{}, Page: page}, nil
	}
	end := start + repository.HistoryPageSize
	hasMore := end < len(matched)
	if end > len(matched) {
		end = len(matched)
	}
	return &repository.HistoryPage{Records: matched[start:end], Page: page, HasMore: hasMore}, nil
}

type fakeReportRepo struct {
	reports map[primitive.ObjectID]*domain.SessionReport
}

func (f *fakeReportRepo) Create(ctx context.Context, report *domain.SessionReport) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	report.ID = id
	f.reports[report.GroupSessionID] = report
	return id, nil
}

func (f *fakeReportRepo) GetByGroupSessionID(ctx context.Context, groupSessionID primitive.ObjectID) (*domain.SessionReport, error) {
	if r, ok := f.reports[groupSessionID]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

type fakeReportStorage struct {
	objects map[string][]byte
	putErr  error
}

func (f *fakeReportStorage) PutObject(ctx context.Context, objectKey, contentType string, data []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.objects[objectKey] = data
	return nil
}

func (f *fakeReportStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return "https://reports.example.com/" + objectKey, nil
}

func (f *fakeReportStorage) DeleteObject(ctx context.Context, objectKey string) error {
	delete(f.objects, objectKey)
	return nil
}

func finishedRecord(participantID primitive.ObjectID) *domain.GroupSessionRecord {
	return &domain.GroupSessionRecord{
		CoachID:   primitive.NewObjectID(),
		CoachName: "Coach Dana",
		DayName:   "Day A",
		Date:      time.Now().UTC(),
		ExercisesSummary: []domain.ExerciseSummary{
			{
				Name: "Squat",
				Type: domain.ExerciseStrength,
				Results: []domain.ExerciseResult{
					{ParticipantID: participantID, ParticipantName: "Viewer", Val1: "100", Val2: "5"},
				},
			},
		},
		Participants: []domain.SessionParticipant{
			{ParticipantID: participantID, Name: "Viewer", Note: "Completed"},
		},
	}
}

func TestSubmitGroupSession(t *testing.T) {
	sessions := newFakeGroupSessionRepo()
	reports := &fakeReportRepo{reports: make(map[primitive.ObjectID]*domain.SessionReport)}
	bucket := &fakeReportStorage{objects: make(map[string][]byte)}
	svc := NewGroupSessionService(sessions, reports, bucket, zap.NewNop())
	ctx := context.Background()

	if _, err := svc.SubmitGroupSession(ctx, &domain.GroupSessionRecord{}); !errors.Is(err, ErrEmptySubmission) {
		t.Fatalf("empty submission: err = %v, want ErrEmptySubmission", err)
	}

	rec, err := svc.SubmitGroupSession(ctx, finishedRecord(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("SubmitGroupSession: %v", err)
	}
	if rec.ID.IsZero() {
		t.Fatal("submitted record has no id")
	}

	// Archive snapshot landed alongside the record.
	key := "reports/" + rec.ID.Hex() + ".json"
	if _, ok := bucket.objects[key]; !ok {
		t.Errorf("no snapshot at %q", key)
	}
	url, err := svc.GetReportURL(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetReportURL: %v", err)
	}
	if url != "https://reports.example.com/"+key {
		t.Errorf("url = %q", url)
	}
}

func TestSubmitSurvivesArchiveFailure(t *testing.T) {
	sessions := newFakeGroupSessionRepo()
	reports := &fakeReportRepo{reports: make(map[primitive.ObjectID]*domain.SessionReport)}
	bucket := &fakeReportStorage{objects: make(map[string][]byte), putErr: errors.New("bucket down")}
	svc := NewGroupSessionService(sessions, reports, bucket, zap.NewNop())

	rec, err := svc.SubmitGroupSession(context.Background(), finishedRecord(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("archive failure must not fail the submission: %v", err)
	}
	if _, err := svc.GetSessionDetail(context.Background(), rec.ID); err != nil {
		t.Errorf("record should be persisted despite archive failure: %v", err)
	}
	if _, err := svc.GetReportURL(context.Background(), rec.ID); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("report url after failed archive: err = %v, want ErrReportNotFound", err)
	}
}

func TestGetHistoryDegradesToEmptyPage(t *testing.T) {
	sessions := newFakeGroupSessionRepo()
	sessions.listErr = errors.New("store timeout")
	svc := NewGroupSessionService(sessions, &fakeReportRepo{reports: make(map[primitive.ObjectID]*domain.SessionReport)}, nil, zap.NewNop())

	page, err := svc.GetHistory(context.Background(), primitive.NewObjectID(), 1)
	if err != nil {
		t.Fatalf("GetHistory should degrade, got %v", err)
	}
	if len(page.Records) != 0 || page.HasMore {
		t.Errorf("degraded page = %+v, want empty", page)
	}
}

func TestGetHistoryPaginates(t *testing.T) {
	sessions := newFakeGroupSessionRepo()
	svc := NewGroupSessionService(sessions, &fakeReportRepo{reports: make(map[primitive.ObjectID]*domain.SessionReport)}, nil, zap.NewNop())
	ctx := context.Background()

	viewer := primitive.NewObjectID()
	total := repository.HistoryPageSize + 5
	for i := 0; i < total; i++ {
		if _, err := svc.SubmitGroupSession(ctx, finishedRecord(viewer)); err != nil {
			t.Fatalf("seed record %d: %v", i, err)
		}
	}

	first, err := svc.GetHistory(ctx, viewer, 1)
	if err != nil {
		t.Fatalf("GetHistory page 1: %v", err)
	}
	if len(first.Records) != repository.HistoryPageSize || !first.HasMore {
		t.Errorf("page 1: %d records, HasMore=%v", len(first.Records), first.HasMore)
	}

	second, err := svc.GetHistory(ctx, viewer, 2)
	if err != nil {
		t.Fatalf("GetHistory page 2: %v", err)
	}
	if len(second.Records) != 5 || second.HasMore {
		t.Errorf("page 2: %d records, HasMore=%v", len(second.Records), second.HasMore)
	}
}

func TestReconstructHistoryAndRepeatSeed(t *testing.T) {
	sessions := newFakeGroupSessionRepo()
	svc := NewGroupSessionService(sessions, &fakeReportRepo{reports: make(map[primitive.ObjectID]*domain.SessionReport)}, nil, zap.NewNop())
	ctx := context.Background()

	viewer := primitive.NewObjectID()
	rec, err := svc.SubmitGroupSession(ctx, finishedRecord(viewer))
	if err != nil {
		t.Fatalf("SubmitGroupSession: %v", err)
	}

	h, err := svc.ReconstructHistory(ctx, rec.ID, viewer)
	if err != nil {
		t.Fatalf("ReconstructHistory: %v", err)
	}
	if h.DayName != "Day A" || len(h.Performance) != 1 || h.Performance[0].Val1 != "100" {
		t.Errorf("history = %+v", h)
	}

	seed, err := svc.RepeatSeed(ctx, rec.ID)
	if err != nil {
		t.Fatalf("RepeatSeed: %v", err)
	}
	if len(seed) != 1 || seed[0].Name != "Squat" || seed[0].Type != domain.ExerciseStrength {
		t.Errorf("seed = %+v", seed)
	}

	if _, err := svc.ReconstructHistory(ctx, primitive.NewObjectID(), viewer); !errors.Is(err, ErrGroupSessionNotFound) {
		t.Errorf("unknown record: err = %v", err)
	}
}
