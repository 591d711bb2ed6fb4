package service

import (
	"context"
	"errors"
	"testing"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeSubRepo struct {
	subs map[primitive.ObjectID]*domain.Subscription
}

func (f *fakeSubRepo) Create(ctx context.Context, sub *domain.Subscription) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	sub.ID = id
	f.subs[id] = sub
	return id, nil
}

func (f *fakeSubRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Subscription, error) {
	if s, ok := f.subs[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubRepo) GetByParticipantID(ctx context.Context, participantID primitive.ObjectID) ([]domain.Subscription, error) {
	return nil, nil
}

func (f *fakeSubRepo) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Subscription, error) {
	return nil, nil
}

type fakePlanRepo struct {
	plans map[primitive.ObjectID]*domain.TrainingPlan // keyed by subscription
}

func (f *fakePlanRepo) Create(ctx context.Context, plan *domain.TrainingPlan) (primitive.ObjectID, error) {
	if err := plan.Validate(); err != nil {
		return primitive.NilObjectID, err
	}
	if _, ok := f.plans[plan.SubscriptionID]; ok {
		return primitive.NilObjectID, repository.ErrDuplicate
	}
	id := primitive.NewObjectID()
	plan.ID = id
	f.plans[plan.SubscriptionID] = plan
	return id, nil
}

func (f *fakePlanRepo) GetBySubscriptionID(ctx context.Context, subscriptionID primitive.ObjectID) (*domain.TrainingPlan, error) {
	if p, ok := f.plans[subscriptionID]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	for subID, p := range f.plans {
		if p.ID == id && p.CoachID == coachID {
			delete(f.plans, subID)
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeLogRepo struct {
	logs    []domain.SessionLog
	listErr error
}

func (f *fakeLogRepo) Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error) {
	for _, l := range f.logs {
		if l.SubscriptionID == log.SubscriptionID && l.SessionNumber == log.SessionNumber {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	id := primitive.NewObjectID()
	log.ID = id
	f.logs = append(f.logs, *log)
	return id, nil
}

func (f *fakeLogRepo) GetBySubscriptionID(ctx context.Context, subscriptionID primitive.ObjectID) ([]domain.SessionLog, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.SessionLog
	for _, l := range f.logs {
		if l.SubscriptionID == subscriptionID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[primitive.ObjectID]*domain.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	user.ID = id
	f.users[id] = user
	return id, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) AddParticipantToCoach(ctx context.Context, coachID, participantID primitive.ObjectID) error {
	return nil
}

func (f *fakeUserRepo) GetParticipantsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) SetCoachForParticipant(ctx context.Context, participantID, coachID primitive.ObjectID) error {
	return nil
}

type scheduleFixture struct {
	svc     ScheduleService
	subs    *fakeSubRepo
	plans   *fakePlanRepo
	logs    *fakeLogRepo
	users   *fakeUserRepo
	coachID primitive.ObjectID
	subID   primitive.ObjectID
}

func newScheduleFixture(t *testing.T, totalSessions int) *scheduleFixture {
	t.Helper()
	f := &scheduleFixture{
		subs:  &fakeSubRepo{subs: make(map[primitive.ObjectID]*domain.Subscription)},
		plans: &fakePlanRepo{plans: make(map[primitive.ObjectID]*domain.TrainingPlan)},
		logs:  &fakeLogRepo{},
		users: &fakeUserRepo{users: make(map[primitive.ObjectID]*domain.User)},
	}
	coach := &domain.User{Name: "Coach Dana", Email: "dana@example.com", Role: domain.RoleCoach}
	coachID, err := f.users.Create(context.Background(), coach)
	if err != nil {
		t.Fatalf("seed coach: %v", err)
	}
	f.coachID = coachID

	subID, err := f.subs.Create(context.Background(), &domain.Subscription{
		ParticipantID: primitive.NewObjectID(),
		CoachID:       coachID,
		TotalSessions: totalSessions,
		Active:        true,
	})
	if err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	f.subID = subID

	f.svc = NewScheduleService(f.subs, f.plans, f.logs, f.users, zap.NewNop())
	return f
}

func TestCreatePlan(t *testing.T) {
	f := newScheduleFixture(t, 8)
	ctx := context.Background()

	plan, err := f.svc.CreatePlan(ctx, f.coachID, f.subID, 3, []string{"Push", "Pull", "Legs"})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if plan.ID.IsZero() {
		t.Error("plan has no id")
	}
	for i, dt := range plan.DayTemplates {
		if dt.Order != i {
			t.Errorf("day %d order = %d", i, dt.Order)
		}
	}

	// A second plan on the same subscription is rejected.
	if _, err := f.svc.CreatePlan(ctx, f.coachID, f.subID, 2, []string{"A", "B"}); !errors.Is(err, ErrPlanAlreadyExists) {
		t.Errorf("second CreatePlan: err = %v, want ErrPlanAlreadyExists", err)
	}

	// Another coach cannot plan against this subscription.
	if _, err := f.svc.CreatePlan(ctx, primitive.NewObjectID(), f.subID, 2, []string{"A", "B"}); !errors.Is(err, ErrPlanAccessDenied) {
		t.Errorf("foreign coach: err = %v, want ErrPlanAccessDenied", err)
	}
}

func TestGetScheduleReconciles(t *testing.T) {
	f := newScheduleFixture(t, 8)
	ctx := context.Background()

	if _, err := f.svc.CreatePlan(ctx, f.coachID, f.subID, 3, []string{"A", "B", "C"}); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if _, err := f.svc.CompleteSession(ctx, f.subID, 1, f.coachID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if _, err := f.svc.CompleteSession(ctx, f.subID, 4, primitive.NilObjectID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	p, err := f.svc.GetSchedule(ctx, f.subID)
	if err != nil {
		t.Fatalf("GetSchedule: %v", err)
	}
	if p.CompletedCount != 2 || p.ProgressPercent != 25 {
		t.Errorf("progress = %d done, %v%%", p.CompletedCount, p.ProgressPercent)
	}
	if len(p.Cycles) != 3 || len(p.Cycles[2]) != 2 {
		t.Errorf("cycles = %d, last len %d", len(p.Cycles), len(p.Cycles[len(p.Cycles)-1]))
	}
	if got := p.Cycles[0][0].CompletedBy; got != "Coach Dana" {
		t.Errorf("session 1 CompletedBy = %q", got)
	}
	if got := p.Cycles[1][0].CompletedBy; got != "Assigned Trainer" {
		t.Errorf("unattributed session CompletedBy = %q", got)
	}
}

func TestGetScheduleDegradesOnLogFailure(t *testing.T) {
	f := newScheduleFixture(t, 4)
	ctx := context.Background()

	if _, err := f.svc.CreatePlan(ctx, f.coachID, f.subID, 2, []string{"A", "B"}); err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	f.logs.listErr = errors.New("store timeout")

	p, err := f.svc.GetSchedule(ctx, f.subID)
	if err != nil {
		t.Fatalf("GetSchedule should degrade, got %v", err)
	}
	if p.CompletedCount != 0 || p.ProgressPercent != 0 {
		t.Errorf("degraded schedule should be all-incomplete, got %+v", p)
	}
	if len(p.Cycles) != 2 {
		t.Errorf("cycles = %d, want 2", len(p.Cycles))
	}
}

func TestGetScheduleMissingPieces(t *testing.T) {
	f := newScheduleFixture(t, 4)
	ctx := context.Background()

	if _, err := f.svc.GetSchedule(ctx, primitive.NewObjectID()); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Errorf("unknown subscription: err = %v", err)
	}
	if _, err := f.svc.GetSchedule(ctx, f.subID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("no plan yet: err = %v", err)
	}
}

func TestCompleteSessionGuards(t *testing.T) {
	f := newScheduleFixture(t, 4)
	ctx := context.Background()

	if _, err := f.svc.CompleteSession(ctx, f.subID, 0, f.coachID); !errors.Is(err, ErrSessionOutOfRange) {
		t.Errorf("session 0: err = %v", err)
	}
	if _, err := f.svc.CompleteSession(ctx, f.subID, 5, f.coachID); !errors.Is(err, ErrSessionOutOfRange) {
		t.Errorf("session past total: err = %v", err)
	}

	log, err := f.svc.CompleteSession(ctx, f.subID, 2, f.coachID)
	if err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}
	if !log.Completed || log.CoachName != "Coach Dana" {
		t.Errorf("log = %+v", log)
	}

	if _, err := f.svc.CompleteSession(ctx, f.subID, 2, f.coachID); !errors.Is(err, ErrSessionAlreadyLogged) {
		t.Errorf("duplicate completion: err = %v", err)
	}
}

func TestDeletePlanKeepsLogs(t *testing.T) {
	f := newScheduleFixture(t, 4)
	ctx := context.Background()

	plan, err := f.svc.CreatePlan(ctx, f.coachID, f.subID, 2, []string{"A", "B"})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if _, err := f.svc.CompleteSession(ctx, f.subID, 1, f.coachID); err != nil {
		t.Fatalf("CompleteSession: %v", err)
	}

	if err := f.svc.DeletePlan(ctx, f.coachID, plan.ID); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err := f.svc.GetPlan(ctx, f.subID); !errors.Is(err, ErrPlanNotFound) {
		t.Errorf("plan should be gone, err = %v", err)
	}
	logs, err := f.logs.GetBySubscriptionID(ctx, f.subID)
	if err != nil || len(logs) != 1 {
		t.Errorf("completion history must outlive the plan: %d logs, %v", len(logs), err)
	}
}
