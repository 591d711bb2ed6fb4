// Package live runs one group training session end-to-end: exercise plan
// setup, attendance, per-participant performance capture and atomic
// submission. One Session instance is a single run with a single editor;
// closing it before a successful Finish discards everything.
package live

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"cyclecoach/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// State of the session lifecycle. The only backward transition is
// StateLive -> StateSetup ("edit plan").
type State string

const (
	StateSetup      State = "setup"
	StateLive       State = "live"
	StateSubmitting State = "submitting"
	StateComplete   State = "complete"
)

// --- Error Definitions ---
var (
	ErrNotInSetup           = errors.New("operation only allowed while setting up the plan")
	ErrNotLive              = errors.New("operation only allowed while the session is live")
	ErrNoNamedExercise      = errors.New("at least one exercise with a name is required")
	ErrExerciseNotFound     = errors.New("no exercise with that key in the plan")
	ErrUnknownParticipant   = errors.New("participant is not part of this session")
	ErrTemplateNameRequired = errors.New("template name cannot be blank")
	ErrNoTemplateStore      = errors.New("no template store configured")
	ErrSubmissionInFlight   = errors.New("a submission is already in flight")
)

// Note used for present participants who have no session note of their own.
const defaultParticipantNote = "Completed"

// ExerciseEntry is one in-progress exercise of the plan. Key is a transient,
// process-unique identity; it is never a server-assigned id, so copies from
// templates or history can never collide with persisted entities.
type ExerciseEntry struct {
	Key    string
	Name   string
	Type   domain.ExerciseType
	Target string
}

// Participant is the runtime identity of one attendee, supplied by the
// caller. The engine does not own participant records.
type Participant struct {
	ID   primitive.ObjectID
	Name string
}

// Performance holds the two captured value slots plus the optional note for
// one (participant, exercise) pair. Meaning of Val1/Val2 follows the
// exercise's type.
type Performance struct {
	Val1 string
	Val2 string
	Note string
}

type perfKey struct {
	participant primitive.ObjectID
	exercise    string
}

type attendee struct {
	Participant
	present     bool
	sessionNote string
}

// TemplateStore is the slice of the template library the engine needs for
// its setup-phase operations.
type TemplateStore interface {
	SaveTemplate(ctx context.Context, name string, specs []domain.ExerciseSpec) (*domain.ExerciseTemplate, error)
	DeleteTemplate(ctx context.Context, id primitive.ObjectID) error
}

// Submitter persists the finished session. Called exactly once per
// successful Finish.
type Submitter interface {
	SubmitGroupSession(ctx context.Context, record *domain.GroupSessionRecord) (*domain.GroupSessionRecord, error)
}

// Config seeds a new Session.
type Config struct {
	CoachID      primitive.ObjectID
	CoachName    string
	DayName      string
	Participants []Participant

	// Seed for the plan. Empty means one blank strength exercise.
	// Use an ExerciseTemplate's Exercises or history.DeriveRepeatSeed
	// output here; values are copied, never aliased.
	Seed []domain.ExerciseSpec

	Templates TemplateStore // Optional; setup template ops fail without it
	Submitter Submitter
	Logger    *zap.Logger // Defaults to a nop logger
}

// Session is the group-session lifecycle engine. All methods are safe for
// use from the single editing goroutine plus the submission callback; a
// mutex guards the in-flight flag.
type Session struct {
	mu sync.Mutex

	state     State
	coachID   primitive.ObjectID
	coachName string
	dayName   string

	exercises   []ExerciseEntry
	attendees   []attendee
	performance map[perfKey]Performance

	telemetry Telemetry

	templates  TemplateStore
	submitter  Submitter
	submitting bool

	log *zap.Logger
}

// New creates a Session in SETUP. Every supplied participant starts out
// present. The seed is deep-copied with fresh transient keys.
func New(cfg Config) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		state:       StateSetup,
		coachID:     cfg.CoachID,
		coachName:   cfg.CoachName,
		dayName:     cfg.DayName,
		performance: make(map[perfKey]Performance),
		telemetry:   newTelemetry(),
		templates:   cfg.Templates,
		submitter:   cfg.Submitter,
		log:         logger.Named("live"),
	}

	for _, p := range cfg.Participants {
		s.attendees = append(s.attendees, attendee{Participant: p, present: true})
	}

	if len(cfg.Seed) == 0 {
		s.exercises = []ExerciseEntry{blankEntry()}
	} else {
		s.exercises = copySeed(cfg.Seed)
	}
	return s
}

func blankEntry() ExerciseEntry {
	return ExerciseEntry{Key: uuid.NewString(), Type: domain.ExerciseStrength}
}

func copySeed(seed []domain.ExerciseSpec) []ExerciseEntry {
	out := make([]ExerciseEntry, len(seed))
	for i, spec := range seed {
		out[i] = ExerciseEntry{
			Key:    uuid.NewString(),
			Name:   spec.Name,
			Type:   spec.Type,
			Target: spec.Target,
		}
	}
	return out
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Exercises returns a copy of the current plan in order.
func (s *Session) Exercises() []ExerciseEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ExerciseEntry, len(s.exercises))
	copy(out, s.exercises)
	return out
}

// Telemetry exposes the presentation-only state (timer, note visibility).
// It is not part of the submitted record.
func (s *Session) Telemetry() *Telemetry {
	return &s.telemetry
}

// === SETUP operations ===

// AddExercise appends a blank strength exercise and returns it.
func (s *Session) AddExercise() (ExerciseEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSetup {
		return ExerciseEntry{}, ErrNotInSetup
	}
	e := blankEntry()
	s.exercises = append(s.exercises, e)
	return e, nil
}

// UpdateExercise edits the fields of the exercise with the given key.
func (s *Session) UpdateExercise(key, name string, typ domain.ExerciseType, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSetup {
		return ErrNotInSetup
	}
	for i := range s.exercises {
		if s.exercises[i].Key == key {
			s.exercises[i].Name = name
			s.exercises[i].Type = typ
			s.exercises[i].Target = target
			return nil
		}
	}
	return ErrExerciseNotFound
}

// RemoveExercise drops the exercise with the given key. Any performance
// captured against that key is lost; re-adding an exercise mints a new key.
func (s *Session) RemoveExercise(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSetup {
		return ErrNotInSetup
	}
	for i := range s.exercises {
		if s.exercises[i].Key == key {
			s.exercises = append(s.exercises[:i], s.exercises[i+1:]...)
			return nil
		}
	}
	return ErrExerciseNotFound
}

// SaveAsTemplate stores the current plan as a new named template. The
// current list is left untouched.
func (s *Session) SaveAsTemplate(ctx context.Context, name string) (*domain.ExerciseTemplate, error) {
	s.mu.Lock()
	if s.state != StateSetup {
		s.mu.Unlock()
		return nil, ErrNotInSetup
	}
	if strings.TrimSpace(name) == "" {
		s.mu.Unlock()
		return nil, ErrTemplateNameRequired
	}
	if s.templates == nil {
		s.mu.Unlock()
		return nil, ErrNoTemplateStore
	}
	specs := make([]domain.ExerciseSpec, len(s.exercises))
	for i, e := range s.exercises {
		specs[i] = domain.ExerciseSpec{Name: e.Name, Type: e.Type, Target: e.Target}
	}
	s.mu.Unlock()

	return s.templates.SaveTemplate(ctx, name, specs)
}

// RequestLoadTemplate starts the confirmation-gated replacement of the
// current plan with the template's exercises. Nothing changes until
// Confirm; Cancel leaves the plan untouched.
func (s *Session) RequestLoadTemplate(tpl domain.ExerciseTemplate) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSetup {
		return nil, ErrNotInSetup
	}
	return &Confirmation{run: func(context.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.state != StateSetup {
			return ErrNotInSetup
		}
		s.exercises = copySeed(tpl.Exercises)
		s.log.Info("template loaded into plan",
			zap.String("template", tpl.Name),
			zap.Int("exercises", len(tpl.Exercises)))
		return nil
	}}, nil
}

// RequestDeleteTemplate starts the confirmation-gated deletion of a stored
// template. Deletion is immediate and non-recoverable once confirmed.
func (s *Session) RequestDeleteTemplate(id primitive.ObjectID) (*Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSetup {
		return nil, ErrNotInSetup
	}
	if s.templates == nil {
		return nil, ErrNoTemplateStore
	}
	return &Confirmation{run: func(ctx context.Context) error {
		return s.templates.DeleteTemplate(ctx, id)
	}}, nil
}

// Begin transitions SETUP -> LIVE. Rejected, with no state change, unless at
// least one exercise has a non-empty name.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSetup {
		return ErrNotInSetup
	}
	if !s.hasNamedExercise() {
		return ErrNoNamedExercise
	}
	s.state = StateLive
	s.log.Info("session live",
		zap.String("day", s.dayName),
		zap.Int("exercises", len(s.exercises)),
		zap.Int("participants", len(s.attendees)))
	return nil
}

func (s *Session) hasNamedExercise() bool {
	for _, e := range s.exercises {
		if strings.TrimSpace(e.Name) != "" {
			return true
		}
	}
	return false
}

// === LIVE operations ===

// EditPlan transitions LIVE -> SETUP. The exercise list and all captured
// performance values survive; they stay keyed by transient exercise identity.
func (s *Session) EditPlan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive {
		return ErrNotLive
	}
	s.state = StateSetup
	return nil
}

// SetPresent toggles a participant's attendance. Entered performance data is
// kept either way; absence only excludes the participant from the eventual
// submission.
func (s *Session) SetPresent(participantID primitive.ObjectID, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive {
		return ErrNotLive
	}
	for i := range s.attendees {
		if s.attendees[i].ID == participantID {
			s.attendees[i].present = present
			return nil
		}
	}
	return ErrUnknownParticipant
}

// Present reports a participant's current attendance flag.
func (s *Session) Present(participantID primitive.ObjectID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attendees {
		if a.ID == participantID {
			return a.present
		}
	}
	return false
}

// RecordPerformance captures the value slots and note for one
// (participant, exercise) pair, replacing any prior capture.
func (s *Session) RecordPerformance(participantID primitive.ObjectID, exerciseKey string, perf Performance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive {
		return ErrNotLive
	}
	if !s.hasAttendee(participantID) {
		return ErrUnknownParticipant
	}
	if !s.hasExercise(exerciseKey) {
		return ErrExerciseNotFound
	}
	s.performance[perfKey{participantID, exerciseKey}] = perf
	return nil
}

// PerformanceFor returns the captured values for one pair, zero-valued if
// nothing was entered.
func (s *Session) PerformanceFor(participantID primitive.ObjectID, exerciseKey string) Performance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.performance[perfKey{participantID, exerciseKey}]
}

// SetSessionNote sets the participant's session-level note, independent of
// per-exercise notes.
func (s *Session) SetSessionNote(participantID primitive.ObjectID, note string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive {
		return ErrNotLive
	}
	for i := range s.attendees {
		if s.attendees[i].ID == participantID {
			s.attendees[i].sessionNote = note
			return nil
		}
	}
	return ErrUnknownParticipant
}

// NoteVisible reports whether the per-pair note field should be shown:
// either it was toggled open or a note already exists. Visibility never
// gates capture.
func (s *Session) NoteVisible(participantID primitive.ObjectID, exerciseKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.telemetry.noteOpen(participantID, exerciseKey) {
		return true
	}
	return s.performance[perfKey{participantID, exerciseKey}].Note != ""
}

func (s *Session) hasAttendee(id primitive.ObjectID) bool {
	for _, a := range s.attendees {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (s *Session) hasExercise(key string) bool {
	for _, e := range s.exercises {
		if e.Key == key {
			return true
		}
	}
	return false
}

// === Finish ===

// RequestFinish starts the confirmation-gated submission. Validation runs
// up front so the confirmation can only ever represent a submittable
// session.
func (s *Session) RequestFinish() (*FinishConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLive {
		return nil, ErrNotLive
	}
	if !s.hasNamedExercise() {
		return nil, ErrNoNamedExercise
	}
	return &FinishConfirmation{session: s}, nil
}

// FinishConfirmation is the pending Finish action. Confirm submits; Cancel
// leaves the session live and unchanged.
type FinishConfirmation struct {
	session *Session
	done    bool
}

// Confirm transitions LIVE -> SUBMITTING, builds the immutable payload from
// the participants present right now, and issues the single submission call.
// While a submission is in flight any further Confirm is a no-op guarded by
// ErrSubmissionInFlight. On failure the session returns to LIVE with all
// data intact; retry is manual.
func (c *FinishConfirmation) Confirm(ctx context.Context) (*domain.GroupSessionRecord, error) {
	s := c.session

	s.mu.Lock()
	if s.state == StateComplete {
		s.mu.Unlock()
		return nil, ErrNotLive
	}
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if s.state != StateLive {
		s.mu.Unlock()
		return nil, ErrNotLive
	}
	s.submitting = true
	s.state = StateSubmitting
	record := s.buildRecordLocked()
	s.mu.Unlock()

	saved, err := s.submitter.SubmitGroupSession(ctx, record)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if err != nil {
		// Back to LIVE, everything retained for a manual retry.
		s.state = StateLive
		s.log.Warn("group session submission failed", zap.Error(err))
		return nil, err
	}
	s.state = StateComplete
	c.done = true
	s.log.Info("group session submitted",
		zap.String("day", record.DayName),
		zap.Int("participants", len(record.Participants)))
	return saved, nil
}

// Cancel abandons the pending Finish. The session stays live.
func (c *FinishConfirmation) Cancel() {}

// buildRecordLocked assembles the submission payload. Only participants
// presently marked present appear, in both the participant list and every
// exercise's results; absentees are filtered out entirely before
// serialization, never flagged.
func (s *Session) buildRecordLocked() *domain.GroupSessionRecord {
	var present []attendee
	for _, a := range s.attendees {
		if a.present {
			present = append(present, a)
		}
	}

	summaries := make([]domain.ExerciseSummary, 0, len(s.exercises))
	for _, e := range s.exercises {
		results := make([]domain.ExerciseResult, 0, len(present))
		for _, a := range present {
			perf := s.performance[perfKey{a.ID, e.Key}]
			results = append(results, domain.ExerciseResult{
				ParticipantID:   a.ID,
				ParticipantName: a.Name,
				Val1:            perf.Val1,
				Val2:            perf.Val2,
				Note:            perf.Note,
			})
		}
		summaries = append(summaries, domain.ExerciseSummary{
			Name:    e.Name,
			Type:    e.Type,
			Target:  e.Target,
			Results: results,
		})
	}

	participants := make([]domain.SessionParticipant, 0, len(present))
	for _, a := range present {
		note := a.sessionNote
		if note == "" {
			note = defaultParticipantNote
		}
		participants = append(participants, domain.SessionParticipant{
			ParticipantID: a.ID,
			Name:          a.Name,
			Note:          note,
		})
	}

	return &domain.GroupSessionRecord{
		CoachID:          s.coachID,
		CoachName:        s.coachName,
		DayName:          s.dayName,
		Date:             time.Now().UTC(),
		ExercisesSummary: summaries,
		Participants:     participants,
	}
}

// Confirmation is a pending destructive setup action (load template over the
// current plan, delete a template). Nothing happens until Confirm; Cancel
// discards the request.
type Confirmation struct {
	run func(ctx context.Context) error
}

func (c *Confirmation) Confirm(ctx context.Context) error {
	return c.run(ctx)
}

func (c *Confirmation) Cancel() {}
