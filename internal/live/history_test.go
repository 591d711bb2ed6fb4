package live

import (
	"encoding/json"
	"testing"
	"time"

	"cyclecoach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleRecord(viewer primitive.ObjectID) domain.GroupSessionRecord {
	other := primitive.NewObjectID()
	return domain.GroupSessionRecord{
		ID:        primitive.NewObjectID(),
		CoachID:   primitive.NewObjectID(),
		CoachName: "Coach Dana",
		DayName:   "Day B",
		Date:      time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC),
		ExercisesSummary: []domain.ExerciseSummary{
			{
				Name:   "Deadlift",
				Type:   domain.ExerciseStrength,
				Target: "3x5",
				Results: []domain.ExerciseResult{
					{ParticipantID: viewer, ParticipantName: "Viewer", Val1: "120", Val2: "5", Note: "pb"},
					{ParticipantID: other, ParticipantName: "Other", Val1: "90", Val2: "5"},
				},
			},
			{
				Name: "Row",
				Type: domain.ExerciseCardio,
				Results: []domain.ExerciseResult{
					{ParticipantID: other, ParticipantName: "Other", Val1: "2", Val2: "8:00"},
				},
			},
		},
		Participants: []domain.SessionParticipant{
			{ParticipantID: viewer, Name: "Viewer", Note: "strong day"},
			{ParticipantID: other, Name: "Other", Note: "Completed"},
		},
	}
}

func TestReconstruct(t *testing.T) {
	viewer := primitive.NewObjectID()
	rec := sampleRecord(viewer)

	h := Reconstruct(rec, viewer)
	if h.DayName != "Day B" || h.CoachName != "Coach Dana" {
		t.Errorf("header = %q by %q", h.DayName, h.CoachName)
	}
	if h.SessionNote != "strong day" {
		t.Errorf("SessionNote = %q", h.SessionNote)
	}
	if len(h.Performance) != 2 {
		t.Fatalf("got %d rows, want 2 (plan stays visible even without results)", len(h.Performance))
	}
	if h.Performance[0].Val1 != "120" || h.Performance[0].Note != "pb" {
		t.Errorf("deadlift row = %+v", h.Performance[0])
	}
	// The viewer has no row result for the second exercise; it still appears.
	if h.Performance[1].Exercise != "Row" || h.Performance[1].Val1 != "" {
		t.Errorf("row without viewer result = %+v", h.Performance[1])
	}
}

func TestReconstructUnknownViewer(t *testing.T) {
	rec := sampleRecord(primitive.NewObjectID())
	h := Reconstruct(rec, primitive.NewObjectID())
	if h.SessionNote != "" {
		t.Errorf("SessionNote = %q, want empty for a non-participant", h.SessionNote)
	}
	for _, row := range h.Performance {
		if row.Val1 != "" || row.Val2 != "" || row.Note != "" {
			t.Errorf("row %q should carry no values: %+v", row.Exercise, row)
		}
	}
}

func TestDecodeExercisesSummaryForms(t *testing.T) {
	viewer := primitive.NewObjectID()
	structured := sampleRecord(viewer).ExercisesSummary
	serialized, err := json.Marshal(structured)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	tests := []struct {
		name string
		raw  any
	}{
		{"structured list", structured},
		{"serialized string", string(serialized)},
		{"raw message", json.RawMessage(serialized)},
		{"byte slice", serialized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeExercisesSummary(tt.raw)
			if err != nil {
				t.Fatalf("DecodeExercisesSummary: %v", err)
			}
			if len(got) != 2 || got[0].Name != "Deadlift" || len(got[0].Results) != 2 {
				t.Errorf("decoded = %+v", got)
			}
		})
	}
}

func TestDecodeExercisesSummaryEdgeInputs(t *testing.T) {
	if got, err := DecodeExercisesSummary(nil); err != nil || got != nil {
		t.Errorf("nil input: %v, %v", got, err)
	}
	if got, err := DecodeExercisesSummary(""); err != nil || got != nil {
		t.Errorf("empty string: %v, %v", got, err)
	}
	if _, err := DecodeExercisesSummary("{not json"); err == nil {
		t.Error("malformed text should error")
	}
	if _, err := DecodeExercisesSummary(42); err == nil {
		t.Error("unsupported form should error")
	}
}

func TestDeriveRepeatSeedStripsResults(t *testing.T) {
	rec := sampleRecord(primitive.NewObjectID())
	seed := DeriveRepeatSeed(rec)
	if len(seed) != 2 {
		t.Fatalf("seed has %d specs, want 2", len(seed))
	}
	if seed[0].Name != "Deadlift" || seed[0].Type != domain.ExerciseStrength || seed[0].Target != "3x5" {
		t.Errorf("seed[0] = %+v", seed[0])
	}
	if seed[1].Name != "Row" || seed[1].Type != domain.ExerciseCardio {
		t.Errorf("seed[1] = %+v", seed[1])
	}

	// Feeding the seed into a new session mints fresh transient identities.
	s := New(Config{Seed: seed, Submitter: &fakeSubmitter{}})
	ex := s.Exercises()
	if len(ex) != 2 || ex[0].Key == "" || ex[0].Key == ex[1].Key {
		t.Errorf("repeat session entries = %+v", ex)
	}
}

func TestRepeatEntriesFreshKeys(t *testing.T) {
	rec := sampleRecord(primitive.NewObjectID())
	a := RepeatEntries(rec)
	b := RepeatEntries(rec)
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("entries = %d and %d, want 2 each", len(a), len(b))
	}
	if a[0].Key == b[0].Key || a[1].Key == b[1].Key {
		t.Error("repeat entries must never share keys across derivations")
	}
	if a[0].Name != "Deadlift" || a[1].Name != "Row" {
		t.Errorf("entries = %+v", a)
	}
}
