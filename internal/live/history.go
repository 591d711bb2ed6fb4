package live

import (
	"encoding/json"
	"fmt"
	"time"

	"cyclecoach/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PerformanceRow is one exercise of a past session flattened to a single
// viewer's values.
type PerformanceRow struct {
	Exercise string              `json:"exercise"`
	Type     domain.ExerciseType `json:"type"`
	Target   string              `json:"target,omitempty"`
	Val1     string              `json:"val1,omitempty"`
	Val2     string              `json:"val2,omitempty"`
	Note     string              `json:"note,omitempty"`
}

// SessionHistory is the read-only view of a stored group session for one
// participant.
type SessionHistory struct {
	Date        time.Time        `json:"date"`
	DayName     string           `json:"dayName"`
	CoachName   string           `json:"coachName"`
	SessionNote string           `json:"sessionNote,omitempty"`
	Performance []PerformanceRow `json:"performance"`
}

// DecodeExercisesSummary accepts a record's exercise summary either as the
// structured list or as its serialized JSON text and returns the structured
// form. Both arrive in the wild: newer records store the list, older ones a
// string.
func DecodeExercisesSummary(raw any) ([]domain.ExerciseSummary, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []domain.ExerciseSummary:
		return v, nil
	case json.RawMessage:
		return unmarshalSummary([]byte(v))
	case []byte:
		return unmarshalSummary(v)
	case string:
		return unmarshalSummary([]byte(v))
	default:
		return nil, fmt.Errorf("history: unsupported exercises summary form %T", raw)
	}
}

func unmarshalSummary(data []byte) ([]domain.ExerciseSummary, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out []domain.ExerciseSummary
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("history: decode exercises summary: %w", err)
	}
	return out, nil
}

// Reconstruct flattens a stored record into the given participant's view.
// Exercises the participant has no result row for still appear, with empty
// values, so the day's full plan stays visible.
func Reconstruct(rec domain.GroupSessionRecord, participantID primitive.ObjectID) SessionHistory {
	h := SessionHistory{
		Date:      rec.Date,
		DayName:   rec.DayName,
		CoachName: rec.CoachName,
	}
	for _, p := range rec.Participants {
		if p.ParticipantID == participantID {
			h.SessionNote = p.Note
			break
		}
	}
	for _, ex := range rec.ExercisesSummary {
		row := PerformanceRow{
			Exercise: ex.Name,
			Type:     ex.Type,
			Target:   ex.Target,
		}
		for _, r := range ex.Results {
			if r.ParticipantID == participantID {
				row.Val1 = r.Val1
				row.Val2 = r.Val2
				row.Note = r.Note
				break
			}
		}
		h.Performance = append(h.Performance, row)
	}
	return h
}

// DeriveRepeatSeed turns a past session into a plan seed for a new one:
// {name, type, target} per exercise, all participant results stripped. The
// returned specs get fresh transient keys the moment they enter a Session,
// so nothing here can collide with the source record's identities.
func DeriveRepeatSeed(rec domain.GroupSessionRecord) []domain.ExerciseSpec {
	seed := make([]domain.ExerciseSpec, 0, len(rec.ExercisesSummary))
	for _, ex := range rec.ExercisesSummary {
		seed = append(seed, domain.ExerciseSpec{
			Name:   ex.Name,
			Type:   ex.Type,
			Target: ex.Target,
		})
	}
	return seed
}

// RepeatEntries is DeriveRepeatSeed materialized as in-progress entries with
// transient keys, for callers assembling a Session by hand.
func RepeatEntries(rec domain.GroupSessionRecord) []ExerciseEntry {
	seed := DeriveRepeatSeed(rec)
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
