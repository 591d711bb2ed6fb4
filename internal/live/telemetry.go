package live

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type noteToggle struct {
	participant primitive.ObjectID
	exercise    string
}

// Telemetry is the presentation-only state of a live session: the elapsed
// timer and which note fields were toggled open. None of it ends up in the
// submitted record, and it resets with every new Session.
type Telemetry struct {
	running   bool
	startedAt time.Time
	elapsed   time.Duration

	openNotes map[noteToggle]bool

	now func() time.Time // Injectable for tests
}

func newTelemetry() Telemetry {
	return Telemetry{
		openNotes: make(map[noteToggle]bool),
		now:       time.Now,
	}
}

// ToggleTimer starts the timer if stopped and stops it if running.
func (t *Telemetry) ToggleTimer() {
	if t.running {
		t.elapsed += t.now().Sub(t.startedAt)
		t.running = false
		return
	}
	t.startedAt = t.now()
	t.running = true
}

// Running reports whether the timer is counting.
func (t *Telemetry) Running() bool {
	return t.running
}

// ElapsedSeconds returns the whole seconds counted so far, including the
// current run if the timer is going.
func (t *Telemetry) ElapsedSeconds() int {
	d := t.elapsed
	if t.running {
		d += t.now().Sub(t.startedAt)
	}
	return int(d / time.Second)
}

// ToggleNote flips the explicit open/closed flag for one
// (participant, exercise) note field.
func (t *Telemetry) ToggleNote(participantID primitive.ObjectID, exerciseKey string) {
	k := noteToggle{participantID, exerciseKey}
	t.openNotes[k] = !t.openNotes[k]
}

func (t *Telemetry) noteOpen(participantID primitive.ObjectID, exerciseKey string) bool {
	return t.openNotes[noteToggle{participantID, exerciseKey}]
}
