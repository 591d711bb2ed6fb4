package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseResult is one participant's captured performance for one exercise
// of a finished group session. Val1/Val2 are free-form; their meaning is
// given by the owning exercise's Type.
type ExerciseResult struct {
	ParticipantID   primitive.ObjectID `bson:"participantId" json:"participantId"`
	ParticipantName string             `bson:"participantName" json:"participantName"`
	Val1            string             `bson:"val1,omitempty" json:"val1,omitempty"`
	Val2            string             `bson:"val2,omitempty" json:"val2,omitempty"`
	Note            string             `bson:"note,omitempty" json:"note,omitempty"`
}

// ExerciseSummary is one exercise of a finished group session together with
// every present participant's results.
type ExerciseSummary struct {
	Name    string           `bson:"name" json:"name"`
	Type    ExerciseType     `bson:"type" json:"type"`
	Target  string           `bson:"target,omitempty" json:"target,omitempty"`
	Results []ExerciseResult `bson:"results" json:"results"`
}

// SessionParticipant is one attendee row of a finished group session. Only
// participants present at submission time appear here at all; absentees are
// filtered out before the record is built.
type SessionParticipant struct {
	ParticipantID primitive.ObjectID `bson:"participantId" json:"participantId"`
	Name          string             `bson:"name" json:"name"`
	Note          string             `bson:"note" json:"note"` // Falls back to "Completed"
}

// GroupSessionRecord is the immutable outcome of one live group session,
// created exactly once on Finish. No in-place edits afterwards.
type GroupSessionRecord struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CoachID          primitive.ObjectID   `bson:"coachId" json:"coachId"`
	CoachName        string               `bson:"coachName,omitempty" json:"coachName,omitempty"` // Denormalized for display
	DayName          string               `bson:"dayName" json:"dayName"`
	Date             time.Time            `bson:"date" json:"date"`
	ExercisesSummary []ExerciseSummary    `bson:"exercisesSummary" json:"exercisesSummary"`
	Participants     []SessionParticipant `bson:"participants" json:"participants"`
	CreatedAt        time.Time            `bson:"createdAt" json:"createdAt"`
}
