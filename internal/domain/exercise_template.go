package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseSpec is one entry of a template: what to do and the prescribed
// target (free text, e.g. "4x10"). Type drives how captured values are
// labelled, see ExerciseType.
type ExerciseSpec struct {
	Name   string       `bson:"name" json:"name"`
	Type   ExerciseType `bson:"type" json:"type"`
	Target string       `bson:"target,omitempty" json:"target,omitempty"`
}

// ExerciseTemplate is a named, reusable ordered list of exercise specs.
// Loading a template into a live session copies values; the template itself
// is never aliased by in-progress state.
type ExerciseTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"` // Owner
	Name      string             `bson:"name" json:"name"`
	Exercises []ExerciseSpec     `bson:"exercises" json:"exercises"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
