package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleCoach       Role = "coach"
	RoleParticipant Role = "participant"
)

// User represents a user in the system (either a Coach or a Participant).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Coach-specific ---
	// ObjectIDs of Participants on this Coach's roster.
	ParticipantIDs []primitive.ObjectID `bson:"participantIds,omitempty" json:"participantIds,omitempty"`

	// --- Participant-specific ---
	// The Coach this Participant is enrolled with. A participant might not
	// be enrolled immediately, hence the pointer.
	CoachID *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsParticipant() bool {
	return u.Role == RoleParticipant
}
