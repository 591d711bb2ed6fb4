package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Subscription is a finite block of training sessions purchased by a
// participant and serviced by one coach. TotalSessions is fixed once a
// TrainingPlan exists for the subscription; progress against it is always
// derived from SessionLogs, never stored here.
type Subscription struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ParticipantID primitive.ObjectID `bson:"participantId" json:"participantId"`
	CoachID       primitive.ObjectID `bson:"coachId" json:"coachId"`
	TotalSessions int                `bson:"totalSessions" json:"totalSessions"` // Positive
	StartDate     time.Time          `bson:"startDate" json:"startDate"`
	Active        bool               `bson:"active" json:"active"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
