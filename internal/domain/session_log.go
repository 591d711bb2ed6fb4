package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionLog asserts that a specific session number of a subscription was
// completed. Logs are append-only and outlive the training plan that
// scheduled them. At most one log is expected per
// (subscriptionId, sessionNumber) pair; a unique index backs that up.
type SessionLog struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	SubscriptionID primitive.ObjectID  `bson:"subscriptionId" json:"subscriptionId"`
	SessionNumber  int                 `bson:"sessionNumber" json:"sessionNumber"` // 1-based
	Completed      bool                `bson:"completed" json:"completed"`
	DateCompleted  time.Time           `bson:"dateCompleted" json:"dateCompleted"`
	CoachID        *primitive.ObjectID `bson:"coachId,omitempty" json:"coachId,omitempty"` // Attributed coach, optional
	CoachName      string              `bson:"coachName,omitempty" json:"coachName,omitempty"`
	CreatedAt      time.Time           `bson:"createdAt" json:"createdAt"`
}
