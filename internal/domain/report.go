package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionReport stores metadata about an archived copy of a finished group
// session, typically a JSON snapshot written to S3 right after Finish.
// The actual object resides in the bucket; this row only locates it.
type SessionReport struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupSessionID primitive.ObjectID `bson:"groupSessionId" json:"groupSessionId"`
	CoachID        primitive.ObjectID `bson:"coachId" json:"coachId"`
	S3ObjectKey    string             `bson:"s3ObjectKey" json:"-"` // Internal use only
	ContentType    string             `bson:"contentType" json:"contentType"`
	Size           int64              `bson:"size" json:"size"`
	ArchivedAt     time.Time          `bson:"archivedAt" json:"archivedAt"`
}
