package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bounds for TrainingPlan.CycleLength.
const (
	MinCycleLength = 1
	MaxCycleLength = 14
)

var (
	ErrCycleLengthOutOfRange = errors.New("cycle length must be between 1 and 14")
	ErrDayTemplateMismatch   = errors.New("day templates must form a dense 0-based order matching the cycle length")
)

// DayTemplate is one named workout definition recurring at a fixed position
// within each cycle of a plan. Order values are a dense 0..cycleLength-1
// permutation, enforced at plan creation.
type DayTemplate struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Order int                `bson:"order" json:"order"`
}

// TrainingPlan defines how a subscription's sessions repeat: a cycle of
// CycleLength day templates, walked in order. 1:1 with a Subscription.
// Deleting a plan resets scheduling but never touches SessionLogs.
type TrainingPlan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubscriptionID primitive.ObjectID `bson:"subscriptionId" json:"subscriptionId"`
	CoachID        primitive.ObjectID `bson:"coachId" json:"coachId"`
	CycleLength    int                `bson:"cycleLength" json:"cycleLength"`
	DayTemplates   []DayTemplate      `bson:"dayTemplates" json:"dayTemplates"` // Sorted by Order
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the cycle-length bounds and that the day templates form a
// dense 0-based permutation of positions.
func (p *TrainingPlan) Validate() error {
	if p.CycleLength < MinCycleLength || p.CycleLength > MaxCycleLength {
		return ErrCycleLengthOutOfRange
	}
	if len(p.DayTemplates) != p.CycleLength {
		return ErrDayTemplateMismatch
	}
	seen := make(map[int]bool, len(p.DayTemplates))
	for _, dt := range p.DayTemplates {
		if dt.Order < 0 || dt.Order >= p.CycleLength || seen[dt.Order] {
			return fmt.Errorf("%w: bad order %d", ErrDayTemplateMismatch, dt.Order)
		}
		seen[dt.Order] = true
	}
	return nil
}

// OrderedDayTemplates returns the day templates sorted by Order without
// mutating the plan.
func (p *TrainingPlan) OrderedDayTemplates() []DayTemplate {
	out := make([]DayTemplate, len(p.DayTemplates))
	copy(out, p.DayTemplates)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}
