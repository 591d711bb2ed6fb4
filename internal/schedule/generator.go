// Package schedule expands a finite subscription of sessions into repeating
// cycles of day templates and reconciles that expansion against completion
// logs. Everything here is pure: results are derived on demand and never
// persisted.
package schedule

import (
	"fmt"

	"cyclecoach/internal/domain"
)

// SessionSlot is a derived projection of one session number onto its day
// template. Not persisted.
type SessionSlot struct {
	SessionNumber int    `json:"sessionNumber"` // 1-based
	CycleIndex    int    `json:"cycleIndex"`    // 0-based
	TemplateID    string `json:"templateId"`
	TemplateName  string `json:"templateName"`

	// Reconciled against SessionLogs, zero-valued until Reconcile runs.
	Completed     bool   `json:"completed"`
	CompletedDate string `json:"completedDate,omitempty"` // RFC 3339 date, empty when incomplete
	CompletedBy   string `json:"completedBy,omitempty"`
}

// Cycle is one pass through the plan's day templates. The final cycle of a
// schedule may be shorter than the cycle length when the subscription total
// is not a multiple of it.
type Cycle []SessionSlot

// Generate maps (totalSessions, cycleLength, orderedDayTemplates) onto an
// ordered list of cycles. Session numbers run 1..totalSessions with no gaps;
// slot n takes template (n-1) mod cycleLength. totalSessions <= 0 yields an
// empty schedule. A day-template list whose length disagrees with
// cycleLength is a caller bug and returns an error.
func Generate(totalSessions, cycleLength int, days []domain.DayTemplate) ([]Cycle, error) {
	if cycleLength < domain.MinCycleLength || cycleLength > domain.MaxCycleLength {
		return nil, fmt.Errorf("schedule: cycle length %d out of range [%d,%d]",
			cycleLength, domain.MinCycleLength, domain.MaxCycleLength)
	}
	if len(days) != cycleLength {
		return nil, fmt.Errorf("schedule: %d day templates for cycle length %d", len(days), cycleLength)
	}
	if totalSessions <= 0 {
		return []Cycle{}, nil
	}

	cycles := make([]Cycle, 0, (totalSessions+cycleLength-1)/cycleLength)
	current := make(Cycle, 0, cycleLength)
	for n := 1; n <= totalSessions; n++ {
		tmpl := days[(n-1)%cycleLength]
		current = append(current, SessionSlot{
			SessionNumber: n,
			CycleIndex:    len(cycles),
			TemplateID:    tmpl.ID.Hex(),
			TemplateName:  tmpl.Name,
		})
		if len(current) == cycleLength {
			cycles = append(cycles, current)
			current = make(Cycle, 0, cycleLength)
		}
	}
	if len(current) > 0 {
		cycles = append(cycles, current)
	}
	return cycles, nil
}
