package schedule

import (
	"time"

	"cyclecoach/internal/domain"
)

// DefaultCompletedBy is shown when a completed log carries no attributed
// coach.
const DefaultCompletedBy = "Assigned Trainer"

// Progress is the reconciled view of a schedule: the annotated cycles plus
// the derived aggregate. Re-computed on every read, never stored.
type Progress struct {
	Cycles          []Cycle `json:"cycles"`
	TotalSessions   int     `json:"totalSessions"`
	CompletedCount  int     `json:"completedCount"`
	ProgressPercent float64 `json:"progressPercent"`
}

// Reconcile annotates the generated cycles with completion state from the
// subscription's logs and derives aggregate progress. Only logs with
// Completed set count. If more than one completed log shares a session
// number (not expected; the store indexes against it) the first match wins.
func Reconcile(cycles []Cycle, totalSessions int, logs []domain.SessionLog) Progress {
	completedBySession := make(map[int]domain.SessionLog, len(logs))
	for _, l := range logs {
		if !l.Completed {
			continue
		}
		if _, ok := completedBySession[l.SessionNumber]; !ok {
			completedBySession[l.SessionNumber] = l
		}
	}

	out := make([]Cycle, len(cycles))
	completed := 0
	for i, cycle := range cycles {
		annotated := make(Cycle, len(cycle))
		for j, slot := range cycle {
			if log, ok := completedBySession[slot.SessionNumber]; ok {
				slot.Completed = true
				slot.CompletedDate = log.DateCompleted.Format(time.DateOnly)
				slot.CompletedBy = log.CoachName
				if slot.CompletedBy == "" {
					slot.CompletedBy = DefaultCompletedBy
				}
				completed++
			}
			annotated[j] = slot
		}
		out[i] = annotated
	}

	return Progress{
		Cycles:          out,
		TotalSessions:   totalSessions,
		CompletedCount:  completed,
		ProgressPercent: progressPercent(completed, totalSessions),
	}
}

// progressPercent caps at exactly 100 once completed >= total.
func progressPercent(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return float64(completed) / float64(total) * 100
}
