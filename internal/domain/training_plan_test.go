package domain

import (
	"errors"
	"testing"
)

func planWithOrders(orders ...int) TrainingPlan {
	p := TrainingPlan{CycleLength: len(orders)}
	for i, o := range orders {
		p.DayTemplates = append(p.DayTemplates, DayTemplate{Name: string(rune('A' + i)), Order: o})
	}
	return p
}

func TestTrainingPlanValidate(t *testing.T) {
	tests := []struct {
		name    string
		plan    TrainingPlan
		wantErr error
	}{
		{"single day", planWithOrders(0), nil},
		{"three days in order", planWithOrders(0, 1, 2), nil},
		{"three days shuffled", planWithOrders(2, 0, 1), nil},
		{"zero cycle length", TrainingPlan{CycleLength: 0}, ErrCycleLengthOutOfRange},
		{"above max", TrainingPlan{CycleLength: 15}, ErrCycleLengthOutOfRange},
		{"template count mismatch", TrainingPlan{CycleLength: 3, DayTemplates: []DayTemplate{{Order: 0}}}, ErrDayTemplateMismatch},
		{"duplicate order", planWithOrders(0, 0, 2), ErrDayTemplateMismatch},
		{"gap in orders", planWithOrders(0, 1, 3), ErrDayTemplateMismatch},
		{"negative order", planWithOrders(-1, 0, 1), ErrDayTemplateMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrderedDayTemplates(t *testing.T) {
	p := planWithOrders(2, 0, 1) // A=2, B=0, C=1
	got := p.OrderedDayTemplates()
	wantNames := []string{"B", "C", "A"}
	for i, w := range wantNames {
		if got[i].Name != w {
			t.Errorf("position %d = %q, want %q", i, got[i].Name, w)
		}
	}
	// The plan's own slice is left as stored.
	if p.DayTemplates[0].Name != "A" {
		t.Error("OrderedDayTemplates mutated the plan")
	}
}

func TestExerciseTypeLabels(t *testing.T) {
	tests := []struct {
		typ   ExerciseType
		want  ValueLabels
		valid bool
	}{
		{ExerciseStrength, ValueLabels{"Weight", "kg", "Reps", ""}, true},
		{ExerciseCardio, ValueLabels{"Distance", "km", "Time", "min"}, true},
		{ExerciseTime, ValueLabels{"Time", "min", "Weight", "kg"}, true},
		{ExerciseType("yoga"), ValueLabels{"Weight", "kg", "Reps", ""}, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
			if got := tt.typ.Labels(); got != tt.want {
				t.Errorf("Labels() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
