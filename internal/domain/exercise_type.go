package domain

// ExerciseType selects the semantic meaning of the two generic performance
// value slots captured for an exercise.
type ExerciseType string

const (
	ExerciseStrength ExerciseType = "strength"
	ExerciseCardio   ExerciseType = "cardio"
	ExerciseTime     ExerciseType = "time"
)

// ValueLabels describes how the two generic value slots of an exercise
// should be presented for a given ExerciseType.
type ValueLabels struct {
	Label1 string
	Unit1  string
	Label2 string
	Unit2  string
}

// valueLabels is the single source of truth for the type → slot-meaning
// mapping. Both live entry and history display read from here, so the two
// surfaces cannot drift apart.
var valueLabels = map[ExerciseType]ValueLabels{
	ExerciseStrength: {Label1: "Weight", Unit1: "kg", Label2: "Reps", Unit2: ""},
	ExerciseCardio:   {Label1: "Distance", Unit1: "km", Label2: "Time", Unit2: "min"},
	ExerciseTime:     {Label1: "Time", Unit1: "min", Label2: "Weight", Unit2: "kg"},
}

// IsValid reports whether t is one of the known exercise types.
func (t ExerciseType) IsValid() bool {
	_, ok := valueLabels[t]
	return ok
}

// Labels returns the presentation labels for t. Unknown types fall back to
// the strength mapping rather than failing, since stored records may predate
// a type rename.
func (t ExerciseType) Labels() ValueLabels {
	if l, ok := valueLabels[t]; ok {
		return l
	}
	return valueLabels[ExerciseStrength]
}
