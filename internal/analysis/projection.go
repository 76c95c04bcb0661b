package analysis

import "fmt"

// WorkoutType categorizes a planned workout. Future workouts have no power
// data yet, so their strain split comes from fixed type-based heuristics
// rather than the full allocator.
type WorkoutType int

const (
	WorkoutRecovery WorkoutType = iota
	WorkoutEndurance
	WorkoutTempo
	WorkoutThreshold
	WorkoutVO2Max
	WorkoutSprint
	WorkoutRace
)

var workoutTypeNames = map[WorkoutType]string{
	WorkoutRecovery:  "recovery",
	WorkoutEndurance: "endurance",
	WorkoutTempo:     "tempo",
	WorkoutThreshold: "threshold",
	WorkoutVO2Max:    "vo2max",
	WorkoutSprint:    "sprint",
	WorkoutRace:      "race",
}

func (t WorkoutType) String() string {
	if name, ok := workoutTypeNames[t]; ok {
		return name
	}
	return "endurance"
}

// ParseWorkoutType maps a stored string back to a workout type.
func ParseWorkoutType(s string) (WorkoutType, error) {
	for t, name := range workoutTypeNames {
		if name == s {
			return t, nil
		}
	}
	return WorkoutEndurance, fmt.Errorf("unknown workout type %q", s)
}

// PlannedWorkout is one day of a proposed plan: a workout type and its
// target stress score. A zero-value entry is a planned rest day.
type PlannedWorkout struct {
	Type         WorkoutType
	TargetStress float64
}

// PlannedStrain estimates the strain breakdown a planned workout would
// produce if executed as prescribed. Recovery rides are assumed to come in
// under target; everything else hits it.
func PlannedStrain(w PlannedWorkout) DailyStrain {
	tss := w.TargetStress
	if tss <= 0 {
		return DailyStrain{}
	}

	switch w.Type {
	case WorkoutRecovery:
		return DailyStrain{Total: tss * 0.8, Low: tss * 0.7, High: tss * 0.08, Peak: tss * 0.02}
	case WorkoutEndurance:
		return DailyStrain{Total: tss, Low: tss * 0.80, High: tss * 0.15, Peak: tss * 0.05}
	case WorkoutTempo, WorkoutThreshold:
		return DailyStrain{Total: tss, Low: tss * 0.45, High: tss * 0.40, Peak: tss * 0.15}
	default: // vo2max, sprint, race
		return DailyStrain{Total: tss, Low: tss * 0.30, High: tss * 0.40, Peak: tss * 0.30}
	}
}

// ProjectedDay is one day of a forward simulation.
type ProjectedDay struct {
	State  LoadState
	Strain DailyStrain
	Status TrainingStatus
}

// ProjectLoad simulates the load trajectory of following a plan from the
// current state. Days beyond the plan length decay with no added strain.
// The result answers "what will my form be if I do this" and must never be
// persisted as observed history.
func ProjectLoad(current LoadState, plan []PlannedWorkout, horizonDays int, t StatusThresholds) []ProjectedDay {
	if horizonDays < len(plan) {
		horizonDays = len(plan)
	}

	days := make([]ProjectedDay, 0, horizonDays)
	state := current

	for i := 0; i < horizonDays; i++ {
		var strain DailyStrain
		if i < len(plan) {
			strain = PlannedStrain(plan[i])
		}

		state = Advance(state, strain, 1)
		days = append(days, ProjectedDay{
			State:  state,
			Strain: strain,
			Status: ClassifyStatus(state, t),
		})
	}

	return days
}
