package plan

// WorkoutType classifies a workout. Unknown values parse as WorkoutTypeEasy.
type WorkoutType string

const (
	WorkoutTypeEasy          WorkoutType = "easy"
	WorkoutTypeLong          WorkoutType = "long"
	WorkoutTypeTempo         WorkoutType = "tempo"
	WorkoutTypeInterval      WorkoutType = "interval"
	WorkoutTypeRecovery      WorkoutType = "recovery"
	WorkoutTypeFartlek       WorkoutType = "fartlek"
	WorkoutTypeHills         WorkoutType = "hills"
	WorkoutTypeRace          WorkoutType = "race"
	WorkoutTypeRest          WorkoutType = "rest"
	WorkoutTypeCrossTraining WorkoutType = "cross_training"

	DefaultWorkoutType = WorkoutTypeEasy
)

// WorkoutTypes lists every known workout type.
var WorkoutTypes = []WorkoutType{
	WorkoutTypeEasy, WorkoutTypeLong, WorkoutTypeTempo, WorkoutTypeInterval, WorkoutTypeRecovery,
	WorkoutTypeFartlek, WorkoutTypeHills, WorkoutTypeRace, WorkoutTypeRest, WorkoutTypeCrossTraining,
}

// StepType classifies a workout step. Unknown values parse as StepTypeWork.
type StepType string

const (
	StepTypeWarmup   StepType = "warmup"
	StepTypeWork     StepType = "work"
	StepTypeRecovery StepType = "recovery"
	StepTypeCooldown StepType = "cooldown"

	DefaultStepType = StepTypeWork
)

var StepTypes = []StepType{StepTypeWarmup, StepTypeWork, StepTypeRecovery, StepTypeCooldown}

// GoalType is how a step ends. Unknown values parse as GoalTypeOpen.
type GoalType string

const (
	GoalTypeDistance GoalType = "distance" // GoalValue in km
	GoalTypeTime     GoalType = "time"     // GoalValue in minutes
	GoalTypeOpen     GoalType = "open"

	DefaultGoalType = GoalTypeOpen
)

var GoalTypes = []GoalType{GoalTypeDistance, GoalTypeTime, GoalTypeOpen}

// Location is where a workout takes place. Unknown values parse as LocationOutdoor.
type Location string

const (
	LocationOutdoor   Location = "outdoor"
	LocationTreadmill Location = "treadmill"
	LocationTrack     Location = "track"
	LocationTrail     Location = "trail"

	DefaultLocation = LocationOutdoor
)

var Locations = []Location{LocationOutdoor, LocationTreadmill, LocationTrack, LocationTrail}

// ParseWorkoutType matches s exactly against the known types.
func ParseWorkoutType(s string) WorkoutType {
	return matchEnum(s, WorkoutTypes, DefaultWorkoutType)
}

// ParseStepType matches s exactly against the known step types.
func ParseStepType(s string) StepType {
	return matchEnum(s, StepTypes, DefaultStepType)
}

// ParseGoalType matches s exactly against the known goal types.
func ParseGoalType(s string) GoalType {
	return matchEnum(s, GoalTypes, DefaultGoalType)
}

// ParseLocation matches s exactly against the known locations.
func ParseLocation(s string) Location {
	return matchEnum(s, Locations, DefaultLocation)
}

func matchEnum[T ~string](s string, known []T, fallback T) T {
	for _, k := range known {
		if string(k) == s {
			return k
		}
	}
	return fallback
}
