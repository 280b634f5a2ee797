package valueobjects

type GuardianshipStatus string

const (
	StatusActive    GuardianshipStatus = "active"
	StatusGrace     GuardianshipStatus = "grace"
	StatusCompleted GuardianshipStatus = "completed"
	StatusCancelled GuardianshipStatus = "cancelled"
)

var ValidStatuses = map[GuardianshipStatus]bool{
	StatusActive:    true,
	StatusGrace:     true,
	StatusCompleted: true,
	StatusCancelled: true,
}

func (s GuardianshipStatus) IsValid() bool {
	return ValidStatuses[s]
}

// IsTerminal reports whether the guardianship can never change again.
func (s GuardianshipStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows moving to target.
// Completed and cancelled are reachable only from active or grace.
func (s GuardianshipStatus) CanTransitionTo(target GuardianshipStatus) bool {
	switch s {
	case StatusActive:
		return target == StatusGrace || target == StatusCompleted || target == StatusCancelled
	case StatusGrace:
		return target == StatusActive || target == StatusCompleted || target == StatusCancelled
	default:
		return false
	}
}

func (s GuardianshipStatus) String() string {
	return string(s)
}
