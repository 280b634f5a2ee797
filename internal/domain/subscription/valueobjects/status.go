package valueobjects

type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
)

var ValidStatuses = map[SubscriptionStatus]bool{
	StatusActive:    true,
	StatusPastDue:   true,
	StatusCancelled: true,
}

func (s SubscriptionStatus) IsValid() bool {
	return ValidStatuses[s]
}

// IsLive reports whether the subscription still bills: anything that is not
// cancelled.
func (s SubscriptionStatus) IsLive() bool {
	return s == StatusActive || s == StatusPastDue
}

// CanTransitionTo reports whether the state machine allows moving to target.
func (s SubscriptionStatus) CanTransitionTo(target SubscriptionStatus) bool {
	switch s {
	case StatusActive:
		return target == StatusPastDue || target == StatusCancelled
	case StatusPastDue:
		return target == StatusActive || target == StatusCancelled
	case StatusCancelled:
		return false
	default:
		return false
	}
}

func (s SubscriptionStatus) String() string {
	return string(s)
}
