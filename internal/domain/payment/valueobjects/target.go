package valueobjects

import "fmt"

// TargetType tags what entity a ledger entry funds. A payment either has no
// target (free-form donation) or references exactly one owning entity.
type TargetType string

const (
	TargetTypeNone         TargetType = ""
	TargetTypeGuardianship TargetType = "guardianship"
	TargetTypeProject      TargetType = "project"
)

func (t TargetType) IsValid() bool {
	switch t {
	case TargetTypeNone, TargetTypeGuardianship, TargetTypeProject:
		return true
	default:
		return false
	}
}

// Target is the tagged union (type, id). The zero value means "no target".
type Target struct {
	targetType TargetType
	id         uint
}

func NoTarget() Target {
	return Target{}
}

func NewTarget(targetType TargetType, id uint) (Target, error) {
	if targetType == TargetTypeNone {
		if id != 0 {
			return Target{}, fmt.Errorf("target id set without a target type")
		}
		return Target{}, nil
	}
	if !targetType.IsValid() {
		return Target{}, fmt.Errorf("invalid target type: %s", targetType)
	}
	if id == 0 {
		return Target{}, fmt.Errorf("target id is required for target type %s", targetType)
	}
	return Target{targetType: targetType, id: id}, nil
}

// GuardianshipTarget builds a target pointing at a guardianship.
func GuardianshipTarget(guardianshipID uint) Target {
	return Target{targetType: TargetTypeGuardianship, id: guardianshipID}
}

func (t Target) Type() TargetType {
	return t.targetType
}

func (t Target) ID() uint {
	return t.id
}

func (t Target) IsZero() bool {
	return t.targetType == TargetTypeNone
}

func (t Target) IsGuardianship() bool {
	return t.targetType == TargetTypeGuardianship
}
