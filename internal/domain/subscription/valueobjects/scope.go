package valueobjects

import "fmt"

// ScopeType tags what a subscription funds.
type ScopeType string

const (
	ScopeStandalone   ScopeType = "standalone"
	ScopeGuardianship ScopeType = "guardianship"
)

func (t ScopeType) IsValid() bool {
	return t == ScopeStandalone || t == ScopeGuardianship
}

// Scope is a tagged union: standalone subscriptions carry no id,
// guardianship-scoped ones reference exactly one guardianship.
type Scope struct {
	scopeType ScopeType
	id        uint
}

func StandaloneScope() Scope {
	return Scope{scopeType: ScopeStandalone}
}

func GuardianshipScope(guardianshipID uint) (Scope, error) {
	if guardianshipID == 0 {
		return Scope{}, fmt.Errorf("guardianship scope requires a guardianship id")
	}
	return Scope{scopeType: ScopeGuardianship, id: guardianshipID}, nil
}

func NewScope(scopeType ScopeType, id uint) (Scope, error) {
	switch scopeType {
	case ScopeStandalone:
		if id != 0 {
			return Scope{}, fmt.Errorf("standalone scope must not carry an id")
		}
		return StandaloneScope(), nil
	case ScopeGuardianship:
		return GuardianshipScope(id)
	default:
		return Scope{}, fmt.Errorf("invalid scope type: %s", scopeType)
	}
}

func (s Scope) Type() ScopeType {
	return s.scopeType
}

func (s Scope) ID() uint {
	return s.id
}

func (s Scope) IsGuardianship() bool {
	return s.scopeType == ScopeGuardianship
}
