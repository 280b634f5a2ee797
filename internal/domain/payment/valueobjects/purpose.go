package valueobjects

import "fmt"

// Purpose describes what a donation funds.
type Purpose string

const (
	PurposeGeneral      Purpose = "general"
	PurposeMedical      Purpose = "medical"
	PurposeFood         Purpose = "food"
	PurposeGuardianship Purpose = "guardianship"
)

func NewPurpose(s string) (Purpose, error) {
	p := Purpose(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid donation purpose: %s", s)
	}
	return p, nil
}

func (p Purpose) IsValid() bool {
	switch p {
	case PurposeGeneral, PurposeMedical, PurposeFood, PurposeGuardianship:
		return true
	default:
		return false
	}
}

func (p Purpose) String() string {
	return string(p)
}
