// File: internal/domain/narrative.go
package domain

import (
	"errors"
	"strings"
)

// ErrEmptyNarrative is returned when the patient narrative is blank.
var ErrEmptyNarrative = errors.New("patient narrative cannot be empty")

// ValidateNarrative rejects narratives that are empty or whitespace only.
func ValidateNarrative(narrative string) error {
	if strings.TrimSpace(narrative) == "" {
		return ErrEmptyNarrative
	}
	return nil
}
