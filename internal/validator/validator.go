// internal/validator/validator.go
package validator

import (
	"fmt"
	"strconv"
	"strings"

	"rf-serial-service/internal/model"
)

// Validator checks raw operator input against the transceiver's
// accepted value range. It is stateless and safe to call per keystroke.
type Validator struct {
	minValue int
	maxValue int
}

// New creates a validator with the given inclusive value bounds
func New(minValue, maxValue int) *Validator {
	return &Validator{
		minValue: minValue,
		maxValue: maxValue,
	}
}

// Validate validates raw input text. Empty or whitespace-only input is
// valid with an empty message; callers substitute the default value.
// A single leading '-' is tolerated syntactically so that negative
// input reaches the range check and gets a precise bound message.
func (v *Validator) Validate(input string) model.ValidationResult {
	stripped := strings.TrimSpace(input)
	if stripped == "" {
		return model.ValidationResult{IsValid: true}
	}

	digits := stripped
	if strings.HasPrefix(stripped, "-") {
		digits = stripped[1:]
	}
	if digits == "" || !isAllDigits(digits) {
		return model.ValidationResult{Message: "Invalid: Numbers only"}
	}

	value, err := strconv.Atoi(stripped)
	if err != nil {
		// The digit check already passed, so the only parse failure
		// left is overflow; report it as the violated bound
		if strings.HasPrefix(stripped, "-") {
			return model.ValidationResult{Message: fmt.Sprintf("Invalid: Min value is %d", v.minValue)}
		}
		return model.ValidationResult{Message: fmt.Sprintf("Invalid: Max value is %d", v.maxValue)}
	}

	if value < v.minValue {
		return model.ValidationResult{Message: fmt.Sprintf("Invalid: Min value is %d", v.minValue)}
	}
	if value > v.maxValue {
		return model.ValidationResult{Message: fmt.Sprintf("Invalid: Max value is %d", v.maxValue)}
	}

	return model.ValidationResult{IsValid: true}
}

// ParseValue converts validated input to its integer value. Empty or
// whitespace-only input yields the given default.
func (v *Validator) ParseValue(input string, defaultValue int) (int, error) {
	stripped := strings.TrimSpace(input)
	if stripped == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(stripped)
}

// IsValidChar reports whether a single character is acceptable for
// value input. Only decimal digits pass; sign and range rules are the
// job of Validate.
func IsValidChar(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
