package risk

import "fmt"

// ValidationError reports a missing, mistyped, or out-of-range input field.
type ValidationError struct {
	Scale      ScaleID `json:"scale"`
	Field      string  `json:"field"`
	Constraint string  `json:"constraint"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Scale, e.Field, e.Constraint)
}

// ConfigurationError reports an unknown scale or a malformed scale definition.
type ConfigurationError struct {
	Scale  string `json:"scale"`
	Reason string `json:"reason"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("scale %q: %s", e.Scale, e.Reason)
}
