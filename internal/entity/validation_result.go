package entity

// ValidationResult is a lightweight single-message validation shape:
// one code, one severity, one message. The api.Response envelope does
// not carry it, and no multi-message validation type exists alongside
// it.
type ValidationResult struct {
	Valid    bool                   `json:"valid"`
	Code     string                 `json:"code"`
	Severity string                 `json:"severity"`
	Message  string                 `json:"message"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// NewValidationResult returns a passing validation result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Code:     "VALIDATION_SUCCESS",
		Severity: string(SeverityLow),
		Message:  "validation passed",
		Context:  make(map[string]interface{}),
	}
}

// NewValidationError returns a failing validation result.
func NewValidationError(code, message string) *ValidationResult {
	return &ValidationResult{
		Valid:    false,
		Code:     code,
		Severity: string(SeverityCritical),
		Message:  message,
		Context:  make(map[string]interface{}),
	}
}
