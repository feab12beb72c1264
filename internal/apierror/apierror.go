// Package apierror provides the error envelope of every 4xx/5xx response.
// Internal details (SQL errors, stack traces) never reach clients.
package apierror

// APIError is the canonical error envelope. Code is a stable machine-readable
// tag for errors clients are expected to branch on.
type APIError struct {
	Code   string `json:"code,omitempty"`
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func WithCode(code, msg string) *APIError {
	return &APIError{Code: code, Detail: msg}
}

// ValidationError wraps per-field failures.
type ValidationError struct {
	Code   string            `json:"code"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Code: CodeValidation, Detail: "validation failed", Fields: fields}
}

const (
	CodeValidation = "validation_error"
	CodeContention = "sequence_contention"
	CodeNotFound   = "not_found"
)
