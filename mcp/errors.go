package mcp

import (
	"fmt"
	"strings"
)

// ToolError represents a structured error from tool execution
type ToolError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Tool       string                 `json:"tool,omitempty"`
	Field      string                 `json:"field,omitempty"`
	FieldValue interface{}            `json:"field_value,omitempty"`
	Hint       string                 `json:"hint,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HttpStatus int                    `json:"http_status,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ValidationError represents field-level validation errors
type ValidationError struct {
	Tool       string                 `json:"tool"`
	Message    string                 `json:"message"`
	Fields     map[string]*FieldError `json:"fields"`
	Hint       string                 `json:"hint,omitempty"`
	HttpStatus int                    `json:"http_status,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	fieldNames := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fieldNames = append(fieldNames, field)
	}
	return fmt.Sprintf("%s: invalid fields: %s", e.Message, strings.Join(fieldNames, ", "))
}

// FieldError represents validation error for a specific field
type FieldError struct {
	Value    interface{} `json:"value"`
	Message  string      `json:"message"`
	Expected string      `json:"expected,omitempty"`
	Required bool        `json:"required"`
}

// Tool-specific error code constants
const (
	// Validation error codes
	ErrCodeMissingRequired  = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidValue     = "INVALID_FIELD_VALUE"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Business logic error codes
	ErrCodeProjectNotFound = "PROJECT_NOT_FOUND"
	ErrCodeQuotaExhausted  = "QUOTA_EXHAUSTED"
	ErrCodeNotFound        = "RESOURCE_NOT_FOUND"
	ErrCodeUnauthorized    = "UNAUTHORIZED"

	// Infrastructure error codes
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// NewValidationError creates a validation error for missing/invalid fields
func NewValidationError(tool, message string) *ValidationError {
	return &ValidationError{
		Tool:       tool,
		Message:    message,
		Fields:     make(map[string]*FieldError),
		HttpStatus: 400,
	}
}

// AddFieldError adds a field-level validation error
func (e *ValidationError) AddFieldError(fieldName string, value interface{}, message string, required bool) {
	e.Fields[fieldName] = &FieldError{
		Value:    value,
		Message:  message,
		Required: required,
	}
}

// HasErrors returns true if validation errors exist
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// NewMissingFieldError creates an error for missing required field
func NewMissingFieldError(tool, field string) *ToolError {
	return &ToolError{
		Code:       ErrCodeMissingRequired,
		Message:    fmt.Sprintf("Field '%s' is required", field),
		Tool:       tool,
		Field:      field,
		HttpStatus: 400,
		Hint:       fmt.Sprintf("Add '%s' to your request parameters", field),
	}
}

// NewProjectNotFoundError creates an error for a topic with no project records
func NewProjectNotFoundError(tool, topicID string) *ToolError {
	return &ToolError{
		Code:       ErrCodeProjectNotFound,
		Message:    fmt.Sprintf("No chat records found for topic '%s'", topicID),
		Tool:       tool,
		HttpStatus: 404,
		Hint:       "Verify the topic ID and that a project has been recorded on it",
	}
}

// NewQuotaExhaustedError creates an error for a spent message allowance
func NewQuotaExhaustedError(tool, topicID string) *ToolError {
	return &ToolError{
		Code:       ErrCodeQuotaExhausted,
		Message:    fmt.Sprintf("Message allowance for topic '%s' is exhausted", topicID),
		Tool:       tool,
		HttpStatus: 429,
		Hint:       "Increase the allowance with a quota update before sending more messages",
	}
}

// NewUpstreamError creates an error for an unavailable upstream dependency
func NewUpstreamError(tool, upstream string) *ToolError {
	return &ToolError{
		Code:       ErrCodeUpstreamUnavailable,
		Message:    fmt.Sprintf("%s is unavailable", upstream),
		Tool:       tool,
		HttpStatus: 502,
		Hint:       "Try again later or contact support if the issue persists",
	}
}

// NewInternalError creates an internal server error
func NewInternalError(tool, message string) *ToolError {
	if message == "" {
		message = "Internal server error"
	}
	return &ToolError{
		Code:       ErrCodeInternalError,
		Message:    message,
		Tool:       tool,
		HttpStatus: 500,
	}
}

// IsToolError checks if error is a ToolError
func IsToolError(err error) (*ToolError, bool) {
	if toolErr, ok := err.(*ToolError); ok {
		return toolErr, true
	}
	return nil, false
}

// GetHTTPStatusFromError extracts HTTP status from error types
func GetHTTPStatusFromError(err error) int {
	if toolErr, ok := IsToolError(err); ok {
		return toolErr.HttpStatus
	}
	if validationErr, ok := err.(*ValidationError); ok {
		return validationErr.HttpStatus
	}
	return 500
}
