package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode is a stable identifier for a failure mode. Codes are part of the
// CLI's JSON output and must not be renamed.
type ErrorCode string

const (
	// InputMalformed means a rustdoc JSON document could not be decoded.
	InputMalformed ErrorCode = "INPUT_MALFORMED"
	// InputNotFound means an input file does not exist or is unreadable.
	InputNotFound ErrorCode = "INPUT_NOT_FOUND"
	// SnapshotNotFound means no stored snapshot matches an id or label.
	SnapshotNotFound ErrorCode = "SNAPSHOT_NOT_FOUND"
	// StorageError wraps database failures.
	StorageError ErrorCode = "STORAGE_ERROR"
	// ConfigInvalid means the configuration failed validation.
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// PolicyViolation means a diff contained a class of change the caller denied.
	PolicyViolation ErrorCode = "POLICY_VIOLATION"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	RunCommand FixActionType = "run-command"
	OpenDocs   FixActionType = "open-docs"
)

// FixAction is a suggested remedy attached to an error.
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// PubapiError carries a stable code, a message and suggested fixes.
type PubapiError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// New creates an error with the default fixes registered for code.
func New(code ErrorCode, message string, cause error) *PubapiError {
	return &PubapiError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf is New with a formatted message and no cause.
func Newf(code ErrorCode, format string, args ...interface{}) *PubapiError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

func (e *PubapiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *PubapiError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *PubapiError) WithDetails(details interface{}) *PubapiError {
	e.Details = details
	return e
}

// WithFixes replaces the suggested fixes.
func (e *PubapiError) WithFixes(fixes ...FixAction) *PubapiError {
	e.SuggestedFixes = fixes
	return e
}

// CodeOf returns the code of the first PubapiError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var pe *PubapiError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return InternalError
}

// Is reports whether err's chain contains a PubapiError with the given code.
func Is(err error, code ErrorCode) bool {
	var pe *PubapiError
	return stderrors.As(err, &pe) && pe.Code == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	InputMalformed: {
		{
			Type:        RunCommand,
			Command:     "cargo +nightly rustdoc --lib -- -Z unstable-options --output-format json",
			Safe:        true,
			Description: "Regenerate rustdoc JSON with a nightly toolchain",
		},
	},
	SnapshotNotFound: {
		{
			Type:        RunCommand,
			Command:     "pubapi snapshot list",
			Safe:        true,
			Description: "List stored snapshots",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "pubapi config show",
			Safe:        true,
			Description: "Inspect the effective configuration",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
