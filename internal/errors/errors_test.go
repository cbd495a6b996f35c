package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := New(InputMalformed, "cannot decode rustdoc JSON", cause)

	if err.Code != InputMalformed {
		t.Errorf("Code = %v, want %v", err.Code, InputMalformed)
	}
	if len(err.SuggestedFixes) != 1 {
		t.Errorf("len(SuggestedFixes) = %d, want 1", len(err.SuggestedFixes))
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestPubapiError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      StorageError,
			message:   "cannot open snapshot database",
			cause:     errors.New("disk full"),
			wantParts: []string{"STORAGE_ERROR", "cannot open snapshot database", "disk full"},
		},
		{
			name:      "without cause",
			code:      SnapshotNotFound,
			message:   "no snapshot named 'v1'",
			wantParts: []string{"SNAPSHOT_NOT_FOUND", "no snapshot named 'v1'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.code, tt.message, tt.cause).Error()
			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("load old side: %w", New(InputNotFound, "no such file", nil))

	if got := CodeOf(wrapped); got != InputNotFound {
		t.Errorf("CodeOf(wrapped) = %v, want %v", got, InputNotFound)
	}
	if got := CodeOf(errors.New("plain")); got != InternalError {
		t.Errorf("CodeOf(plain) = %v, want %v", got, InternalError)
	}
	if !Is(wrapped, InputNotFound) {
		t.Error("Is(wrapped, InputNotFound) = false, want true")
	}
	if Is(wrapped, InputMalformed) {
		t.Error("Is(wrapped, InputMalformed) = true, want false")
	}
}

func TestWithDetailsAndFixes(t *testing.T) {
	err := Newf(PolicyViolation, "%d removed items", 3).
		WithDetails(map[string]int{"removed": 3}).
		WithFixes(FixAction{Type: OpenDocs, URL: "https://semver.org"})

	if err.Message != "3 removed items" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Details == nil {
		t.Error("Details = nil")
	}
	if len(err.SuggestedFixes) != 1 || err.SuggestedFixes[0].Type != OpenDocs {
		t.Errorf("SuggestedFixes = %+v", err.SuggestedFixes)
	}
}

func TestGetSuggestedFixes(t *testing.T) {
	if fixes := GetSuggestedFixes(InternalError); fixes != nil {
		t.Errorf("GetSuggestedFixes(InternalError) = %v, want nil", fixes)
	}
	if fixes := GetSuggestedFixes(SnapshotNotFound); len(fixes) == 0 {
		t.Error("GetSuggestedFixes(SnapshotNotFound) is empty")
	}
}
