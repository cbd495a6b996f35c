package main

import (
	stderrors "errors"
	"fmt"
	"io"

	"pubapi/internal/errors"
)

// Exit codes.
const (
	exitOK        = 0
	exitError     = 1
	exitViolation = 2
)

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errors.PolicyViolation):
		return exitViolation
	default:
		return exitError
	}
}

// printError writes "Error [CODE]: message", the cause, and any suggested
// fixes. Errors without a code print as plain "Error: message".
func printError(w io.Writer, err error) {
	var pe *errors.PubapiError
	if !stderrors.As(err, &pe) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", pe.Code, pe.Message)
	if cause := pe.Unwrap(); cause != nil && cause.Error() != pe.Message {
		fmt.Fprintf(w, "  Cause: %v\n", cause)
	}
	for _, fix := range pe.SuggestedFixes {
		switch {
		case fix.Command != "":
			fmt.Fprintf(w, "  Try: %s", fix.Command)
		case fix.URL != "":
			fmt.Fprintf(w, "  See: %s", fix.URL)
		default:
			continue
		}
		if fix.Description != "" {
			fmt.Fprintf(w, " (%s)", fix.Description)
		}
		fmt.Fprintln(w)
	}
}
