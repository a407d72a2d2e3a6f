// Package tools provides the file and process capability providers and
// the uniform Result envelope returned by every capability operation.
//
// Information Hiding:
// - Capability execution details hidden behind narrow operation sets
// - Error handling internalized: operations fail by Result, not by error
package tools

import (
	"encoding/json"
	"fmt"
)

// Result is the tagged outcome of any capability operation.
// Message is always present; Err set implies failure. Data carries an
// operation-specific payload (file contents, a CommandExecution, mailbox
// messages) and is passed through opaquely by the dispatcher.
type Result struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Err     error  `json:"-"` // Excluded from JSON, see MarshalJSON
}

// Success reports whether the operation completed normally.
func (r Result) Success() bool {
	return r.Err == nil
}

// Error returns the machine-oriented failure string, or "" on success.
func (r Result) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// MarshalJSON implements custom JSON marshaling for Result.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Err != nil {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Data    any    `json:"data,omitempty"`
			Error   string `json:"error"`
		}{false, r.Message, r.Data, r.Err.Error()})
	}
	return json.Marshal(struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    any    `json:"data,omitempty"`
	}{true, r.Message, r.Data})
}

// OK creates a successful result with a human-oriented summary.
func OK(message string) Result {
	return Result{Message: message}
}

// OKData creates a successful result carrying a data payload.
func OKData(message string, data any) Result {
	return Result{Message: message, Data: data}
}

// Fail creates a failed result from an error. The message mirrors the
// error text so callers always have a human-readable summary.
func Fail(err error) Result {
	return Result{Message: err.Error(), Err: err}
}

// Failf creates a failed result with a formatted error message.
func Failf(format string, args ...any) Result {
	return Fail(fmt.Errorf(format, args...))
}

// CommandExecution is the data payload of a process-capability run.
type CommandExecution struct {
	Command  string `json:"command"`
	Output   string `json:"output"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}
