package models

import (
	"fmt"
	"strings"
)

// ConfigurationError represents an unusable configuration value detected
// before any external mutation (unknown framework identifier, empty build
// command, and similar).
type ConfigurationError struct {
	Field string
	Value string
	Cause error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid configuration for '%s' (value: %q): %v", e.Field, e.Value, e.Cause)
	}
	return fmt.Sprintf("invalid configuration for '%s' (value: %q)", e.Field, e.Value)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// BuildFailure represents a non-zero exit from the external build process.
// Captured output is surfaced so the user sees the compiler/bundler error
// without re-running the build by hand.
type BuildFailure struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *BuildFailure) Error() string {
	msg := fmt.Sprintf("build command '%s' exited with code %d", strings.Join(e.Command, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += "\n--- stderr ---\n" + e.Stderr
	}
	if e.Stdout != "" {
		msg += "\n--- stdout ---\n" + e.Stdout
	}
	return msg
}

// PreconditionMissing represents a required stack output or resource that
// introspection could not find at a point where it must exist (e.g. the site
// bucket during the post-deploy upload).
type PreconditionMissing struct {
	Stack string
	Want  string
}

func (e *PreconditionMissing) Error() string {
	return fmt.Sprintf("stack '%s' has no '%s' yet; deploy the infrastructure before running this step", e.Stack, e.Want)
}

// RemoteAccessDenied wraps a permission rejection from a remote service with
// the operation and resource that were refused, so the user knows which
// policy to fix.
type RemoteAccessDenied struct {
	Operation string
	Resource  string
	Cause     error
}

func (e *RemoteAccessDenied) Error() string {
	return fmt.Sprintf("access denied during %s on '%s': check that your credentials allow this operation: %v",
		e.Operation, e.Resource, e.Cause)
}

func (e *RemoteAccessDenied) Unwrap() error {
	return e.Cause
}

// RemoteFailure represents any other remote service error. The first
// underlying error code is kept for diagnosis.
type RemoteFailure struct {
	Operation string
	Code      string
	Cause     error
}

func (e *RemoteFailure) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s failed (%s): %v", e.Operation, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Cause)
}

func (e *RemoteFailure) Unwrap() error {
	return e.Cause
}
