// Package failure defines the error kinds surfaced by the agent stack.
//
// Each layer logs the underlying cause once and then returns one of these
// coarser values. ServiceFailure keeps the cause reachable through Cause for
// diagnostics but does not unwrap to it, so callers only see a stable kind.
package failure

import (
	"errors"
	"fmt"
)

// Messages used by the service and controller layers.
const (
	MsgServiceCommunication = "Failed to communicate with GPT API"
	MsgGenerateResponse     = "Failed to generate response"
)

// Kind classifies a ServiceFailure.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNetwork        Kind = "network"
	KindStatus         Kind = "status"
	KindMalformed      Kind = "malformed"
	KindUnknown        Kind = "unknown"
)

// ErrService matches any *ServiceFailure with errors.Is.
var ErrService = errors.New("service failure")

// ConfigurationError reports a missing or unusable setting. Reason is empty
// when the setting is missing.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("Environment variable %q is invalid: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("Environment variable %q is not defined", e.Key)
}

// ServiceFailure is any problem reaching or interpreting the remote model.
type ServiceFailure struct {
	Kind    Kind
	Message string
	cause   error
}

// NewServiceFailure builds a ServiceFailure retaining cause for diagnostics.
func NewServiceFailure(kind Kind, msg string, cause error) *ServiceFailure {
	return &ServiceFailure{Kind: kind, Message: msg, cause: cause}
}

func (e *ServiceFailure) Error() string {
	return e.Message
}

// Cause returns the underlying error. It is intended for logging and tests.
func (e *ServiceFailure) Cause() error {
	return e.cause
}

func (e *ServiceFailure) Is(target error) bool {
	return target == ErrService
}

// IOFailure reports that a sink could not write its target path.
type IOFailure struct {
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *IOFailure) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a ServiceFailure anywhere in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var sf *ServiceFailure
	if errors.As(err, &sf) {
		return sf.Kind
	}
	return KindUnknown
}
