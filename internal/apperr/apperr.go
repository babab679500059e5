// Package apperr defines the structured error kinds surfaced by the verification core.
package apperr

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Kind categorizes a failure for callers that map errors to user-visible behavior
type Kind string

const (
	KindConfig    Kind = "config"
	KindTransient Kind = "transient"
	KindSchema    Kind = "schema"
	KindProvider  Kind = "provider"
	KindEntity    Kind = "entity"
	KindRunFatal  Kind = "run_fatal"
	KindCanceled  Kind = "canceled"
	KindInternal  Kind = "internal"
)

// Error is a structured error with a kind, the failing operation and an optional cause
type Error struct {
	Kind    Kind   `json:"kind"`
	Op      string `json:"op,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = e.Op + " [" + prefix + "]"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is match on kind with a bare &Error{Kind: k} target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Kind == e.Kind
}

// New creates an error of the given kind
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an error of the given kind around cause
func Wrap(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Cause: cause}
}

// Config reports a missing or invalid configuration value
func Config(op, message string) *Error {
	return New(KindConfig, op, message)
}

// Schema wraps a parse or validation failure of model output
func Schema(op string, cause error) *Error {
	return Wrap(KindSchema, op, "output does not match schema", cause)
}

// Provider wraps a terminal rejection from the model provider, such as a 4xx response
func Provider(op string, cause error) *Error {
	return Wrap(KindProvider, op, "provider rejected request", cause)
}

// KindOf returns the kind of the outermost *Error in err's chain.
// Context cancellation is reported as KindCanceled and unknown errors as KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}
	return KindInternal
}

// Retryable reports whether err is worth another attempt
func Retryable(err error) bool {
	return KindOf(err) == KindTransient
}

// IsKind reports whether any error in err's chain has the given kind
func IsKind(err error, kind Kind) bool {
	return errors.Is(err, &Error{Kind: kind})
}

// Field returns zap fields describing err
func Field(err error) zap.Field {
	return zap.Dict("error",
		zap.String("kind", string(KindOf(err))),
		zap.String("message", err.Error()),
	)
}
