package entities

import (
	"errors"
	"fmt"
)

// FailureKind classifies a fatal release error. Every kind aborts the
// pipeline; the only tolerated failure in a release is the cosmetic disk
// image window layout, which is reported as a warning and never becomes an
// error of any kind.
type FailureKind string

// Failure kinds, one per way a release can abort.
const (
	FailureNone              FailureKind = ""
	FailureUnknown           FailureKind = "unknown"
	FailureUsage             FailureKind = "usage"
	FailureBuild             FailureKind = "build"
	FailureMissingBundle     FailureKind = "missing-bundle"
	FailureMissingExecutable FailureKind = "missing-executable"
	FailureUndersizedBinary  FailureKind = "undersized-binary"
	FailureSigning           FailureKind = "signing"
	FailurePackaging         FailureKind = "packaging"
	FailureChecksum          FailureKind = "checksum"
)

// ExitCode maps a failure kind to the process exit code.
func (k FailureKind) ExitCode() int {
	switch k {
	case FailureNone:
		return 0
	case FailureUsage:
		return 2
	case FailureBuild:
		return 3
	case FailureMissingBundle:
		return 4
	case FailureMissingExecutable:
		return 5
	case FailureUndersizedBinary:
		return 6
	case FailureSigning:
		return 7
	case FailurePackaging:
		return 8
	case FailureChecksum:
		return 9
	default:
		return 1
	}
}

// ReleaseError is a classified pipeline error. It wraps the underlying
// cause so callers can use errors.Is/errors.As on it.
type ReleaseError struct {
	Kind FailureKind
	Err  error
}

// NewReleaseError wraps err with a failure kind.
func NewReleaseError(kind FailureKind, err error) *ReleaseError {
	return &ReleaseError{Kind: kind, Err: err}
}

// NewReleaseErrorf creates a classified error from a format string.
func NewReleaseErrorf(kind FailureKind, format string, args ...interface{}) *ReleaseError {
	return &ReleaseError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// EnsureKind classifies err with kind unless it already carries a
// classification. Stages that detect a specific failure return a
// ReleaseError themselves; everything else is classified by the stage that
// observed it.
func EnsureKind(err error, kind FailureKind) error {
	if err == nil {
		return nil
	}
	var re *ReleaseError
	if errors.As(err, &re) {
		return err
	}
	return NewReleaseError(kind, err)
}

// KindOf extracts the failure kind from an error chain. A nil error has
// FailureNone; an unclassified error has FailureUnknown.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var re *ReleaseError
	if errors.As(err, &re) {
		return re.Kind
	}
	return FailureUnknown
}
