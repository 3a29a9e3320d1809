// Package errkind classifies engine errors into the taxonomy spec.md §7
// defines, so that callers can decide locally whether a given failure is
// fatal, retriable, or merely informational for the current phase and
// configuration, without inspecting error strings.
package errkind

// Kind is one of the named error categories from spec.md §7. It is a
// classification, not a concrete error type: any Go error can be tagged
// with a Kind via Wrap, and unwrapped back out via Classify.
type Kind string

const (
	ConfigurationInvalid      Kind = "ConfigurationInvalid"
	LockUnavailable           Kind = "LockUnavailable"
	CacheInitializationFailed Kind = "CacheInitializationFailed"
	GraphFingerprintMismatch  Kind = "GraphFingerprintMismatch"
	GraphSerializationFailed  Kind = "GraphSerializationFailed"
	InputTrackerUnableToDetect Kind = "InputTrackerUnableToDetect"
	DistributionTransient     Kind = "DistributionTransient"
	DistributionFatal         Kind = "DistributionFatal"
	FilesystemCapabilityMissing Kind = "FilesystemCapabilityMissing"
	RecoverableIo             Kind = "RecoverableIo"
)

// Error wraps an underlying error with a Kind, preserving it for
// errors.Unwrap and errors.Is/As.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// Wrap tags err with kind. Wrapping a nil error returns nil.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, cause: err}
}

// Classify extracts the Kind from err, if any was attached via Wrap. The ok
// return is false for errors that were never classified.
func Classify(err error) (Kind, bool) {
	var tagged *Error
	for err != nil {
		if k, ok := err.(*Error); ok {
			tagged = k
			break
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	if tagged == nil {
		return "", false
	}
	return tagged.Kind, true
}

// Fatal reports whether kind is unconditionally build-fatal regardless of
// phase or configuration.
func (k Kind) Fatal() bool {
	switch k {
	case ConfigurationInvalid, LockUnavailable, DistributionFatal:
		return true
	default:
		return false
	}
}

// Retriable reports whether kind is one that a caller should retry under a
// backoff policy rather than surface immediately.
func (k Kind) Retriable() bool {
	return k == DistributionTransient || k == RecoverableIo
}
