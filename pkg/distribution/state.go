package distribution

import (
	"errors"
	"io"

	"github.com/hashicorp/yamux"
)

// WorkerState is a stage in a worker's lifecycle (spec.md §4.7).
type WorkerState uint8

const (
	WorkerStarting WorkerState = iota
	WorkerSayingHello
	WorkerWaitingForAttach
	WorkerGraphLoading
	WorkerReady
	WorkerExecuting
	WorkerDraining
	WorkerExited
	WorkerFailedBeforeReady
)

func (s WorkerState) String() string {
	switch s {
	case WorkerStarting:
		return "Starting"
	case WorkerSayingHello:
		return "SayingHello"
	case WorkerWaitingForAttach:
		return "WaitingForAttach"
	case WorkerGraphLoading:
		return "GraphLoading"
	case WorkerReady:
		return "Ready"
	case WorkerExecuting:
		return "Executing"
	case WorkerDraining:
		return "Draining"
	case WorkerExited:
		return "Exited"
	case WorkerFailedBeforeReady:
		return "FailedBeforeReady"
	default:
		return "Unknown"
	}
}

// terminal reports whether s is one of the worker's terminal states.
func (s WorkerState) terminal() bool {
	return s == WorkerExited || s == WorkerFailedBeforeReady
}

// FailureKind classifies a worker failure observed by the orchestrator
// (spec.md §4.7 on_worker_failure).
type FailureKind uint8

const (
	// NetworkTransient failures are network-level errors such as timeouts
	// or resets. The orchestrator's read loop does not retry them: as with
	// WorkerExit, the worker is detached and its in-flight pips are
	// reassigned.
	NetworkTransient FailureKind = iota
	// WorkerExit means the worker disconnected in an orderly fashion (a
	// Bye message, or a closed stream with no pending dispatch); its
	// in-flight pips are reassigned and the build continues.
	WorkerExit
	// Fatal failures abort the build (DistributionFatal per spec.md §7).
	Fatal
)

func (k FailureKind) String() string {
	switch k {
	case NetworkTransient:
		return "NetworkTransient"
	case WorkerExit:
		return "WorkerExit"
	case Fatal:
		return "Fatal"
	default:
		return "Unknown"
	}
}

// ClassifyFailure maps a raw transport error to a FailureKind. A nil error
// (orderly Bye) is always WorkerExit.
func ClassifyFailure(err error, byeReceived bool) FailureKind {
	if byeReceived {
		return WorkerExit
	}
	if err == nil {
		return WorkerExit
	}
	if isClosedStream(err) {
		return WorkerExit
	}
	if isNetworkTransient(err) {
		return NetworkTransient
	}
	return Fatal
}

// isClosedStream reports whether err is an orderly stream/session closure
// with no pending dispatch: a plain io.EOF or io.ErrUnexpectedEOF from a
// worker process exiting without managing to send Bye, or yamux reporting
// its session/stream already shut down. These are WorkerExit, not Fatal: the
// orchestrator reassigns the worker's pips and continues the build.
func isClosedStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, yamux.ErrSessionShutdown) ||
		errors.Is(err, yamux.ErrStreamClosed)
}
