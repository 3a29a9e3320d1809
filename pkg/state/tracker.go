package state

import (
	"context"
	"errors"
	"sync"
)

// ErrTrackingTerminated indicates that a Driver terminated phase tracking
// before a polling WaitForChange call saw a phase advance.
var ErrTrackingTerminated = errors.New("tracking terminated")

// pollResponse answers one polling request within Tracker.
type pollResponse struct {
	// index is the phase index at the time of the response.
	index uint64
	// terminated indicates whether the driver had already terminated
	// tracking (e.g. Run returning) at the time of the response.
	terminated bool
}

// pollRequest represents one caller blocked in WaitForChange, waiting for
// the phase index to move past previousIndex.
type pollRequest struct {
	// previousIndex is the phase index the caller last observed.
	previousIndex uint64
	// responses delivers the eventual answer; it must be buffered so the
	// tracking loop never blocks delivering it.
	responses chan<- pollResponse
}

// Tracker is a condition-variable-backed phase index: EngineDriver bumps the
// index once per phase transition (PhaseConfig, PhaseParse, PhaseEvaluate,
// ...) via NotifyOfChange, and any number of observers (a status command, a
// progress reporter) block in WaitForChange until the next transition
// without the driver needing to know how many observers exist or hold a
// lock while running a phase hook.
type Tracker struct {
	// change is the condition variable guarding index, terminated, and
	// pollRequests, and the signal used to wake the tracking loop.
	change *sync.Cond
	// index is the current phase index.
	// NOTE: In theory, we should track and handle overflow on this index, but
	// given that an update period of 1 nanosecond would only cause an overflow
	// after about 584 years, the possibility isn't hugely concerning.
	//
	// Moreover, the "failure" mode in the case of overflow is that a poller who
	// waited an entire overflow period before an additional state change check,
	// and then managed to hit when the index was exactly the same as their last
	// check, would have to wait for an additional state change before detecting
	// an update. Given the vanishingly small likelihood of both conditions,
	// along with the minimal consequences, it's not worth hauling around a ton
	// of overflow handling code. We do perform a minimal amount of overflow
	// handling code on this value, but that's just to maintain the meaning of 0
	// as a previous state index in the unlikely event of an overflow.
	index uint64
	// terminated indicates whether the driver run this tracker belongs to
	// has ended.
	terminated bool
	// pollRequests is the set of callers currently blocked in WaitForChange.
	pollRequests map[*pollRequest]bool
	// trackDone is closed once the tracking loop has exited, after
	// Terminate.
	trackDone chan struct{}
}

// NewTracker creates a Tracker at phase index 1, ready for a Driver's first
// setPhase call.
func NewTracker() *Tracker {
	tracker := &Tracker{
		change:       sync.NewCond(&sync.Mutex{}),
		index:        1,
		pollRequests: make(map[*pollRequest]bool),
		trackDone:    make(chan struct{}),
	}

	go tracker.track()

	return tracker
}

// track is the tracking loop: it bridges the condition variable NotifyOfChange
// signals on to the channels individual WaitForChange callers are blocked on.
func (t *Tracker) track() {
	defer close(t.trackDone)

	t.change.L.Lock()
	defer t.change.L.Unlock()

	for {
		if t.terminated {
			response := pollResponse{t.index, true}
			for r := range t.pollRequests {
				r.responses <- response
				delete(t.pollRequests, r)
			}
			return
		}

		// Signal any completed polling requests.
		// TODO: It would be nice if we had a better data structure where
		// iteration wasn't O(n) in the number of registered poll requests. It
		// feels like we could leverage the fact that index is monotonically
		// increasing and maybe use a heap (ordered by requests' previous
		// indices) to reduce the iteration overhead here, but it's not
		// performance critical for now. Such a design might motivate better
		// overflow handling as well. In any case, given that we're no longer
		// using sync.Cond.Broadcast, we're already saving O(n) iteration in the
		// Go runtime, so this is a reasonable tradeoff.
		for r := range t.pollRequests {
			if r.previousIndex != t.index {
				r.responses <- pollResponse{t.index, false}
				delete(t.pollRequests, r)
			}
		}

		t.change.Wait()
	}
}

// Terminate stops phase tracking, releasing any blocked WaitForChange
// callers with ErrTrackingTerminated. EngineDriver does not call this
// itself today (a Driver is one-shot and simply stops calling setPhase once
// Run returns), but it's exposed for a long-lived host process (e.g. a
// status server wrapping several Driver runs) that wants to retire a
// tracker explicitly.
func (t *Tracker) Terminate() {
	t.change.L.Lock()

	t.terminated = true

	t.change.Signal()

	t.change.L.Unlock()

	<-t.trackDone
}

// NotifyOfChange bumps the phase index and wakes the tracking loop.
// EngineDriver calls this once per setPhase transition.
func (t *Tracker) NotifyOfChange() {
	t.change.L.Lock()
	defer t.change.L.Unlock()

	// Increment the phase index. If we do overflow, then at least set the
	// index back to 1, because we want 0 to remain the sentinel value that
	// returns an immediate read of the current phase index.
	t.index++
	if t.index == 0 {
		t.index = 1
	}

	t.change.Signal()
}

// WaitForChange blocks until the phase index advances past previousIndex,
// returning the new index. If tracking is terminated before a change is
// observed, it returns the current index along with ErrTrackingTerminated.
// If ctx is cancelled first, it returns the current index along with
// context.Canceled. A previousIndex of 0 bypasses polling entirely and
// returns the current phase index immediately, which is how a caller gets
// its first baseline index before entering its own poll loop.
func (t *Tracker) WaitForChange(ctx context.Context, previousIndex uint64) (uint64, error) {
	if previousIndex == 0 {
		t.change.L.Lock()
		defer t.change.L.Unlock()
		if t.terminated {
			return t.index, ErrTrackingTerminated
		}
		return t.index, nil
	}

	t.change.L.Lock()

	if t.terminated {
		defer t.change.L.Unlock()
		return t.index, ErrTrackingTerminated
	}

	responses := make(chan pollResponse, 1)
	request := &pollRequest{previousIndex, responses}
	t.pollRequests[request] = true

	t.change.Signal()

	t.change.L.Unlock()

	// If the request is cancelled, deregister it ourselves (there's no need
	// to notify the tracking loop). If the poll succeeds, the tracking loop
	// already deregistered the request before delivering the response.
	select {
	case <-ctx.Done():
		t.change.L.Lock()
		delete(t.pollRequests, request)
		defer t.change.L.Unlock()
		return t.index, context.Canceled
	case response := <-responses:
		if response.terminated {
			return response.index, ErrTrackingTerminated
		}
		return response.index, nil
	}
}
