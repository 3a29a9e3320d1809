package distribution

import (
	"sync"
	"sync/atomic"

	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// workerHandle is the orchestrator's view of one attached worker: its
// control connection, its dispatch sequence counter, and the set of pips it
// currently has in flight.
type workerHandle struct {
	id     string
	logger *logging.Logger
	conn   *conn

	seq uint64

	mu             sync.Mutex
	inFlight       map[uint64]string // seq -> pipId, for results and reassignment on failure
	lastWorkerLoad uint32            // self-reported by the worker's last heartbeat
	closed         bool
}

func newWorkerHandle(id string, c *conn, logger *logging.Logger) *workerHandle {
	return &workerHandle{
		id:       id,
		logger:   logger,
		conn:     c,
		inFlight: make(map[uint64]string),
	}
}

// nextSeq returns the next monotonically increasing sequence number for a
// dispatch to this worker (spec.md §4.7 protocol invariants).
func (w *workerHandle) nextSeq() uint64 {
	return atomic.AddUint64(&w.seq, 1)
}

func (w *workerHandle) dispatch(pipId string, plan []byte) (uint64, error) {
	seq := w.nextSeq()

	w.mu.Lock()
	w.inFlight[seq] = pipId
	w.mu.Unlock()

	err := w.conn.send(&wireproto.ControlMessage{
		ExecutePip: &wireproto.ExecutePip{
			Seq:                       seq,
			PipId:                     pipId,
			InputsMaterializationPlan: plan,
		},
	})
	if err != nil {
		w.mu.Lock()
		delete(w.inFlight, seq)
		w.mu.Unlock()
		return 0, err
	}
	return seq, nil
}

// resolve removes a pending dispatch by sequence number. It returns false if
// the sequence number is unknown (already resolved, or a stale reply), in
// which case the caller must discard the reply rather than act on it.
func (w *workerHandle) resolve(seq uint64) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pipId, ok := w.inFlight[seq]
	if ok {
		delete(w.inFlight, seq)
	}
	return pipId, ok
}

// pending returns the pip ids currently dispatched but not yet resolved, for
// reassignment when the worker is classified as WorkerExit.
func (w *workerHandle) pending() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	result := make([]string, 0, len(w.inFlight))
	for _, pipId := range w.inFlight {
		result = append(result, pipId)
	}
	return result
}

func (w *workerHandle) recordHeartbeat(h *wireproto.Heartbeat) {
	w.mu.Lock()
	w.lastWorkerLoad = h.WorkerLoad
	w.mu.Unlock()
}

// queueDepth returns the number of pips the orchestrator has dispatched to
// this worker but not yet resolved. Unlike the worker's self-reported
// heartbeat load, this is the orchestrator's own authoritative count: it
// updates the instant a pip is dispatched or resolved rather than waiting on
// the next heartbeat, so selectWorker uses it as the primary dispatch
// signal.
func (w *workerHandle) queueDepth() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return uint32(len(w.inFlight))
}

// workerLoad returns the worker's self-reported load from its last
// heartbeat (0 if none has arrived yet), used only to break ties between
// workers that otherwise have the same queueDepth.
func (w *workerHandle) workerLoad() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastWorkerLoad
}

func (w *workerHandle) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.conn.Close()
}
