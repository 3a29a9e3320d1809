package distribution

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// WorkerOptions configures a Worker's attach timeout and heartbeat cadence.
type WorkerOptions struct {
	AttachTimeout     time.Duration
	HeartbeatInterval time.Duration
	Retry             RetryPolicy
}

func (o WorkerOptions) attachTimeout() time.Duration {
	if o.AttachTimeout > 0 {
		return o.AttachTimeout
	}
	return 30 * time.Second
}

func (o WorkerOptions) heartbeatInterval() time.Duration {
	if o.HeartbeatInterval > 0 {
		return o.HeartbeatInterval
	}
	return 5 * time.Second
}

// Worker is the worker side of DistributionCoordinator (C7). It attaches to
// an orchestrator, fetches the graph the orchestrator has published, and
// executes pips dispatched to it until told to drain.
type Worker struct {
	logger   *logging.Logger
	options  WorkerOptions
	executor Executor
	fetcher  GraphFetcher

	mu    sync.Mutex
	state WorkerState

	conn    *conn
	cancel  context.CancelFunc

	executing int32 // 1 while handleExecutePip is running, reported in heartbeats
}

// NewWorker creates a Worker in WorkerStarting state.
func NewWorker(executor Executor, fetcher GraphFetcher, options WorkerOptions, logger *logging.Logger) *Worker {
	return &Worker{
		logger:   logger,
		options:  options,
		executor: executor,
		fetcher:  fetcher,
		state:    WorkerStarting,
	}
}

// State returns the worker's current lifecycle state.
func (w *Worker) State() WorkerState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) setState(s WorkerState) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	w.logger.Infof("worker state: %s", s)
}

// SayHello opens the multiplexed control stream over raw, a connection the
// caller has already dialed to the orchestrator (say_hello(orchestrator_addr)).
func (w *Worker) SayHello(raw io.ReadWriteCloser) error {
	w.setState(WorkerSayingHello)
	c, _, err := dialWorkerSession(raw)
	if err != nil {
		w.setState(WorkerFailedBeforeReady)
		return fmt.Errorf("unable to say hello: %w", err)
	}
	w.conn = c
	w.setState(WorkerWaitingForAttach)
	return nil
}

// WaitForAttach blocks until an Attach message arrives or the attach timeout
// elapses. A timeout is a warning for the worker, which exits (spec.md
// §4.7 protocol invariants).
func (w *Worker) WaitForAttach(ctx context.Context) (*wireproto.Attach, error) {
	type result struct {
		message *wireproto.ControlMessage
		err     error
	}
	received := make(chan result, 1)
	go func() {
		message, err := w.conn.receive()
		received <- result{message, err}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.options.attachTimeout())
	defer cancel()

	select {
	case r := <-received:
		if r.err != nil {
			w.setState(WorkerFailedBeforeReady)
			return nil, fmt.Errorf("unable to receive attach: %w", r.err)
		}
		if r.message.Attach == nil {
			w.setState(WorkerFailedBeforeReady)
			return nil, fmt.Errorf("expected attach, received a different message")
		}
		return r.message.Attach, nil
	case <-ctx.Done():
		w.logger.Warn("attach wait timed out, exiting")
		w.setState(WorkerFailedBeforeReady)
		return nil, ctx.Err()
	}
}

// FetchGraph materializes the published graph's blobs locally and verifies
// them against the descriptor's ExactFingerprint (fetch_graph(descriptor)).
func (w *Worker) FetchGraph(descriptor []byte) error {
	w.setState(WorkerGraphLoading)
	if err := w.fetcher.FetchByDescriptor(descriptor); err != nil {
		w.setState(WorkerFailedBeforeReady)
		return fmt.Errorf("unable to fetch graph: %w", err)
	}
	w.setState(WorkerReady)
	return nil
}

// Run drives the worker's main loop: it sends periodic heartbeats and
// dispatches each received ExecutePip to the Executor, replying with a
// PipResult that echoes the dispatch's sequence number. Run returns when the
// context is cancelled or the orchestrator sends Bye.
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	defer cancel()

	// Closing the connection on cancellation unblocks the pending receive.
	go func() {
		<-ctx.Done()
		w.conn.Close()
	}()

	heartbeats := w.runHeartbeats(ctx)
	defer func() { <-heartbeats }()

	for {
		message, err := w.conn.receive()
		if err != nil {
			w.setState(WorkerExited)
			return fmt.Errorf("control connection closed: %w", err)
		}

		switch {
		case message.Bye != nil:
			w.setState(WorkerDraining)
			w.setState(WorkerExited)
			return nil
		case message.ExecutePip != nil:
			w.handleExecutePip(ctx, message.ExecutePip)
		case message.Heartbeat != nil:
			// Orchestrators do not send heartbeats in this protocol; ignore.
		}
	}
}

func (w *Worker) handleExecutePip(ctx context.Context, request *wireproto.ExecutePip) {
	w.setState(WorkerExecuting)
	atomic.StoreInt32(&w.executing, 1)
	outcome, err := w.executor.Execute(ctx, request.PipId, request.InputsMaterializationPlan)
	atomic.StoreInt32(&w.executing, 0)
	w.setState(WorkerReady)

	result := &wireproto.PipResult{
		Seq:   request.Seq,
		PipId: request.PipId,
	}
	if err != nil {
		result.Status = "failed: " + err.Error()
	} else {
		result.Status = outcome.Status
		result.Outputs = outcome.Outputs
	}

	if sendErr := w.conn.send(&wireproto.ControlMessage{PipResult: result}); sendErr != nil {
		w.logger.Errorf("unable to send pip result for %s: %v", request.PipId, sendErr)
	}
}

func (w *Worker) runHeartbeats(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(w.options.heartbeatInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				message := &wireproto.ControlMessage{
					Heartbeat: &wireproto.Heartbeat{WorkerLoad: uint32(atomic.LoadInt32(&w.executing))},
				}
				if err := w.conn.send(message); err != nil {
					w.logger.Warnf("unable to send heartbeat: %v", err)
					return
				}
			}
		}
	}()
	return done
}

// Shutdown sends Bye and closes the control connection.
func (w *Worker) Shutdown(reason string) error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.conn == nil {
		return nil
	}
	_ = w.conn.send(&wireproto.ControlMessage{Bye: &wireproto.Bye{Reason: reason}})
	return w.conn.Close()
}
