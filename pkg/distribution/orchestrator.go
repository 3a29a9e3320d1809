package distribution

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pipforge/pipforge/pkg/errkind"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

// OrchestratorOptions configures worker wait behavior and failure policy.
type OrchestratorOptions struct {
	// RequiredWorkers is the number of workers that must attach before
	// wait_for_workers_or_timeout succeeds.
	RequiredWorkers int
	// AttachWaitTimeout bounds how long the orchestrator waits for
	// RequiredWorkers to attach.
	AttachWaitTimeout time.Duration
	// LowWorkersWarningThreshold: if fewer than this many workers remain
	// attached after failures, the orchestrator logs a warning rather than
	// failing outright, per spec.md §4.7.
	LowWorkersWarningThreshold int
	Retry                      RetryPolicy
	OrchestratorInfo           string
	ConfigDigest               []byte
}

func (o OrchestratorOptions) attachWaitTimeout() time.Duration {
	if o.AttachWaitTimeout > 0 {
		return o.AttachWaitTimeout
	}
	return 60 * time.Second
}

// FailureEvent reports a single worker failure classification, delivered to
// the orchestrator's caller via OnWorkerFailure.
type FailureEvent struct {
	WorkerId      string
	Kind          FailureKind
	Err           error
	ReassignedPips []string
}

// Orchestrator is the orchestrator side of DistributionCoordinator (C7): it
// accepts worker connections, publishes the graph, dispatches pips, and
// classifies worker failures.
type Orchestrator struct {
	logger  *logging.Logger
	options OrchestratorOptions

	mu          sync.Mutex
	workers     map[string]*workerHandle
	graphSent   bool
	descriptor  []byte
	attachCount chan struct{}

	// OnWorkerFailure, when set, is invoked synchronously for every worker
	// failure observed (on_worker_failure(worker_id, kind)).
	OnWorkerFailure func(FailureEvent)
	// OnResult, when set, is invoked for every PipResult received, keyed by
	// the worker it came from.
	OnResult func(workerId string, result *wireproto.PipResult)
}

// NewOrchestrator creates an Orchestrator with no attached workers.
func NewOrchestrator(options OrchestratorOptions, logger *logging.Logger) *Orchestrator {
	return &Orchestrator{
		logger:      logger,
		options:     options,
		workers:     make(map[string]*workerHandle),
		attachCount: make(chan struct{}, 1),
	}
}

// Accept takes ownership of a raw connection from a newly connected worker,
// completes the attach handshake, and registers the worker. It must be
// called once per incoming connection, typically in its own goroutine by a
// listener loop.
func (o *Orchestrator) Accept(workerId string, raw net.Conn) error {
	c, _, err := acceptWorkerSession(raw)
	if err != nil {
		return fmt.Errorf("unable to accept worker session: %w", err)
	}

	o.mu.Lock()
	descriptor := o.descriptor
	published := o.graphSent
	o.mu.Unlock()

	if !published {
		c.Close()
		return fmt.Errorf("graph not yet published, rejecting attach from %s", workerId)
	}

	attach := &wireproto.ControlMessage{
		Attach: &wireproto.Attach{
			OrchestratorInfo: o.options.OrchestratorInfo,
			GraphDescriptor:  descriptor,
			ConfigDigest:     o.options.ConfigDigest,
		},
	}
	if err := c.send(attach); err != nil {
		c.Close()
		return fmt.Errorf("unable to send attach to %s: %w", workerId, err)
	}

	handle := newWorkerHandle(workerId, c, o.logger.Sublogger(workerId))

	o.mu.Lock()
	o.workers[workerId] = handle
	remaining := o.options.RequiredWorkers - len(o.workers)
	o.mu.Unlock()
	if remaining <= 0 {
		select {
		case o.attachCount <- struct{}{}:
		default:
		}
	}

	go o.readLoop(handle)
	return nil
}

// WaitForWorkersOrTimeout blocks until RequiredWorkers have attached or
// AttachWaitTimeout elapses (wait_for_workers_or_timeout()). A timeout is
// DistributionFatal per spec.md §7.
func (o *Orchestrator) WaitForWorkersOrTimeout(ctx context.Context) error {
	if o.options.RequiredWorkers == 0 {
		return nil
	}
	o.mu.Lock()
	satisfied := len(o.workers) >= o.options.RequiredWorkers
	o.mu.Unlock()
	if satisfied {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, o.options.attachWaitTimeout())
	defer cancel()

	select {
	case <-o.attachCount:
		return nil
	case <-ctx.Done():
		return errkind.Wrap(errkind.DistributionFatal, fmt.Errorf("timed out waiting for %d worker(s) to attach", o.options.RequiredWorkers))
	}
}

// PublishGraph announces the graph's fingerprint and descriptor; per spec.md
// §4.7 this must complete (descriptor durable in the shared store) before
// any pip is dispatched, so callers must have already registered the
// descriptor with the shared store before calling this.
func (o *Orchestrator) PublishGraph(descriptor []byte) {
	o.mu.Lock()
	o.descriptor = descriptor
	o.graphSent = true
	o.mu.Unlock()
}

// Dispatch selects an attached worker (the one with the fewest dispatched,
// unresolved pips) and sends it the given pip, returning the dispatch's
// sequence number for correlation with the eventual PipResult.
func (o *Orchestrator) Dispatch(pipId string, inputsMaterializationPlan []byte) (workerId string, seq uint64, err error) {
	o.mu.Lock()
	published := o.graphSent
	o.mu.Unlock()
	if !published {
		return "", 0, fmt.Errorf("cannot dispatch pip %s before the graph is published", pipId)
	}

	handle := o.selectWorker()
	if handle == nil {
		return "", 0, fmt.Errorf("no workers available to dispatch pip %s", pipId)
	}
	seq, err = handle.dispatch(pipId, inputsMaterializationPlan)
	if err != nil {
		return "", 0, err
	}
	return handle.id, seq, nil
}

// selectWorker picks the attached worker with the fewest pips currently
// dispatched and unresolved (dispatch(pip) -> selected worker, spec.md
// §4.7). It uses the orchestrator's own in-flight dispatch count as the
// primary signal, since that count is authoritative and current the
// instant a dispatch or result lands, not only once per heartbeat
// interval; ties are broken by the worker's self-reported heartbeat load.
func (o *Orchestrator) selectWorker() *workerHandle {
	o.mu.Lock()
	defer o.mu.Unlock()

	var best *workerHandle
	var bestQueue, bestLoad uint32
	for _, handle := range o.workers {
		queue, load := handle.queueDepth(), handle.workerLoad()
		if best == nil || queue < bestQueue || (queue == bestQueue && load < bestLoad) {
			best = handle
			bestQueue = queue
			bestLoad = load
		}
	}
	return best
}

func (o *Orchestrator) readLoop(handle *workerHandle) {
	for {
		message, err := handle.conn.receive()
		if err != nil {
			o.handleFailure(handle, ClassifyFailure(err, false), err)
			return
		}

		switch {
		case message.Bye != nil:
			o.handleFailure(handle, WorkerExit, nil)
			return
		case message.PipResult != nil:
			if _, ok := handle.resolve(message.PipResult.Seq); !ok {
				handle.logger.Debugf("discarding stale result for pip %s (seq %d)", message.PipResult.PipId, message.PipResult.Seq)
				continue
			}
			if o.OnResult != nil {
				o.OnResult(handle.id, message.PipResult)
			}
		case message.Heartbeat != nil:
			handle.recordHeartbeat(message.Heartbeat)
		}
	}
}

// handleFailure detaches a failed worker, closes its connection, warns when
// fewer than LowWorkersWarningThreshold workers remain, and reports the
// failure together with the worker's unresolved pips to OnWorkerFailure.
func (o *Orchestrator) handleFailure(handle *workerHandle, kind FailureKind, err error) {
	reassigned := handle.pending()

	o.mu.Lock()
	delete(o.workers, handle.id)
	remainingAfter := len(o.workers)
	o.mu.Unlock()

	handle.close()

	if kind != Fatal && remainingAfter < o.options.LowWorkersWarningThreshold {
		o.logger.Warnf("only %d worker(s) remain attached after %s failure on %s", remainingAfter, kind, handle.id)
	}

	if o.OnWorkerFailure != nil {
		o.OnWorkerFailure(FailureEvent{
			WorkerId:       handle.id,
			Kind:           kind,
			Err:            err,
			ReassignedPips: reassigned,
		})
	}
}

// Shutdown sends Bye to every attached worker and closes their connections.
func (o *Orchestrator) Shutdown(reason string) {
	o.mu.Lock()
	handles := make([]*workerHandle, 0, len(o.workers))
	for _, handle := range o.workers {
		handles = append(handles, handle)
	}
	o.mu.Unlock()

	for _, handle := range handles {
		_ = handle.conn.send(&wireproto.ControlMessage{Bye: &wireproto.Bye{Reason: reason}})
		handle.close()
	}
}
