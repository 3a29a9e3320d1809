package distribution

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/hashicorp/yamux"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

func TestAttachDispatchAndResult(t *testing.T) {
	orchestratorSide, workerSide := net.Pipe()

	logger := logging.NewRootLogger(logging.LevelInfo)

	orchestrator := NewOrchestrator(OrchestratorOptions{
		RequiredWorkers:   1,
		AttachWaitTimeout: 2 * time.Second,
		OrchestratorInfo:  "test-orchestrator",
	}, logger)
	orchestrator.PublishGraph([]byte("descriptor-bytes"))

	resultCh := make(chan *wireproto.PipResult, 1)
	orchestrator.OnResult = func(workerId string, result *wireproto.PipResult) {
		resultCh <- result
	}

	accepted := make(chan error, 1)
	go func() { accepted <- orchestrator.Accept("work_worker1", orchestratorSide) }()

	var fetchedDescriptor []byte
	executor := ExecutorFunc(func(ctx context.Context, pipId string, plan []byte) (PipOutcome, error) {
		return PipOutcome{Status: "succeeded", Outputs: []string{"out.txt"}}, nil
	})
	fetcher := GraphFetcherFunc(func(descriptor []byte) error {
		fetchedDescriptor = descriptor
		return nil
	})

	worker := NewWorker(executor, fetcher, WorkerOptions{
		AttachTimeout:     2 * time.Second,
		HeartbeatInterval: time.Hour,
	}, logger)

	if err := worker.SayHello(workerSide); err != nil {
		t.Fatalf("SayHello: %v", err)
	}
	if err := <-accepted; err != nil {
		t.Fatalf("Accept: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	attach, err := worker.WaitForAttach(ctx)
	if err != nil {
		t.Fatalf("WaitForAttach: %v", err)
	}
	if attach.OrchestratorInfo != "test-orchestrator" {
		t.Fatalf("unexpected orchestrator info: %q", attach.OrchestratorInfo)
	}

	if err := worker.FetchGraph(attach.GraphDescriptor); err != nil {
		t.Fatalf("FetchGraph: %v", err)
	}
	if string(fetchedDescriptor) != "descriptor-bytes" {
		t.Fatalf("unexpected fetched descriptor: %q", fetchedDescriptor)
	}
	if worker.State() != WorkerReady {
		t.Fatalf("expected WorkerReady, got %v", worker.State())
	}

	runDone := make(chan error, 1)
	go func() { runDone <- worker.Run(context.Background()) }()

	if _, _, err := orchestrator.Dispatch("pip-1", []byte("plan")); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	select {
	case result := <-resultCh:
		if result.PipId != "pip-1" {
			t.Fatalf("unexpected pip id: %q", result.PipId)
		}
		if result.Status != "succeeded" {
			t.Fatalf("unexpected status: %q", result.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pip result")
	}

	worker.Shutdown("done")
	<-runDone
}

func TestDispatchBeforePublishIsRejected(t *testing.T) {
	orchestrator := NewOrchestrator(OrchestratorOptions{}, logging.NewRootLogger(logging.LevelInfo))
	if _, _, err := orchestrator.Dispatch("pip-1", nil); err == nil {
		t.Fatal("expected dispatch before publish to fail")
	}
}

func TestClassifyFailure(t *testing.T) {
	if ClassifyFailure(nil, true) != WorkerExit {
		t.Fatal("bye should classify as WorkerExit")
	}
	if ClassifyFailure(nil, false) != WorkerExit {
		t.Fatal("nil error should classify as WorkerExit")
	}
	if ClassifyFailure(context.DeadlineExceeded, false) != NetworkTransient {
		t.Fatal("deadline exceeded should classify as NetworkTransient")
	}
	if ClassifyFailure(io.EOF, false) != WorkerExit {
		t.Fatal("plain EOF (orderly worker exit without Bye) should classify as WorkerExit")
	}
	if ClassifyFailure(io.ErrUnexpectedEOF, false) != WorkerExit {
		t.Fatal("unexpected EOF should classify as WorkerExit")
	}
	if ClassifyFailure(yamux.ErrSessionShutdown, false) != WorkerExit {
		t.Fatal("yamux session shutdown should classify as WorkerExit")
	}
	if ClassifyFailure(errors.New("protocol desync"), false) != Fatal {
		t.Fatal("an unrecognized error should still classify as Fatal")
	}
}
