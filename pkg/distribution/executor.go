package distribution

import "context"

// PipOutcome is the result of executing one pip, carried back to the
// orchestrator in a PipResult message.
type PipOutcome struct {
	Status  string
	Outputs []string
}

// Executor runs a single pip locally. A Worker delegates actual pip
// execution to an Executor supplied by the engine driver; the distribution
// package itself only knows how to move ExecutePip/PipResult across the
// wire, not how to run a process or materialize a sealed directory.
type Executor interface {
	Execute(ctx context.Context, pipId string, inputsMaterializationPlan []byte) (PipOutcome, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, pipId string, inputsMaterializationPlan []byte) (PipOutcome, error)

func (f ExecutorFunc) Execute(ctx context.Context, pipId string, inputsMaterializationPlan []byte) (PipOutcome, error) {
	return f(ctx, pipId, inputsMaterializationPlan)
}

// GraphFetcher materializes a published graph's blobs locally given its
// descriptor and verifies the result against the descriptor's
// ExactFingerprint. A Worker delegates this to pkg/graphcache.Cache.
type GraphFetcher interface {
	FetchByDescriptor(descriptor []byte) error
}

// GraphFetcherFunc adapts a plain function to the GraphFetcher interface.
type GraphFetcherFunc func(descriptor []byte) error

func (f GraphFetcherFunc) FetchByDescriptor(descriptor []byte) error { return f(descriptor) }
