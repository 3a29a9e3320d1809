package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pipforge/pipforge/pkg/cmd"
	"github.com/pipforge/pipforge/pkg/config"
	"github.com/pipforge/pipforge/pkg/distribution"
	"github.com/pipforge/pipforge/pkg/engine"
	"github.com/pipforge/pipforge/pkg/filecontent"
	"github.com/pipforge/pipforge/pkg/fingerprint"
	"github.com/pipforge/pipforge/pkg/graphcache"
	"github.com/pipforge/pipforge/pkg/inputtracking"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
	"github.com/pipforge/pipforge/pkg/wireproto"
)

var orchestrateConfiguration struct {
	config          string
	graph           string
	listen          string
	requiredWorkers int
	logLevel        string
}

// pipScheduler tracks which pips are ready to dispatch given the pips whose
// results have already arrived, mirroring the dependency order
// engine.GraphExecutor.ExecuteAll computes for the single-machine case, but
// driven by asynchronous PipResult arrivals instead of sequential execution.
type pipScheduler struct {
	graph *pipgraph.PipGraph

	mu        sync.Mutex
	inDegree  map[pipgraph.PipId]int
	remaining int
	done      chan struct{}
}

func newPipScheduler(graph *pipgraph.PipGraph) *pipScheduler {
	s := &pipScheduler{
		graph:    graph,
		inDegree: make(map[pipgraph.PipId]int),
		done:     make(chan struct{}),
	}
	for _, p := range graph.Pips() {
		if _, ok := s.inDegree[p.Id]; !ok {
			s.inDegree[p.Id] = 0
		}
	}
	for _, p := range graph.Pips() {
		for _, dependent := range graph.Dependents(p.Id) {
			s.inDegree[dependent]++
		}
	}
	s.remaining = len(s.inDegree)
	return s
}

// ready returns the pips with no outstanding dependencies.
func (s *pipScheduler) ready() []pipgraph.PipId {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []pipgraph.PipId
	for id, degree := range s.inDegree {
		if degree == 0 {
			result = append(result, id)
			delete(s.inDegree, id)
		}
	}
	return result
}

// complete records that id finished, returning the pips it unblocked.
func (s *pipScheduler) complete(id pipgraph.PipId) []pipgraph.PipId {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remaining--
	if s.remaining <= 0 {
		close(s.done)
	}

	var unblocked []pipgraph.PipId
	for _, dependent := range s.graph.Dependents(id) {
		if _, ok := s.inDegree[dependent]; !ok {
			continue
		}
		s.inDegree[dependent]--
		if s.inDegree[dependent] == 0 {
			unblocked = append(unblocked, dependent)
			delete(s.inDegree, dependent)
		}
	}
	return unblocked
}

func orchestrateMain(command *cobra.Command, arguments []string) error {
	level, ok := logging.NameToLevel(orchestrateConfiguration.logLevel)
	if !ok {
		return fmt.Errorf("invalid log level: %s", orchestrateConfiguration.logLevel)
	}
	logger := logging.NewRootLogger(level)

	yamlConfig, err := config.Load(orchestrateConfiguration.config)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("unable to load configuration: %w", err)
		}
		yamlConfig = &config.YAMLConfiguration{}
	}

	spec, err := engine.LoadGraphSpec(orchestrateConfiguration.graph)
	if err != nil {
		return fmt.Errorf("unable to load graph spec: %w", err)
	}
	graph, err := spec.Build()
	if err != nil {
		return fmt.Errorf("unable to build pip graph: %w", err)
	}

	engineCacheDir := yamlConfig.Engine.EngineCacheDirectory
	if engineCacheDir == "" {
		engineCacheDir = ".pipforge/orchestrator-cache"
	}
	sharedStorePath := yamlConfig.Cache.SharedStorePath
	if sharedStorePath == "" {
		sharedStorePath = engineCacheDir + "/shared"
	}
	store, err := graphcache.NewDiskSharedStore(sharedStorePath)
	if err != nil {
		return fmt.Errorf("unable to open shared store: %w", err)
	}
	cache, err := graphcache.New(engineCacheDir, store, yamlConfig.Cache.Compress, logger.Sublogger("graphcache"))
	if err != nil {
		return fmt.Errorf("unable to construct graph cache: %w", err)
	}

	mounts := make(map[string]string, len(yamlConfig.Mounts))
	for _, m := range yamlConfig.Mounts {
		mounts[m.Name] = m.Path
	}
	gf := fingerprint.Compute(fingerprint.Inputs{Mounts: mounts})

	tracker := inputtracking.New(filecontent.New(logger.Sublogger("filecontent")), inputtracking.NewRuleSet(nil), logger.Sublogger("inputtracking"))
	if err := cache.Save(graph, gf, tracker); err != nil {
		return fmt.Errorf("unable to publish graph to shared store: %w", err)
	}

	descriptorBytes, ok2, err := store.GetDescriptor(hex.EncodeToString(gf.Exact[:]))
	if err != nil {
		return fmt.Errorf("unable to read back published descriptor: %w", err)
	}
	if !ok2 {
		return fmt.Errorf("descriptor not found immediately after publishing")
	}

	orchestrator := distribution.NewOrchestrator(distribution.OrchestratorOptions{
		RequiredWorkers:            orchestrateConfiguration.requiredWorkers,
		AttachWaitTimeout:          time.Duration(yamlConfig.Distribution.AttachTimeoutSeconds) * time.Second,
		LowWorkersWarningThreshold: 1,
	}, logger.Sublogger("orchestrator"))

	scheduler := newPipScheduler(graph)

	var dispatchMu sync.Mutex
	var dispatchPending func(ids []pipgraph.PipId)
	dispatchPending = func(ids []pipgraph.PipId) {
		dispatchMu.Lock()
		defer dispatchMu.Unlock()
		for _, id := range ids {
			if _, _, err := orchestrator.Dispatch(string(id), nil); err != nil {
				logger.Warnf("unable to dispatch pip %s: %v", id, err)
			}
		}
	}

	orchestrator.OnResult = func(workerId string, result *wireproto.PipResult) {
		logger.Infof("worker %s completed pip %s: %s", workerId, result.PipId, result.Status)
		unblocked := scheduler.complete(pipgraph.PipId(result.PipId))
		dispatchPending(unblocked)
	}
	fatal := make(chan error, 1)
	orchestrator.OnWorkerFailure = func(event distribution.FailureEvent) {
		if event.Kind == distribution.Fatal {
			select {
			case fatal <- fmt.Errorf("worker %s failed fatally: %w", event.WorkerId, event.Err):
			default:
			}
			return
		}
		logger.Warnf("worker %s failed (%s): %v, reassigning %d pip(s)", event.WorkerId, event.Kind, event.Err, len(event.ReassignedPips))
		var ids []pipgraph.PipId
		for _, pipId := range event.ReassignedPips {
			ids = append(ids, pipgraph.PipId(pipId))
		}
		dispatchPending(ids)
	}

	listener, err := net.Listen("tcp", orchestrateConfiguration.listen)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", orchestrateConfiguration.listen, err)
	}
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			randomUUID, err := uuid.NewRandom()
			if err != nil {
				logger.Warnf("unable to generate worker id: %v", err)
				conn.Close()
				continue
			}
			workerId := "worker-" + randomUUID.String()
			go func() {
				if err := orchestrator.Accept(workerId, conn); err != nil {
					logger.Warnf("unable to accept %s: %v", workerId, err)
				}
			}()
		}
	}()

	orchestrator.PublishGraph(descriptorBytes)

	waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := orchestrator.WaitForWorkersOrTimeout(waitCtx); err != nil {
		return fmt.Errorf("unable to gather workers: %w", err)
	}

	dispatchPending(scheduler.ready())

	select {
	case <-scheduler.done:
		logger.Info("all pips completed")
	case err := <-fatal:
		orchestrator.Shutdown("build aborted")
		return err
	case <-time.After(30 * time.Minute):
		return fmt.Errorf("timed out waiting for pip completion")
	}

	orchestrator.Shutdown("build complete")
	return nil
}

var orchestrateCommand = &cobra.Command{
	Use:   "orchestrate",
	Short: "Publish a graph and distribute its pips to attached workers",
	Run:   cmd.Mainify(orchestrateMain),
}

func init() {
	flags := orchestrateCommand.Flags()
	flags.StringVar(&orchestrateConfiguration.config, "config", "pipforge.yaml", "Path to the engine's YAML configuration file")
	flags.StringVar(&orchestrateConfiguration.graph, "graph", "graph.yaml", "Path to the graph spec file standing in for a frontend")
	flags.StringVar(&orchestrateConfiguration.listen, "listen", ":9400", "Address to listen for worker connections on")
	flags.IntVar(&orchestrateConfiguration.requiredWorkers, "required-workers", 1, "Number of workers to wait for before dispatching")
	flags.StringVar(&orchestrateConfiguration.logLevel, "log-level", "info", "Log level: disabled, error, warn, info, debug")
	flags.SortFlags = false
}
