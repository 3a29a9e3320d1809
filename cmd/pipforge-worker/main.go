// Command pipforge-worker attaches to an orchestrator and executes pips
// dispatched to it, per pkg/distribution's DistributionCoordinator protocol.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pipforge/pipforge/pkg/cmd"
	"github.com/pipforge/pipforge/pkg/config"
	"github.com/pipforge/pipforge/pkg/distribution"
	"github.com/pipforge/pipforge/pkg/engine"
	"github.com/pipforge/pipforge/pkg/graphcache"
	"github.com/pipforge/pipforge/pkg/logging"
)

func workerMain() error {
	orchestratorAddress := flag.String("orchestrator", "", "Address of the orchestrator's worker listener")
	configPath := flag.String("config", "pipforge.yaml", "Path to the engine's YAML configuration file")
	logLevel := flag.String("log-level", "info", "Log level: disabled, error, warn, info, debug")
	flag.Parse()

	if *orchestratorAddress == "" {
		return fmt.Errorf("--orchestrator is required")
	}

	level, ok := logging.NameToLevel(*logLevel)
	if !ok {
		return fmt.Errorf("invalid log level: %s", *logLevel)
	}
	logger := logging.NewRootLogger(level)

	yamlConfig, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("unable to load configuration: %w", err)
		}
		logger.Warnf("no configuration file at %s, using defaults", *configPath)
		yamlConfig = &config.YAMLConfiguration{}
	}

	mountRoots := make(map[string]string, len(yamlConfig.Mounts))
	for _, m := range yamlConfig.Mounts {
		mountRoots[m.Name] = m.Path
	}

	engineCacheDir := yamlConfig.Engine.EngineCacheDirectory
	if engineCacheDir == "" {
		engineCacheDir = ".pipforge/worker-cache"
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

	source := engine.NewWorkerGraphSource(cache, mountRoots)

	worker := distribution.NewWorker(source, source, distribution.WorkerOptions{
		AttachTimeout: time.Duration(yamlConfig.Distribution.AttachTimeoutSeconds) * time.Second,
	}, logger.Sublogger("worker"))

	raw, err := net.Dial("tcp", *orchestratorAddress)
	if err != nil {
		return fmt.Errorf("unable to dial orchestrator: %w", err)
	}

	if err := worker.SayHello(raw); err != nil {
		return err
	}

	ctx := context.Background()
	attach, err := worker.WaitForAttach(ctx)
	if err != nil {
		return err
	}

	if err := worker.FetchGraph(attach.GraphDescriptor); err != nil {
		return err
	}

	return worker.Run(ctx)
}

func main() {
	if err := workerMain(); err != nil {
		cmd.Fatal(err)
	}
}
