package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pipforge/pipforge/pkg/cmd"
	"github.com/pipforge/pipforge/pkg/config"
	"github.com/pipforge/pipforge/pkg/engine"
	"github.com/pipforge/pipforge/pkg/filecontent"
	"github.com/pipforge/pipforge/pkg/fingerprint"
	"github.com/pipforge/pipforge/pkg/graphcache"
	"github.com/pipforge/pipforge/pkg/inputtracking"
	"github.com/pipforge/pipforge/pkg/logging"
	"github.com/pipforge/pipforge/pkg/pipgraph"
	"github.com/pipforge/pipforge/pkg/reuse"
)

// buildConfiguration holds the build command's flags. There is, by design, no
// real spec-language frontend here: --graph points at a fixed GraphSpec YAML
// file instead, which is read as a stand-in for what an evaluated frontend
// would hand EngineDriver.
var buildConfiguration struct {
	config       string
	graph        string
	explicitId   string
	evaluateOnly bool
	cleanOnly    bool
	logLevel     string
}

func buildMain(command *cobra.Command, arguments []string) error {
	level, ok := logging.NameToLevel(buildConfiguration.logLevel)
	if !ok {
		return fmt.Errorf("invalid log level: %s", buildConfiguration.logLevel)
	}
	logger := logging.NewRootLogger(level)

	yamlConfig, err := config.Load(buildConfiguration.config)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("unable to load configuration: %w", err)
		}
		logger.Warnf("no configuration file at %s, using defaults", buildConfiguration.config)
		yamlConfig = &config.YAMLConfiguration{}
	}

	mountRoots := make(map[string]string, len(yamlConfig.Mounts))
	mounts := make([]pipgraph.Mount, 0, len(yamlConfig.Mounts))
	for _, m := range yamlConfig.Mounts {
		mountRoots[m.Name] = m.Path
		mounts = append(mounts, pipgraph.Mount{
			Name:         m.Name,
			ResolvedPath: m.Path,
			Access:       pipgraph.ParseMountAccess(m.Access),
		})
	}

	engineCacheDir := yamlConfig.Engine.EngineCacheDirectory
	if engineCacheDir == "" {
		engineCacheDir = ".pipforge/cache"
	}
	objectDir := yamlConfig.Engine.ObjectDirectory
	if objectDir == "" {
		objectDir = ".pipforge/objects"
	}

	var store graphcache.SharedStore
	if yamlConfig.Cache.SharedStorePath != "" {
		diskStore, err := graphcache.NewDiskSharedStore(yamlConfig.Cache.SharedStorePath)
		if err != nil {
			return fmt.Errorf("unable to open shared store: %w", err)
		}
		store = diskStore
	} else {
		diskStore, err := graphcache.NewDiskSharedStore(engineCacheDir + "/shared")
		if err != nil {
			return fmt.Errorf("unable to open default shared store: %w", err)
		}
		store = diskStore
	}

	cache, err := graphcache.New(engineCacheDir, store, yamlConfig.Cache.Compress, logger.Sublogger("graphcache"))
	if err != nil {
		return fmt.Errorf("unable to construct graph cache: %w", err)
	}
	decider := reuse.New(cache, logger.Sublogger("reuse"))

	fileContentTablePath := engineCacheDir + "/FileContentTable.bin"
	table, err := filecontent.Load(fileContentTablePath, logger.Sublogger("filecontent"))
	if err != nil {
		return fmt.Errorf("unable to load file content table: %w", err)
	}

	ruleSet := inputtracking.NewRuleSet(nil)
	tracker := inputtracking.New(table, ruleSet, logger.Sublogger("inputtracking"))

	var graph *pipgraph.PipGraph
	var graphFingerprint fingerprint.GraphFingerprint
	var decision reuse.Decision

	driver := engine.New(engine.Options{
		ObjectDirectory:      objectDir,
		CacheDirectory:       yamlConfig.Engine.CacheDirectory,
		EngineCacheDirectory: engineCacheDir,
		LogDirectory:         yamlConfig.Engine.LogDirectory,
		LockTimeout:          time.Duration(yamlConfig.Engine.LockTimeoutSeconds) * time.Second,
		CleanOnly:            buildConfiguration.cleanOnly,
		EvaluateOnly:         buildConfiguration.evaluateOnly,
	}, logger.Sublogger("engine"))

	hooks := engine.Hooks{
		Parse: func(ctx context.Context) error {
			spec, err := engine.LoadGraphSpec(buildConfiguration.graph)
			if err != nil {
				return fmt.Errorf("unable to load graph spec: %w", err)
			}
			built, err := spec.Build()
			if err != nil {
				return fmt.Errorf("unable to build pip graph: %w", err)
			}
			graph = built
			return nil
		},
		Evaluate: func(ctx context.Context) error {
			inputs := fingerprint.Inputs{
				EnvironmentVariables: tracker.EnvironmentVariables(),
				Mounts:               mountRoots,
			}
			graphFingerprint = fingerprint.Compute(inputs)

			decision = decider.Decide(graphFingerprint, reuse.Options{
				ExplicitGraphId:     buildConfiguration.explicitId,
				PartialReuseEnabled: yamlConfig.Engine.PartialReuseEnabled,
				PreviousInputsPath:  engineCacheDir + "/PreviousInputs",
				Rules:               ruleSet,
			})
			if decision.Kind != reuse.Miss {
				graph = decision.Graph
				logger.Infof("reusing graph (%v), skipping scheduling", decision.Kind)
			}
			return nil
		},
		Schedule: func(ctx context.Context) error {
			return nil
		},
		Execute: func(ctx context.Context) error {
			if graph == nil {
				return fmt.Errorf("no pip graph available to execute")
			}
			executor := &engine.LocalExecutor{MountRoots: mountRoots}
			graphExecutor := &engine.GraphExecutor{Graph: graph, Executor: executor}

			outcomes, err := graphExecutor.ExecuteAll(ctx)
			for id, outcome := range outcomes {
				logger.Infof("pip %s: %s", id, outcome.Status)
			}
			if err != nil {
				return fmt.Errorf("pip execution failed: %w", err)
			}

			if err := cache.Save(graph, graphFingerprint, tracker); err != nil {
				return fmt.Errorf("unable to save graph cache: %w", err)
			}
			table.AgeAndEvict()
			if err := table.Save(fileContentTablePath); err != nil {
				return fmt.Errorf("unable to save file content table: %w", err)
			}
			if err := cache.FinalizePreviousInputs(); err != nil {
				return fmt.Errorf("unable to finalize previous inputs: %w", err)
			}
			return nil
		},
	}

	if err := driver.Run(context.Background(), hooks); err != nil {
		return err
	}
	if !driver.Success() {
		return fmt.Errorf("build failed")
	}
	return nil
}

var buildCommand = &cobra.Command{
	Use:   "build",
	Short: "Run a build through the engine's phase sequence",
	Run:   cmd.Mainify(buildMain),
}

func init() {
	flags := buildCommand.Flags()
	flags.StringVar(&buildConfiguration.config, "config", "pipforge.yaml", "Path to the engine's YAML configuration file")
	flags.StringVar(&buildConfiguration.graph, "graph", "graph.yaml", "Path to the graph spec file standing in for a frontend")
	flags.StringVar(&buildConfiguration.explicitId, "explicit-graph-id", "", "Bypass fingerprint-driven reuse and load this exact fingerprint")
	flags.BoolVar(&buildConfiguration.evaluateOnly, "evaluate-only", false, "Stop after the evaluate phase")
	flags.BoolVar(&buildConfiguration.cleanOnly, "clean-only", false, "Stop after the schedule phase")
	flags.StringVar(&buildConfiguration.logLevel, "log-level", "info", "Log level: disabled, error, warn, info, debug")
	flags.SortFlags = false
}
