// Package config implements the engine's ambient YAML configuration
// loading, grounded on the teacher's pkg/configuration package but
// reshaped around this engine's mounts/pips/distribution domain instead of
// synchronization sessions.
package config

import (
	"github.com/pipforge/pipforge/pkg/encoding"
)

// MountConfiguration describes one named mount a pip graph may reference.
type MountConfiguration struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
	// Access is "readable", "writable", "scrubbable", or "readwrite"; any
	// other value is treated as "readable".
	Access string `yaml:"access"`
}

// DistributionConfiguration configures worker-mode and orchestrator-mode
// defaults for DistributionCoordinator (C7).
type DistributionConfiguration struct {
	// RequiredWorkers is the number of workers the orchestrator waits for
	// before proceeding; zero means run single-machine.
	RequiredWorkers int `yaml:"requiredWorkers"`
	// LowWorkersWarningThreshold is the attached-worker count below which
	// the orchestrator logs a degradation warning rather than failing.
	LowWorkersWarningThreshold int `yaml:"lowWorkersWarningThreshold"`
	// AttachTimeoutSeconds bounds how long a worker waits for Attach, and
	// how long the orchestrator waits for required workers.
	AttachTimeoutSeconds int `yaml:"attachTimeoutSeconds"`
	// MaxRetries bounds the exponential backoff retry count applied to
	// NetworkTransient distribution failures.
	MaxRetries int `yaml:"maxRetries"`
}

// CacheConfiguration configures GraphCache (C4) behavior.
type CacheConfiguration struct {
	// Compress enables flate compression of cached graph blobs.
	Compress bool `yaml:"compress"`
	// SharedStorePath is the root of the content-addressed shared store; if
	// empty, the entry points use a "shared" directory inside the engine
	// cache directory.
	SharedStorePath string `yaml:"sharedStorePath"`
}

// EngineConfiguration configures EngineDriver (C6) directory layout and
// lock behavior.
type EngineConfiguration struct {
	ObjectDirectory      string `yaml:"objectDirectory"`
	CacheDirectory       string `yaml:"cacheDirectory"`
	EngineCacheDirectory string `yaml:"engineCacheDirectory"`
	LogDirectory         string `yaml:"logDirectory"`
	// LockTimeoutSeconds bounds exclusive directory lock acquisition.
	LockTimeoutSeconds int `yaml:"lockTimeoutSeconds"`
	// PartialReuseEnabled controls whether GraphReuseDecider (C5) may
	// return PartialReuse rather than downgrading to Miss.
	PartialReuseEnabled bool `yaml:"partialReuseEnabled"`
}

// YAMLConfiguration is the root configuration object, loaded from a single
// YAML file, mirroring the teacher's YAMLConfiguration nested-defaults
// shape but keyed to this engine's components instead of synchronization
// sessions.
type YAMLConfiguration struct {
	Engine       EngineConfiguration       `yaml:"engine"`
	Cache        CacheConfiguration        `yaml:"cache"`
	Distribution DistributionConfiguration `yaml:"distribution"`
	Mounts       []MountConfiguration      `yaml:"mounts"`
}

// Load attempts to load a YAML-based engine configuration file from the
// specified path. os.IsNotExist errors are passed through unchanged so
// callers can treat a missing file as "use defaults" without Load itself
// deciding that policy.
func Load(path string) (*YAMLConfiguration, error) {
	result := &YAMLConfiguration{}
	if err := encoding.LoadAndUnmarshalYAML(path, result); err != nil {
		return nil, err
	}
	return result, nil
}
