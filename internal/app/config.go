package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// BuildfilePath locates the project's .hcl buildfile. All project paths
	// resolve against the buildfile's directory, not the caller's cwd.
	BuildfilePath string

	LogFormat string
	LogLevel  string

	// MaxPasses overrides the buildfile's convergence bound when non-zero.
	MaxPasses int
	// BestEffort continues past provisioning and figure-generation failures,
	// matching the original scripts' lenient behavior.
	BestEffort bool
	// Force bypasses provisioning memoization.
	Force bool
	// Watch keeps the process resident and rebuilds on source changes.
	Watch bool
	// Only restricts compilation to the named targets.
	Only []string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.BuildfilePath == "" {
		return nil, errors.New("BuildfilePath is a required configuration field and cannot be empty")
	}
	if cfg.MaxPasses < 0 {
		return nil, errors.New("MaxPasses cannot be negative")
	}
	return &cfg, nil
}
