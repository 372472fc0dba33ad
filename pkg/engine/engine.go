package engine

import (
	"context"
	"net/http"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/depsync/depsync/pkg/command"
	"github.com/depsync/depsync/pkg/condition"
	"github.com/depsync/depsync/pkg/config"
	"github.com/depsync/depsync/pkg/fetch"
	"github.com/depsync/depsync/pkg/hooks"
	"github.com/depsync/depsync/pkg/manifest"
	"github.com/depsync/depsync/pkg/platform"
	"github.com/depsync/depsync/pkg/telemetry"
	"github.com/depsync/depsync/pkg/vars"
)

// Fetcher retrieves one dependency into a destination directory.
type Fetcher interface {
	Fetch(ctx context.Context, dep *manifest.Dep, dest string) error
}

// HookRunner executes selected manifest hooks.
type HookRunner interface {
	Run(ctx context.Context, hooks []manifest.Hook, selected []string, workDir string, env vars.Env) error
}

// Options selects what a run fetches and executes.
type Options struct {
	// RootDir is the output directory dependency paths resolve against.
	RootDir string

	// ManifestPath locates the manifest file.
	ManifestPath string

	// HostOS and HostCPU override the detected host_os/host_cpu
	// environment variables.
	HostOS  string
	HostCPU string

	// Checkout names the flags set as checkout_<flag>=true.
	Checkout []string

	// Deps lists the dependency paths to fetch, in fetch order.
	Deps []string

	// Hooks names the hooks to run after fetching.
	Hooks []string
}

// Engine drives a checkout run.
type Engine struct {
	cfg      *config.Config
	log      zerolog.Logger
	metrics  *telemetry.Metrics
	source   Fetcher
	packages Fetcher
	hooks    HookRunner
}

// New wires an engine from configuration: git-backed source fetching,
// the configured package strategy (external cipd binary when set,
// built-in zip retrieval otherwise) and the hook runner.
func New(cfg *config.Config, log zerolog.Logger, metrics *telemetry.Metrics) *Engine {
	runner := command.ExecRunner{Log: log}

	var packages Fetcher
	if cfg.CIPDBinary != "" {
		packages = fetch.NewCIPDFetcher(cfg.CIPDBinary, runner, log, metrics)
	} else {
		var client *http.Client
		if cfg.Download.Timeout > 0 {
			client = &http.Client{Timeout: cfg.Download.Timeout}
		}
		packages = &fetch.ZipFetcher{
			Host:      cfg.PackageHost,
			Platform:  platform.Host(),
			Client:    client,
			Retries:   cfg.Download.Retries,
			RetryWait: cfg.Download.RetryWait,
			Log:       log,
			Metrics:   metrics,
		}
	}

	interpreter := cfg.Interpreter
	if interpreter == "" {
		if path, err := exec.LookPath("python3"); err == nil {
			interpreter = path
		}
	}

	return &Engine{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		source:   fetch.NewSourceFetcher(cfg.GitBinary, runner, log, metrics),
		packages: packages,
		hooks: &hooks.Runner{
			Commands:    runner,
			Interpreter: interpreter,
			Log:         log,
			Metrics:     metrics,
		},
	}
}

// Run loads the manifest and performs the selected fetches and hooks.
// Dependency paths are fetched in the order given; a dependency whose
// condition does not hold is skipped without error. Fetch and hook
// failures abort the run.
func (e *Engine) Run(ctx context.Context, opts Options) error {
	log := e.log.With().Str("run_id", uuid.New().String()).Logger()

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return err
	}
	log.Info().
		Str("manifest", opts.ManifestPath).
		Int("deps", len(m.Deps)).
		Int("hooks", len(m.Hooks)).
		Msg("Manifest loaded")

	env := buildEnv(m, opts)

	for _, path := range opts.Deps {
		dep, ok := m.Dep(path)
		if !ok {
			return &UnknownDependencyError{Path: path}
		}

		active, err := condition.Evaluate(dep.Condition, env)
		if err != nil {
			log.Warn().
				Err(err).
				Str("path", path).
				Msg("Condition failed to evaluate, skipping dependency")
			continue
		}
		if !active {
			log.Info().
				Str("path", path).
				Str("condition", dep.Condition).
				Msg("Condition didn't match, skipping dependency")
			continue
		}

		dest := filepath.Join(opts.RootDir, path)
		switch dep.Kind {
		case manifest.DepPackage:
			err = e.packages.Fetch(ctx, dep, dest)
		default:
			err = e.source.Fetch(ctx, dep, dest)
		}
		if err != nil {
			return err
		}
	}

	return e.hooks.Run(ctx, m.Hooks, opts.Hooks, opts.RootDir, env)
}

// buildEnv assembles the variable environment for one run: manifest
// defaults, then host_os/host_cpu, then the requested checkout flags.
// Everything else stays absent and evaluates as falsy.
func buildEnv(m *manifest.Manifest, opts Options) vars.Env {
	env := m.Vars.Clone()

	host := platform.Host()
	hostOS := opts.HostOS
	if hostOS == "" {
		hostOS = host.HostOS()
	}
	hostCPU := opts.HostCPU
	if hostCPU == "" {
		hostCPU = host.HostCPU()
	}
	env.Set("host_os", vars.StringValue(hostOS))
	env.Set("host_cpu", vars.StringValue(hostCPU))

	for _, flag := range opts.Checkout {
		env.Set("checkout_"+flag, vars.BoolValue(true))
	}

	return env
}
