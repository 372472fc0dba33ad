package commands

import (
	"net/http"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/depsync/depsync/pkg/config"
	"github.com/depsync/depsync/pkg/engine"
	"github.com/depsync/depsync/pkg/telemetry"
)

func newSyncCommand() *cobra.Command {
	var (
		rootDir      string
		manifestPath string
		hostOS       string
		hostCPU      string
		checkout     []string
		deps         []string
		hookNames    []string
		metricsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch dependencies and run hooks",
		Long: `Fetch the selected dependency paths from the manifest into the root
directory, then run the selected hooks.

Dependencies are fetched in the order given on the command line. A
dependency or hook whose condition does not hold for the target
configuration is skipped. Destinations already at the requested
revision or version are left untouched.`,
		Example: `  # Fetch two dependencies and run one hook for a linux x64 checkout
  depsync sync --root out --manifest DEPS \
    --checkout linux --dep v8 --dep build --hook lastchange

  # Cross-target environment
  depsync sync --root out --manifest DEPS --host-os win --host-cpu x64 \
    --checkout win --dep v8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			applyEnvironment(cfg)
			if verbose {
				cfg.Logging.Level = "debug"
			}

			logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cfg.Logging.Output,
			})
			if err != nil {
				return err
			}

			metrics := telemetry.NewMetrics()
			if metricsAddr != "" {
				go func() {
					if err := http.ListenAndServe(metricsAddr, metrics.Handler()); err != nil {
						log.Warn().Err(err).Msg("Metrics endpoint stopped")
					}
				}()
			}

			logger.Info().
				Str("root", rootDir).
				Str("manifest", manifestPath).
				Strs("deps", deps).
				Strs("hooks", hookNames).
				Bool("external_cipd", cfg.CIPDBinary != "").
				Msg("Starting sync")

			eng := engine.New(cfg, logger, metrics)
			return eng.Run(cmd.Context(), engine.Options{
				RootDir:      rootDir,
				ManifestPath: manifestPath,
				HostOS:       hostOS,
				HostCPU:      hostCPU,
				Checkout:     checkout,
				Deps:         deps,
				Hooks:        hookNames,
			})
		},
	}

	cmd.Flags().StringVarP(&rootDir, "root", "r", ".", "output directory dependency paths resolve against")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "i", "", "manifest (DEPS) file path")
	cmd.Flags().StringVar(&hostOS, "host-os", "", "override host_os (linux, win, mac)")
	cmd.Flags().StringVar(&hostCPU, "host-cpu", "", "override host_cpu (x64, arm64)")
	cmd.Flags().StringArrayVar(&checkout, "checkout", nil, "set checkout_<flag>=true (repeatable)")
	cmd.Flags().StringArrayVarP(&deps, "dep", "d", nil, "dependency path to fetch, in order (repeatable)")
	cmd.Flags().StringArrayVar(&hookNames, "hook", nil, "hook name to run (repeatable)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.MarkFlagRequired("manifest")

	return cmd
}

// applyEnvironment resolves the external-tool strategy switch from the
// process environment into explicit configuration. DEPSYNC_CIPD_BIN
// names the binary directly; USE_CIPD picks up whatever cipd is on PATH.
func applyEnvironment(cfg *config.Config) {
	if bin := os.Getenv("DEPSYNC_CIPD_BIN"); bin != "" {
		cfg.CIPDBinary = bin
		return
	}
	if _, ok := os.LookupEnv("USE_CIPD"); ok {
		if bin, err := exec.LookPath("cipd"); err == nil {
			cfg.CIPDBinary = bin
		}
	}
}
