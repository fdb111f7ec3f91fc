// Package cli implements the fixpath command line.
// Commands register themselves on rootCmd from init and run against the
// driving ports installed by SetServices or built by the bootstrap hook.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driving"
	"github.com/custodia-labs/fixpath-cli/internal/logger"
)

// annotationPipeline marks commands that need the AI providers and the
// full pipeline wired, not just settings.
const annotationPipeline = "fixpath/pipeline"

// annotationStandalone marks commands that run without any services.
const annotationStandalone = "fixpath/standalone"

// ConfigDirEnv overrides the configuration directory.
const ConfigDirEnv = "FIXPATH_CONFIG"

var (
	version = "dev"

	verbose   bool
	configDir string

	repairService    driving.RepairService
	queryPlanner     driving.QueryPlanner
	manualService    driving.ManualService
	retrievalService driving.RetrievalService
	settingsService  driving.SettingsService
	promptWatcher    PromptWatcher
	initWarnings     []string
	closeServices    func()

	bootstrap Bootstrap
)

// PromptWatcher reloads prompt templates when they change on disk.
type PromptWatcher interface {
	Watch(ctx context.Context) error
}

// Services holds the driving ports the commands run against.
// Every field except Settings may be nil when not wired.
type Services struct {
	Repair    driving.RepairService
	Planner   driving.QueryPlanner
	Manual    driving.ManualService
	Retrieval driving.RetrievalService
	Settings  driving.SettingsService
	Prompts   PromptWatcher

	// Warnings are non-fatal initialisation problems shown to the user.
	Warnings []string

	// Close releases resources held by the services.
	Close func()
}

// Options are passed to the bootstrap hook.
type Options struct {
	// ConfigDir holds config.toml, prompts and the default data directory.
	ConfigDir string

	// Pipeline requests the AI providers and pipeline services.
	Pipeline bool
}

// Bootstrap builds services for a command invocation.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

// SetBootstrap installs the hook that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices installs the driving ports used by the commands.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	repairService = s.Repair
	queryPlanner = s.Planner
	manualService = s.Manual
	retrievalService = s.Retrieval
	settingsService = s.Settings
	promptWatcher = s.Prompts
	initWarnings = s.Warnings
	closeServices = s.Close
}

var rootCmd = &cobra.Command{
	Use:   "fixpath",
	Short: "Diagnose equipment faults and build repair guides",
	Long: `fixpath diagnoses a fault from a description, photos or audio, crawls repair
documentation for the equipment, and writes a step-by-step repair guide grounded
in what it found.

Configure an AI provider first:
  fixpath settings wizard

Then describe the problem:
  fixpath analyze -c vehicle --make Honda --model Accord --year 2019 "clicking when turning"`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline traces to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "",
		"configuration directory (default $"+ConfigDirEnv+" or ~/.fixpath)")
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			closeServices()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetVerbose(verbose)

	loadEnvFile(".env")
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	loadEnvFile(filepath.Join(dir, ".env"))

	if bootstrap == nil || cmd.Annotations[annotationStandalone] == "true" {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := bootstrap(ctx, Options{
		ConfigDir: dir,
		Pipeline:  cmd.Annotations[annotationPipeline] == "true",
	})
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	SetServices(svc)
	for _, w := range initWarnings {
		logger.Warn("%s", w)
	}
	return nil
}

// resolveConfigDir returns the --config flag, then $FIXPATH_CONFIG, then ~/.fixpath.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	if env := os.Getenv(ConfigDirEnv); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fixpath"), nil
}

// loadEnvFile loads KEY=value pairs without overriding the environment.
func loadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("loading %s: %v", path, err)
	}
}

// printWarnings shows initialisation warnings on stderr.
func printWarnings(cmd *cobra.Command) {
	for _, w := range initWarnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
}
