// Package root contains the root command for the application
package root

import (
	"fmt"

	"fjacquet/camt-xlsx/internal/config"
	"fjacquet/camt-xlsx/internal/container"
	"fjacquet/camt-xlsx/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	ConfigFile  string
	LogLevel    string
	LogFormat   string
	Profile     string
	ProfileFile string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "camt-xlsx",
		Short: "Extract tabular data from ISO 20022 camt documents into Excel or CSV.",
		Long: `camt-xlsx reads camt.052, camt.053 and camt.054 XML documents and turns
every booking entry (or every transaction inside it) into one spreadsheet row.

Which values end up in which column is described by an extraction profile.
Built-in profiles cover the common Swiss notification and statement layouts;
additional profiles can be loaded from a YAML file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to camt-xlsx!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return Initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					Log.WithError(err).Warn("Failed to close container")
				}
			}
		},
	}

	// SharedFlags holds the persistent flags of the root command
	SharedFlags = CommonFlags{}

	appConfig    *config.Config
	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	flags := Cmd.PersistentFlags()
	flags.StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: ./config.yaml or $HOME/.camt-xlsx/config.yaml)")
	flags.StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&SharedFlags.LogFormat, "log-format", "", "Log format (text, json)")
	flags.StringVarP(&SharedFlags.Profile, "profile", "p", "", "Extraction profile")
	flags.StringVar(&SharedFlags.ProfileFile, "profile-file", "", "YAML file with additional extraction profiles")
}

// Initialize loads .env and the configuration, applies the persistent flags
// and builds the application container.
func Initialize(cmd *cobra.Command) error {
	config.LoadEnv(Log)

	cfg, err := config.InitializeConfigFromFile(SharedFlags.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlags(cmd, cfg)

	Log = config.ConfigureLoggingFromConfig(cfg)

	c, err := container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appConfig = cfg
	appContainer = c
	return nil
}

// applyFlags copies explicitly set persistent flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		if cmd == nil {
			return false
		}
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("log-level") {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	if changed("log-format") {
		cfg.Log.Format = SharedFlags.LogFormat
	}
	if changed("profile") {
		cfg.Profile.Name = SharedFlags.Profile
	}
	if changed("profile-file") {
		cfg.Profile.File = SharedFlags.ProfileFile
	}
}

// GetLogger returns the configured logger
func GetLogger() logging.Logger {
	return Log
}

// GetConfig returns the loaded configuration, or nil before initialization
func GetConfig() *config.Config {
	return appConfig
}

// GetContainer returns the application container, or nil before initialization
func GetContainer() *container.Container {
	return appContainer
}
