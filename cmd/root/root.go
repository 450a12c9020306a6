// Package root contains the root command for the application
package root

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fjacquet/invoice-extract/internal/config"
	"fjacquet/invoice-extract/internal/container"
	"fjacquet/invoice-extract/internal/logging"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	ConfigFile   string
	TemplatesDir string
	LogLevel     string
}

var (
	// Log is the shared logger for commands. It is replaced once the
	// configuration is loaded.
	Log = logging.NewLogrusAdapter("info", "text")

	// AppConfig is the loaded configuration.
	AppConfig *config.Config

	// AppContainer holds the wired components once PersistentPreRunE has run.
	AppContainer *container.Container

	// Flags holds the values of the persistent flags.
	Flags = GlobalFlags{}

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "invoice-extract",
		Short: "Extract invoice fields from PDFs into one spreadsheet",
		Long: `invoice-extract reads PDF invoices, recognizes the issuer from per-issuer
YAML templates and extracts invoice number, date, amount, client and issuer.
All processed invoices are exported to one aggregated XLSX or CSV file.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to invoice-extract!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: initialize,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if AppContainer != nil {
				_ = AppContainer.Close()
			}
		},
	}
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&Flags.ConfigFile, "config", "", "Config file (default: config.yaml in ., .invoice-extract or ~/.invoice-extract)")
	Cmd.PersistentFlags().StringVarP(&Flags.TemplatesDir, "templates", "t", "", "Directory holding the template definitions")
	Cmd.PersistentFlags().StringVar(&Flags.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

func initialize(cmd *cobra.Command, args []string) error {
	envFile, envErr := config.LoadEnv()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if Flags.TemplatesDir != "" {
		cfg.Templates.Dir = Flags.TemplatesDir
	}
	if Flags.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(Flags.LogLevel)
	}

	AppConfig = cfg
	Log = config.ConfigureLoggingFromConfig(cfg)
	if envErr != nil {
		Log.WithError(envErr).Warn("Failed to load .env file")
	} else if envFile != "" {
		Log.Debug("Loaded environment file", logging.F(logging.FieldFile, envFile))
	}

	c, err := container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	AppContainer = c
	return nil
}

func loadConfig() (*config.Config, error) {
	if Flags.ConfigFile != "" {
		return config.InitializeConfigFromFile(Flags.ConfigFile)
	}
	return config.InitializeConfig()
}

// GetLogger returns the configured command logger.
func GetLogger() logging.Logger {
	return Log
}

// GetContainer returns the application container, nil before initialization.
func GetContainer() *container.Container {
	return AppContainer
}

// GetConfig returns the loaded configuration, nil before initialization.
func GetConfig() *config.Config {
	return AppConfig
}
