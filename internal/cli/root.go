package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satriahrh/voxtag/internal/config"
)

// Dependencies are resolved before any subcommand runs
type Dependencies struct {
	Config config.Config
	Logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)
	deps := &Dependencies{}

	rootCmd := &cobra.Command{
		Use:           "voxtag",
		Short:         "Record, tag, transcribe and combine short voice clips",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger, err := NewLogger(cfg.Telemetry.LogLevel)
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			deps.Config = cfg
			deps.Logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if deps.Logger != nil {
				_ = deps.Logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewCombineCmd(deps))
	rootCmd.AddCommand(NewTranscribeCmd(deps))

	return rootCmd
}

// NewLogger builds a production logger, or a development one at debug level
func NewLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}
