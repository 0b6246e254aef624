package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sky-flux/fsrs45/internal/config"
	"github.com/sky-flux/fsrs45/internal/logging"
	"github.com/sky-flux/fsrs45/internal/store"
)

var (
	cfgFile     string
	cfgDBPath   string
	cfgLogLevel string
	outputJSON  bool
)

// Set in PersistentPreRunE.
var (
	appConfig *config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fsrs45",
	Short: "Spaced repetition scheduling with FSRS-4.5",
	Long: `fsrs45 keeps a deck of flashcards in a local SQLite database and
schedules each review with the FSRS-4.5 memory model.

Grade a card with Again, Hard, Good or Easy (or 1-4) and fsrs45 computes
when you should see it next so that recall stays at 90%.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config file (default: $FSRS45_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cfgDBPath, "db", "", "Path to the card database (default: ~/.fsrs45/cards.db)")
	rootCmd.PersistentFlags().StringVar(&cfgLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
}

// setup loads configuration and builds the logger. Flags override the
// config file and environment.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfgDBPath != "" {
		cfg.DB.Path = cfgDBPath
	}
	if cfgLogLevel != "" {
		cfg.Log.Level = cfgLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}

	l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger = l
	return nil
}

// openStore opens the configured card database. Callers close it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	st, err := store.Open(cmd.Context(), appConfig.DB.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}
