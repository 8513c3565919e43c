package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/gearfit/internal/config"
	"github.com/dotcommander/gearfit/internal/logger"
	"github.com/dotcommander/gearfit/internal/project"
)

var (
	catalogPath  string
	quiet        bool
	verbose      bool
	outputFormat string
	outputFile   string
	logLevel     string
	logFormat    string
)

// Version is set at build time.
var Version = "dev"

// exitFunc is swapped out by tests.
var exitFunc = os.Exit

var rootCmd = &cobra.Command{
	Use:   "gearfit",
	Short: "Rank game builds by how well your gear fits them",
	Long: `Gearfit scores the items you own against curated build guides and ranks the
builds by how close your gear is to completing them.

Builds are read from a catalog directory (auto-detected from a builds/ folder or
a .gearfitrc file when --catalog is not given). Inventory files hold the items
you own, as JSON or YAML.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		exitFunc(1)
	}
}

func init() {
	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "Build catalog directory (auto-detected if not specified)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "console", "Output format for reports (console|json|markdown)")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file for reports (json and markdown)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text|json)")

	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// runContext is the configuration and logger shared by every command run.
type runContext struct {
	ctx   context.Context
	cfg   *config.Config
	log   *slog.Logger
	runID string
}

// setup loads configuration, resolves the catalog directory and builds the logger.
func setup() (*runContext, error) {
	cfg, err := config.LoadConfig(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}

	if cfg.Catalog == "" {
		root, err := project.FindCatalogRoot(".")
		if err != nil {
			return nil, fmt.Errorf("error detecting catalog: %w", err)
		}
		cfg.Catalog = root
	}

	runID := logger.NewRunID()
	ctx := logger.WithRunID(context.Background(), runID)
	log := logger.FromContext(ctx, logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, os.Stderr))
	log.Debug("Configuration loaded",
		slog.String("catalog", cfg.Catalog),
		slog.String("config_file", cfg.ConfigFile),
		slog.String("format", cfg.Format),
	)

	return &runContext{ctx: ctx, cfg: cfg, log: log, runID: runID}, nil
}

// fail prints err and exits 1.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	exitFunc(1)
}
