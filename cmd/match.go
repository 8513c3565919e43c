package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dotcommander/gearfit/internal/baseline"
	"github.com/dotcommander/gearfit/internal/catalog"
	"github.com/dotcommander/gearfit/internal/inventory"
	"github.com/dotcommander/gearfit/internal/match"
	"github.com/dotcommander/gearfit/internal/output"
	"github.com/dotcommander/gearfit/internal/outputters"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// DefaultBaselineFile is where --save-baseline writes when no path is configured.
const DefaultBaselineFile = ".gearfit-baseline.json"

var (
	matchClasses      []string
	matchBuilds       string
	matchProfiles     []string
	matchTop          int
	matchNotes        bool
	matchWorkers      int
	matchStrict       bool
	matchBaseline     string
	matchSaveBaseline bool
)

var matchCmd = &cobra.Command{
	Use:   "match <inventory files...>",
	Short: "Rank catalog builds against your gear",
	Long: `Match scores every item you own against every build profile in the catalog
and ranks the builds by how complete your gear is.

For each build the best profile is shown with its slot-by-slot recommendation,
the critical items you are missing and the slots most worth upgrading.

PROGRESS TRACKING:

  gearfit match inv.json --save-baseline     # record the current percentages
  gearfit match inv.json --baseline .gearfit-baseline.json
                                             # show the change since then

EXAMPLES:

  gearfit match inventory.json
  gearfit match inventory.json --class sorcerer --top 3 --notes
  gearfit match items/*.yaml --builds 'sorcerer/**' --profile endgame
  gearfit match inventory.json -f json -o report.json`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMatch(args); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringSliceVar(&matchClasses, "class", nil, "Only match builds of these classes")
	matchCmd.Flags().StringVar(&matchBuilds, "builds", "", "Only match build files whose catalog path matches this glob")
	matchCmd.Flags().StringSliceVar(&matchProfiles, "profile", nil, "Only match these profiles")
	matchCmd.Flags().IntVar(&matchTop, "top", 0, "Show only the N best builds (0 shows all)")
	matchCmd.Flags().BoolVar(&matchNotes, "notes", false, "Show per-slot notes")
	matchCmd.Flags().IntVar(&matchWorkers, "workers", 4, "Builds matched in parallel")
	matchCmd.Flags().BoolVar(&matchStrict, "strict", false, "Fail on invalid build or item files instead of skipping them")
	matchCmd.Flags().StringVar(&matchBaseline, "baseline", "", "Baseline file to compare against")
	matchCmd.Flags().BoolVar(&matchSaveBaseline, "save-baseline", false, "Save the results as the new baseline")

	_ = viper.BindPFlag("classes", matchCmd.Flags().Lookup("class"))
	_ = viper.BindPFlag("profiles", matchCmd.Flags().Lookup("profile"))
	_ = viper.BindPFlag("showNotes", matchCmd.Flags().Lookup("notes"))
	_ = viper.BindPFlag("workers", matchCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("strict", matchCmd.Flags().Lookup("strict"))
	_ = viper.BindPFlag("baseline", matchCmd.Flags().Lookup("baseline"))
}

func runMatch(args []string) error {
	rc, err := setup()
	if err != nil {
		return err
	}
	cfg, log := rc.cfg, rc.log

	ctx, stop := signal.NotifyContext(rc.ctx, os.Interrupt)
	defer stop()

	start := time.Now()
	cat, err := catalog.Load(cfg.Catalog, catalog.Options{
		Pattern:        matchBuilds,
		Classes:        cfg.Classes,
		Strict:         cfg.Strict,
		FollowSymlinks: cfg.FollowSymlinks,
		Logger:         log,
	})
	if errors.Is(err, catalog.ErrNoBuilds) {
		return fmt.Errorf("no builds found in %s", cfg.Catalog)
	}
	if err != nil {
		return err
	}

	builds := catalog.FilterProfiles(cat.Builds, cfg.Profiles)
	if len(builds) == 0 {
		return fmt.Errorf("no builds have profile %s", strings.Join(cfg.Profiles, ", "))
	}

	gear, err := inventory.NewLoader(inventory.Options{Strict: cfg.Strict, Logger: log}).LoadFiles(args)
	if err != nil {
		return fmt.Errorf("error loading inventory: %w", err)
	}

	var scorer scoring.Scorer
	if cfg.CacheSize > 0 {
		cache, err := scoring.NewCache(cfg.CacheSize)
		if err != nil {
			return err
		}
		scorer = cache
		defer func() {
			log.Debug("Score cache", slog.Int("entries", cache.Len()))
		}()
	}

	matcher := match.NewMatcher(match.MatcherConfig{Workers: cfg.Workers, Scorer: scorer, Logger: log})
	matches, err := matcher.Match(ctx, inventory.NewResolver(gear), builds)
	if err != nil {
		return fmt.Errorf("matching interrupted: %w", err)
	}
	log.Info("Matched builds",
		slog.Int("builds", len(matches)),
		slog.Int("slots", len(gear)),
		slog.Duration("elapsed", time.Since(start)),
	)

	report := &output.Report{
		Matches:   matches,
		ShowNotes: cfg.ShowNotes,
		RunID:     rc.runID,
		Catalog:   cfg.Catalog,
		StartTime: start,
	}

	if err := applyBaseline(report, cfg.Baseline, gear, log); err != nil {
		return err
	}

	if matchSaveBaseline {
		path := cfg.Baseline
		if path == "" {
			path = DefaultBaselineFile
		}
		b := baseline.CreateBaseline(matches, gear, rc.runID, time.Now())
		if err := b.SaveBaseline(path); err != nil {
			return err
		}
		log.Info("Saved baseline", slog.String("file", path))
	}

	if matchTop > 0 && len(report.Matches) > matchTop {
		report.Matches = report.Matches[:matchTop]
	}

	if err := outputters.NewOutputter(cfg, nil).Format(report, cfg.Format); err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	return nil
}

// applyBaseline fills the report's deltas from the baseline at path. A missing
// file is not an error when the run is about to create it.
func applyBaseline(report *output.Report, path string, gear types.Gear, log *slog.Logger) error {
	if path == "" {
		return nil
	}

	b, err := baseline.LoadBaseline(path)
	if errors.Is(err, fs.ErrNotExist) && matchSaveBaseline {
		log.Debug("No baseline yet", slog.String("file", path))
		return nil
	}
	if err != nil {
		return err
	}

	report.Deltas = make(map[string]baseline.Delta, len(report.Matches))
	for _, d := range b.Compare(report.Matches) {
		report.Deltas[d.BuildID] = d
	}
	report.Unchanged = b.SameInventory(gear)
	return nil
}
