package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dotcommander/gearfit/internal/catalog"
	"github.com/dotcommander/gearfit/internal/inventory"
	"github.com/dotcommander/gearfit/internal/match"
	"github.com/dotcommander/gearfit/internal/output"
	"github.com/dotcommander/gearfit/internal/outputters"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

var (
	scoreBuild   string
	scoreProfile string
	scoreSlot    string
	scoreExplain bool
)

var scoreCmd = &cobra.Command{
	Use:   "score <item file>",
	Short: "Score items against one slot of a build",
	Long: `Score rates every item in a file against a build profile's slot requirements
and prints the score, the slot's maximum and the resulting tier.

The slot defaults to each item's own slot. As in match, offhand items fall back
to the weapon slot and priority uniques to the slot that lists them. The profile
defaults to the build's first profile.

EXAMPLES:

  gearfit score helm.json --build ball_lightning
  gearfit score drops.yaml --build ball_lightning --profile endgame --slot ring --explain`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runScore(args[0]); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreBuild, "build", "b", "", "Build id (required)")
	scoreCmd.Flags().StringVarP(&scoreProfile, "profile", "p", "", "Profile name (defaults to the build's first profile)")
	scoreCmd.Flags().StringVarP(&scoreSlot, "slot", "s", "", "Score against this slot instead of the item's own")
	scoreCmd.Flags().BoolVarP(&scoreExplain, "explain", "e", false, "Show every scoring criterion")
	_ = scoreCmd.MarkFlagRequired("build")
}

func runScore(itemFile string) error {
	rc, err := setup()
	if err != nil {
		return err
	}
	cfg, log := rc.cfg, rc.log

	cat, err := catalog.Load(cfg.Catalog, catalog.Options{FollowSymlinks: cfg.FollowSymlinks, Logger: log})
	if err != nil {
		return fmt.Errorf("error loading catalog: %w", err)
	}
	build, ok := cat.Find(scoreBuild)
	if !ok {
		return fmt.Errorf("build %q not found in %s", scoreBuild, cfg.Catalog)
	}
	profileName, profile, ok := catalog.Profile(build, scoreProfile)
	if !ok {
		return fmt.Errorf("build %q has no profile %q", build.ID, scoreProfile)
	}

	var slotOverride types.Slot
	if scoreSlot != "" {
		s, ok := inventory.NormalizeSlot(scoreSlot)
		if !ok {
			return fmt.Errorf("unknown slot %q", scoreSlot)
		}
		slotOverride = s
	}

	items, err := inventory.NewLoader(inventory.Options{Strict: true, Logger: log}).LoadFile(itemFile)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("%s: %w", itemFile, inventory.ErrNoItems)
	}

	outputter := outputters.NewOutputter(cfg, nil)
	scored := 0
	for _, item := range items {
		slot, ok := inventory.SlotFor(item, profile)
		if slotOverride != "" {
			slot = slotOverride
			_, ok = profile.Slots[slot]
		}
		if !ok {
			wanted := item.Slot
			if slotOverride != "" {
				wanted = slotOverride
			}
			log.Warn("Profile has no requirements for slot",
				slog.String("build", build.ID),
				slog.String("profile", profileName),
				slog.String("slot", string(wanted)),
				slog.String("item", item.Name),
			)
			continue
		}

		req := profile.Slots[slot]
		result := scoring.ScoreItemForSlot(item, req)
		if err := outputter.FormatScore(&output.ScoreResult{
			BuildID: build.ID,
			Profile: profileName,
			Slot:    slot,
			Item:    item,
			Scored:  result,
			Notes:   match.SlotNotes(&item, result, req),
			Explain: scoreExplain,
		}, cfg.Format); err != nil {
			return fmt.Errorf("error formatting output: %w", err)
		}
		scored++
	}

	if scored == 0 {
		return fmt.Errorf("no item in %s fits a slot of profile %q", itemFile, profileName)
	}
	return nil
}
