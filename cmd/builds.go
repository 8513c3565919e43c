package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dotcommander/gearfit/internal/catalog"
)

var (
	buildsClasses []string
	buildsPattern string
)

var buildsCmd = &cobra.Command{
	Use:   "builds",
	Short: "List the builds in the catalog",
	Long: `Builds lists the catalog's builds with their class, tier and profiles.

When per-class index.json files are present they are used for the listing and
build files are not decoded, so profile names are not shown.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runBuilds(os.Stdout); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(buildsCmd)

	buildsCmd.Flags().StringSliceVar(&buildsClasses, "class", nil, "Only list builds of these classes")
	buildsCmd.Flags().StringVar(&buildsPattern, "builds", "", "Only list build files whose catalog path matches this glob")
}

func runBuilds(w io.Writer) error {
	rc, err := setup()
	if err != nil {
		return err
	}
	cfg := rc.cfg

	entries, err := catalog.List(cfg.Catalog, catalog.Options{
		Pattern:        buildsPattern,
		Classes:        buildsClasses,
		FollowSymlinks: cfg.FollowSymlinks,
		Logger:         rc.log,
	})
	if err != nil {
		return fmt.Errorf("error listing builds: %w", err)
	}

	switch cfg.Format {
	case "json":
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("error marshaling JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "markdown":
		writeBuildsMarkdown(w, entries)
	default:
		if !cfg.Quiet {
			writeBuildsTable(w, entries)
		}
	}
	return nil
}

func writeBuildsTable(w io.Writer, entries []catalog.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No builds found.")
		return
	}

	idWidth, classWidth := len("ID"), len("CLASS")
	for _, e := range entries {
		idWidth = max(idWidth, utf8.RuneCountInString(e.ID))
		classWidth = max(classWidth, utf8.RuneCountInString(e.Class))
	}

	header := lipgloss.NewStyle().Bold(true)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	fmt.Fprintln(w, header.Render(fmt.Sprintf("%-*s  %-*s  %-4s  %s", idWidth, "ID", classWidth, "CLASS", "TIER", "NAME")))
	for _, e := range entries {
		line := fmt.Sprintf("%-*s  %-*s  %-4s  %s", idWidth, e.ID, classWidth, e.Class, e.Tier, e.Name)
		if len(e.Profiles) > 0 {
			line += "  " + dim.Render("("+strings.Join(e.Profiles, ", ")+")")
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\n%d builds\n", len(entries))
}

func writeBuildsMarkdown(w io.Writer, entries []catalog.Entry) {
	fmt.Fprintln(w, "| ID | Class | Tier | Name | Profiles |")
	fmt.Fprintln(w, "|----|-------|------|------|----------|")
	for _, e := range entries {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n", e.ID, e.Class, e.Tier, e.Name, strings.Join(e.Profiles, ", "))
	}
}
