package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/gearfit/internal/discovery"
	"github.com/dotcommander/gearfit/internal/format"
)

var (
	fmtCheck bool
	fmtWrite bool
	fmtDiff  bool
	fmtFiles []string // Explicit file paths
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files or directories...]",
	Short: "Format build files canonically",
	Long: `Format build files with canonical style.

FORMATTING RULES:

  - Legacy single-profile "gear" layouts become a "default" profile
  - Unique, aspect, affix and temper names are normalized to snake_case
    and de-duplicated, keeping the first occurrence
  - Affix lists without weights get descending default weights
  - Tags are trimmed and de-duplicated
  - JSON is indented with two spaces, YAML likewise; files end with a newline

USAGE MODES:

  gearfit fmt                      # Print formatted catalog to stdout
  gearfit fmt --write              # Write changes in place
  gearfit fmt --diff build.json    # Show diff
  gearfit fmt --check              # Exit 1 if files need formatting (CI)

Index files are never reformatted.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runFmt(args, os.Stdout); err != nil {
			fail(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(fmtCmd)

	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "Exit 1 if files would change (for CI)")
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "Write changes in place")
	fmtCmd.Flags().BoolVar(&fmtDiff, "diff", false, "Show diff of what would change")
	fmtCmd.Flags().StringArrayVar(&fmtFiles, "file", nil, "Explicit file path(s) to format")
}

func runFmt(args []string, w io.Writer) error {
	rc, err := setup()
	if err != nil {
		return err
	}
	cfg := rc.cfg

	filesToFormat, err := collectFilesToFormat(args, cfg.Catalog)
	if err != nil {
		return err
	}
	if len(filesToFormat) == 0 {
		return fmt.Errorf("no files to format")
	}

	var needsFormatting []string
	totalFiles := 0

	for _, filePath := range filesToFormat {
		totalFiles++

		absPath, err := discovery.ValidateFilePath(filePath)
		if err != nil {
			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", filePath, err)
			}
			continue
		}

		content, err := os.ReadFile(absPath)
		if err != nil {
			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", filePath, err)
			}
			continue
		}

		formatted, err := format.NewBuildFormatter(absPath).Format(string(content))
		if err != nil {
			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Error formatting %s: %v\n", filePath, err)
			}
			continue
		}

		if string(content) == formatted {
			if cfg.Verbose {
				fmt.Fprintf(w, "%s already formatted\n", filePath)
			}
			continue
		}

		needsFormatting = append(needsFormatting, absPath)
		switch {
		case fmtCheck:
			if !cfg.Quiet {
				fmt.Fprintf(w, "%s needs formatting\n", filePath)
			}
		case fmtDiff:
			fmt.Fprint(w, format.Diff(string(content), formatted, filePath))
		case fmtWrite:
			if err := os.WriteFile(absPath, []byte(formatted), 0644); err != nil {
				return fmt.Errorf("error writing %s: %w", absPath, err)
			}
			if !cfg.Quiet {
				fmt.Fprintf(w, "Formatted %s\n", filePath)
			}
		default:
			fmt.Fprint(w, formatted)
		}
	}

	if !cfg.Quiet && totalFiles > 1 {
		switch {
		case len(needsFormatting) == 0:
			fmt.Fprintf(w, "\nAll %d files already formatted\n", totalFiles)
		case fmtWrite:
			fmt.Fprintf(w, "\nFormatted %d of %d files\n", len(needsFormatting), totalFiles)
		default:
			fmt.Fprintf(w, "\n%d of %d files need formatting\n", len(needsFormatting), totalFiles)
		}
	}

	if fmtCheck && len(needsFormatting) > 0 {
		exitFunc(1)
	}
	return nil
}

// collectFilesToFormat determines which build files to format based on args and flags.
func collectFilesToFormat(args []string, catalogRoot string) ([]string, error) {
	if len(fmtFiles) > 0 {
		return fmtFiles, nil
	}

	if len(args) == 0 {
		return discoverBuildFiles(catalogRoot)
	}

	var files []string
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", path, err)
		}
		if info.IsDir() {
			dirFiles, err := discoverBuildFiles(path)
			if err != nil {
				return nil, err
			}
			files = append(files, dirFiles...)
			continue
		}
		files = append(files, path)
	}
	return files, nil
}

// discoverBuildFiles finds build files under dir, skipping index files.
func discoverBuildFiles(dir string) ([]string, error) {
	found, err := discovery.NewFileDiscovery(dir, false).DiscoverBuildFiles("")
	if err != nil {
		return nil, err
	}

	var files []string
	for _, f := range found {
		if f.Type != discovery.FileTypeBuild {
			continue
		}
		files = append(files, filepath.Clean(f.Path))
	}
	return files, nil
}
