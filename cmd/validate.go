package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/gearfit/internal/cue"
	"github.com/dotcommander/gearfit/internal/discovery"
	"github.com/dotcommander/gearfit/internal/output"
	"github.com/dotcommander/gearfit/internal/outputters"
)

var validateType string

var validateCmd = &cobra.Command{
	Use:   "validate [files or directories...]",
	Short: "Check build, index and item files against their schemas",
	Long: `Validate checks data files against the embedded CUE schemas.

Without arguments every file in the catalog is checked. The file type is taken
from the path (builds/, items/, inventory/, index.json) unless --type is given.
Exits 1 when any file has errors.

EXAMPLES:

  gearfit validate
  gearfit validate builds/sorcerer/ball_lightning.json
  gearfit validate --type item drops.yaml`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		failed, err := runValidate(args)
		if err != nil {
			fail(err)
			return
		}
		if failed {
			exitFunc(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateType, "type", "t", "", "Force file type (build|index|item)")
}

// validateTarget is one file to validate with its detected type.
type validateTarget struct {
	display  string
	fileType discovery.FileType
	contents []byte
}

// runValidate reports whether any file failed validation.
func runValidate(args []string) (bool, error) {
	rc, err := setup()
	if err != nil {
		return false, err
	}
	cfg, log := rc.cfg, rc.log

	var forced discovery.FileType
	if validateType != "" {
		forced, err = discovery.ParseFileType(validateType)
		if err != nil {
			return false, err
		}
	}

	targets, err := collectValidateTargets(args, cfg.Catalog, forced, log)
	if err != nil {
		return false, err
	}
	if len(targets) == 0 {
		return false, fmt.Errorf("no files to validate")
	}

	validator := cue.NewValidator()
	if err := validator.LoadSchemas(); err != nil {
		return false, err
	}

	results := make([]output.FileResult, 0, len(targets))
	failed := false
	for _, t := range targets {
		errs, err := validator.ValidateFile(t.display, t.contents, t.fileType)
		if err != nil {
			return false, fmt.Errorf("error validating %s: %w", t.display, err)
		}
		if len(errs) > 0 {
			failed = true
		}
		results = append(results, output.FileResult{File: t.display, Type: t.fileType.String(), Errors: errs})
	}

	if err := outputters.NewOutputter(cfg, nil).FormatValidation(results, cfg.Format); err != nil {
		return false, fmt.Errorf("error formatting output: %w", err)
	}
	return failed, nil
}

// collectValidateTargets expands args into files. Without args the whole
// catalog is used. Files whose type cannot be detected are skipped with a warning.
func collectValidateTargets(args []string, catalogRoot string, forced discovery.FileType, log *slog.Logger) ([]validateTarget, error) {
	if len(args) == 0 {
		args = []string{catalogRoot}
	}

	var targets []validateTarget
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			files, err := discovery.NewFileDiscovery(arg, false).DiscoverBuildFiles("")
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				ft := f.Type
				if forced != discovery.FileTypeUnknown {
					ft = forced
				} else if detected, err := discovery.DetectFileType(f.Path, arg); err == nil {
					ft = detected
				}
				targets = append(targets, validateTarget{display: f.Path, fileType: ft, contents: f.Contents})
			}
			continue
		}

		absPath, err := discovery.ValidateFilePath(arg)
		if err != nil {
			log.Warn("Skipping file", slog.String("file", arg), slog.String("error", err.Error()))
			continue
		}
		ft := forced
		if ft == discovery.FileTypeUnknown {
			ft, err = discovery.DetectFileType(absPath, catalogRoot)
			if err != nil {
				log.Warn("Skipping file", slog.String("file", arg), slog.String("error", err.Error()))
				continue
			}
		}
		contents, err := os.ReadFile(absPath)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", arg, err)
		}
		targets = append(targets, validateTarget{display: arg, fileType: ft, contents: contents})
	}
	return targets, nil
}
