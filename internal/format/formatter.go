package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/gearfit/internal/catalog"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
)

// Formatter formats build files canonically.
type Formatter interface {
	// Format takes raw file content and returns formatted content.
	// Returns original content and error if formatting fails.
	Format(content string) (string, error)
}

// NewBuildFormatter returns the formatter for a build file, chosen by extension.
func NewBuildFormatter(filename string) Formatter {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return &YAMLFormatter{}
	default:
		return &JSONFormatter{}
	}
}

// JSONFormatter writes builds as two-space indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(content string) (string, error) {
	b, err := catalog.DecodeBuild([]byte(content))
	if err != nil {
		return content, err
	}

	out, err := json.MarshalIndent(Canonicalize(b), "", "  ")
	if err != nil {
		return content, err
	}
	return string(out) + "\n", nil
}

// YAMLFormatter writes builds as two-space indented YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) Format(content string) (string, error) {
	b, err := catalog.DecodeBuild([]byte(content))
	if err != nil {
		return content, err
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Canonicalize(b)); err != nil {
		return content, err
	}
	if err := enc.Close(); err != nil {
		return content, err
	}
	return buf.String(), nil
}

// Canonicalize returns b in canonical form:
//   - legacy "gear" builds are written with profiles
//   - uniques, aspects, affixes and tempers use normalized names, first occurrence kept
//   - an affix list where every weight is zero gets default weights max(10-2i, 3)
//   - profile names live only in the profiles map keys
func Canonicalize(b types.Build) types.Build {
	out := b
	out.Tags = dedupe(b.Tags, strings.TrimSpace)
	out.Profiles = make(map[string]types.BuildProfile, len(b.Profiles))
	for name, profile := range b.Profiles {
		slots := make(map[types.Slot]types.SlotRequirements, len(profile.Slots))
		for slot, req := range profile.Slots {
			slots[slot] = canonicalRequirements(slot, req)
		}
		out.Profiles[name] = types.BuildProfile{Slots: slots}
	}
	return out
}

func canonicalRequirements(slot types.Slot, req types.SlotRequirements) types.SlotRequirements {
	return types.SlotRequirements{
		Slot:            slot,
		PriorityUniques: dedupe(req.PriorityUniques, scoring.NormalizeName),
		PriorityAspects: dedupe(req.PriorityAspects, scoring.NormalizeName),
		PriorityAffixes: canonicalAffixes(req.PriorityAffixes),
		RequiredTempers: dedupe(req.RequiredTempers, scoring.NormalizeName),
	}
}

func canonicalAffixes(affixes []types.AffixWeight) []types.AffixWeight {
	if len(affixes) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(affixes))
	out := make([]types.AffixWeight, 0, len(affixes))
	weighted := false
	for _, a := range affixes {
		name := scoring.NormalizeName(a.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if a.Weight != 0 {
			weighted = true
		}
		out = append(out, types.AffixWeight{Name: name, Weight: a.Weight})
	}

	if !weighted {
		for i := range out {
			out[i].Weight = DefaultAffixWeight(i)
		}
	}
	return out
}

// DefaultAffixWeight is the weight given to the i-th affix of an unweighted list.
func DefaultAffixWeight(i int) int {
	return max(10-2*i, 3)
}

// dedupe applies norm to every value and drops empty results and repeats.
func dedupe(values []string, norm func(string) string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := norm(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Diff computes a line-oriented diff between original and formatted content.
// Returns empty string if contents are identical.
func Diff(original, formatted, filename string) string {
	if original == formatted {
		return ""
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n", filename)
	fmt.Fprintf(&buf, "+++ %s (formatted)\n", filename)

	origLines := strings.Split(original, "\n")
	fmtLines := strings.Split(formatted, "\n")

	for i := 0; i < max(len(origLines), len(fmtLines)); i++ {
		var origLine, fmtLine string
		if i < len(origLines) {
			origLine = origLines[i]
		}
		if i < len(fmtLines) {
			fmtLine = fmtLines[i]
		}
		if origLine == fmtLine {
			continue
		}

		fmt.Fprintf(&buf, "@@ %d @@\n", i+1)
		if origLine != "" {
			fmt.Fprintf(&buf, "- %s\n", origLine)
		}
		if fmtLine != "" {
			fmt.Fprintf(&buf, "+ %s\n", fmtLine)
		}
	}

	return buf.String()
}
