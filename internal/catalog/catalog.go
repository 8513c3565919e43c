// Package catalog discovers, decodes and validates build files.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/dotcommander/gearfit/internal/discovery"
	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
	"github.com/dotcommander/gearfit/internal/validation"
)

// ErrNoBuilds is returned when a catalog directory yields no usable build.
var ErrNoBuilds = errors.New("no builds found")

// Options controls catalog loading.
type Options struct {
	// Pattern restricts build files to relative paths matching this glob.
	Pattern string
	// Classes keeps only builds of these classes (case-insensitive). Empty keeps all.
	Classes []string
	// Strict fails on the first invalid build file instead of skipping it.
	Strict         bool
	FollowSymlinks bool
	Logger         *slog.Logger
}

// Catalog is the set of builds loaded from one directory.
type Catalog struct {
	Root    string
	Builds  []types.Build
	Indexes []Index
	// Sources maps build id to the relative path it was loaded from.
	Sources map[string]string
}

// Load discovers and decodes every build under root. Builds are returned
// sorted by id. Invalid files are logged and skipped unless opts.Strict is set.
func Load(root string, opts Options) (*Catalog, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	files, err := discovery.NewFileDiscovery(root, opts.FollowSymlinks).DiscoverBuildFiles(opts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("error loading catalog %s: %w", root, err)
	}

	c := &Catalog{Root: root, Sources: make(map[string]string)}
	classes := classFilter(opts.Classes)

	for _, f := range files {
		if f.Type == discovery.FileTypeIndex {
			idx, err := DecodeIndex(f.Contents)
			if err != nil {
				if opts.Strict {
					return nil, fmt.Errorf("invalid index %s: %w", f.RelPath, err)
				}
				logger.Warn("Skipping invalid index", slog.String("file", f.RelPath), slog.String("error", err.Error()))
				continue
			}
			idx.Dir = path.Dir(f.RelPath)
			c.Indexes = append(c.Indexes, idx)
			continue
		}

		b, err := decodeAndValidate(f.Contents)
		if err == nil {
			if prev, dup := c.Sources[b.ID]; dup {
				err = fmt.Errorf("duplicate build id %q (also in %s)", b.ID, prev)
			}
		}
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("invalid build %s: %w", f.RelPath, err)
			}
			logger.Warn("Skipping invalid build", slog.String("file", f.RelPath), slog.String("error", err.Error()))
			continue
		}

		if len(classes) > 0 && !classes[strings.ToLower(b.Class)] {
			continue
		}
		c.Sources[b.ID] = f.RelPath
		c.Builds = append(c.Builds, b)
	}

	sort.Slice(c.Builds, func(i, j int) bool { return c.Builds[i].ID < c.Builds[j].ID })
	logger.Debug("Loaded catalog",
		slog.String("root", root),
		slog.Int("builds", len(c.Builds)),
		slog.Int("indexes", len(c.Indexes)),
	)

	if len(c.Builds) == 0 {
		return c, ErrNoBuilds
	}
	return c, nil
}

func decodeAndValidate(data []byte) (types.Build, error) {
	b, err := DecodeBuild(data)
	if err != nil {
		return types.Build{}, err
	}
	if err := validation.Struct(b); err != nil {
		return types.Build{}, err
	}
	if len(b.Profiles) == 0 {
		return types.Build{}, fmt.Errorf("build %q has no profiles", b.ID)
	}
	for _, name := range b.ProfileOrder {
		if p, ok := b.Profiles[name]; ok && len(p.Slots) == 0 {
			return types.Build{}, fmt.Errorf("profile %q of build %q has no slots", name, b.ID)
		}
	}
	return b, nil
}

func classFilter(classes []string) map[string]bool {
	if len(classes) == 0 {
		return nil
	}
	m := make(map[string]bool, len(classes))
	for _, c := range classes {
		m[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return m
}

// Find returns the build with the given id.
func (c *Catalog) Find(id string) (types.Build, bool) {
	i := sort.Search(len(c.Builds), func(i int) bool { return c.Builds[i].ID >= id })
	if i < len(c.Builds) && c.Builds[i].ID == id {
		return c.Builds[i], true
	}
	return types.Build{}, false
}

// Classes returns the distinct build classes in lexical order.
func (c *Catalog) Classes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range c.Builds {
		if b.Class != "" && !seen[b.Class] {
			seen[b.Class] = true
			out = append(out, b.Class)
		}
	}
	sort.Strings(out)
	return out
}

// FilterProfiles keeps only the named profiles (case-insensitive) of each
// build, preserving profile order. Builds left without profiles are dropped.
// An empty names list returns builds unchanged.
func FilterProfiles(builds []types.Build, names []string) []types.Build {
	if len(names) == 0 {
		return builds
	}

	var out []types.Build
	for _, b := range builds {
		var order []string
		profiles := make(map[string]types.BuildProfile)
		for _, name := range b.ProfileOrder {
			p, ok := b.Profiles[name]
			if !ok || scoring.IndexName(names, name) < 0 {
				continue
			}
			order = append(order, name)
			profiles[name] = p
		}
		if len(order) == 0 {
			continue
		}
		b.ProfileOrder = order
		b.Profiles = profiles
		out = append(out, b)
	}
	return out
}

// Profile returns the named profile of b, matching case-insensitively. An
// empty name selects the first profile in order.
func Profile(b types.Build, name string) (string, types.BuildProfile, bool) {
	if name == "" {
		if len(b.ProfileOrder) == 0 {
			return "", types.BuildProfile{}, false
		}
		name = b.ProfileOrder[0]
	}
	if p, ok := b.Profiles[name]; ok {
		return name, p, true
	}
	for _, key := range b.ProfileOrder {
		if p, ok := b.Profiles[key]; ok && scoring.EqualName(key, name) {
			return key, p, true
		}
	}
	return "", types.BuildProfile{}, false
}
