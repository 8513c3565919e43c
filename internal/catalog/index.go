package catalog

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/gearfit/internal/discovery"
)

// Index is a per-class build listing. It lets the catalog be browsed without
// decoding every build file.
type Index struct {
	Class  string       `json:"class" yaml:"class"`
	Builds []IndexEntry `json:"builds" yaml:"builds"`
	// Dir is the index's directory relative to the catalog root.
	Dir string `json:"-" yaml:"-"`
}

// IndexEntry describes one build listed in an index.
type IndexEntry struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Tier string `json:"tier,omitempty" yaml:"tier,omitempty"`
	File string `json:"file" yaml:"file"`
}

// DecodeIndex parses an index file.
func DecodeIndex(data []byte) (Index, error) {
	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return Index{}, err
	}
	for i, e := range idx.Builds {
		if e.ID == "" {
			return Index{}, fmt.Errorf("entry %d: id is required", i+1)
		}
		if e.File == "" {
			idx.Builds[i].File = e.ID + ".json"
		}
	}
	return idx, nil
}

// Entry is one line of a catalog listing.
type Entry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Class    string   `json:"class"`
	Tier     string   `json:"tier,omitempty"`
	File     string   `json:"file"`
	Profiles []string `json:"profiles,omitempty"`
}

// List returns the catalog's builds. When index files exist they are used
// as-is and build files are not decoded; profile names are then unknown.
// Entries are sorted by class, then id.
func List(root string, opts Options) ([]Entry, error) {
	files, err := discovery.NewFileDiscovery(root, opts.FollowSymlinks).DiscoverBuildFiles(opts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("error listing catalog %s: %w", root, err)
	}

	classes := classFilter(opts.Classes)
	var entries []Entry
	for _, f := range files {
		if f.Type != discovery.FileTypeIndex {
			continue
		}
		idx, err := DecodeIndex(f.Contents)
		if err != nil {
			return nil, fmt.Errorf("invalid index %s: %w", f.RelPath, err)
		}
		if len(classes) > 0 && !classes[strings.ToLower(idx.Class)] {
			continue
		}
		for _, e := range idx.Builds {
			entries = append(entries, Entry{
				ID:    e.ID,
				Name:  e.Name,
				Class: idx.Class,
				Tier:  e.Tier,
				File:  path.Join(path.Dir(f.RelPath), e.File),
			})
		}
	}

	if len(entries) == 0 {
		c, err := Load(root, opts)
		if err != nil {
			return nil, err
		}
		for _, b := range c.Builds {
			entries = append(entries, Entry{
				ID:       b.ID,
				Name:     b.Name,
				Class:    b.Class,
				Tier:     b.Tier,
				File:     c.Sources[b.ID],
				Profiles: b.ProfileOrder,
			})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Class != entries[j].Class {
			return entries[i].Class < entries[j].Class
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
