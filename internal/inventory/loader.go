// Package inventory loads a user's parsed items and reconciles item slots with
// build slot keys.
package inventory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dotcommander/gearfit/internal/scoring"
	"github.com/dotcommander/gearfit/internal/types"
	"github.com/dotcommander/gearfit/internal/validation"
)

// ErrNoItems is returned when no usable item was loaded.
var ErrNoItems = errors.New("no items found")

// Options controls how item files are loaded.
type Options struct {
	// Strict fails on the first invalid item instead of skipping it.
	Strict bool
	Logger *slog.Logger
}

// Loader reads item files into a Gear.
type Loader struct {
	strict bool
	logger *slog.Logger
}

// NewLoader creates a new Loader.
func NewLoader(opts Options) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{strict: opts.Strict, logger: logger}
}

// LoadFiles decodes every file and groups the items by slot.
func (l *Loader) LoadFiles(paths []string) (types.Gear, error) {
	var all []types.Item
	for _, path := range paths {
		items, err := l.LoadFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	if len(all) == 0 {
		return nil, ErrNoItems
	}
	return NewGear(all), nil
}

// LoadFile decodes the items in one JSON or YAML file.
func (l *Loader) LoadFile(path string) ([]types.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading item file %s: %w", path, err)
	}

	raw, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("error decoding item file %s: %w", path, err)
	}

	items := make([]types.Item, 0, len(raw))
	for i, rawItem := range raw {
		item, err := Normalize(rawItem)
		if err == nil {
			err = validation.Struct(item)
		}
		if err != nil {
			if l.strict {
				return nil, fmt.Errorf("invalid item %d in %s: %w", i+1, path, err)
			}
			l.logger.Warn("Skipping invalid item",
				slog.String("file", path),
				slog.Int("index", i+1),
				slog.String("name", item.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		items = append(items, item)
	}

	l.logger.Debug("Loaded items", slog.String("file", path), slog.Int("count", len(items)))
	return items, nil
}

// Decode parses item records. The document may hold a single item, a list of
// items, an object with an "items" list, or an object keyed by slot whose
// values are an item or a list of items. JSON input is accepted as YAML.
func Decode(data []byte) ([]types.Item, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var items []types.Item
		if err := root.Decode(&items); err != nil {
			return nil, err
		}
		return items, nil

	case yaml.MappingNode:
		if list := mappingValue(root, "items"); list != nil && list.Kind == yaml.SequenceNode {
			var items []types.Item
			if err := list.Decode(&items); err != nil {
				return nil, err
			}
			return items, nil
		}
		if isSlotKeyed(root) {
			return decodeSlotKeyed(root)
		}
		var item types.Item
		if err := root.Decode(&item); err != nil {
			return nil, err
		}
		return []types.Item{item}, nil

	default:
		return nil, fmt.Errorf("unexpected %s at top level", kindName(root.Kind))
	}
}

// isSlotKeyed reports whether every key of m names a slot and every value is
// an item or a list of items.
func isSlotKeyed(m *yaml.Node) bool {
	if len(m.Content) == 0 {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if _, ok := NormalizeSlot(m.Content[i].Value); !ok {
			return false
		}
		if v := m.Content[i+1]; v.Kind != yaml.MappingNode && v.Kind != yaml.SequenceNode {
			return false
		}
	}
	return true
}

func decodeSlotKeyed(m *yaml.Node) ([]types.Item, error) {
	var items []types.Item
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i].Value, m.Content[i+1]

		var group []types.Item
		if value.Kind == yaml.SequenceNode {
			if err := value.Decode(&group); err != nil {
				return nil, fmt.Errorf("slot %s: %w", key, err)
			}
		} else {
			var item types.Item
			if err := value.Decode(&item); err != nil {
				return nil, fmt.Errorf("slot %s: %w", key, err)
			}
			group = []types.Item{item}
		}

		for _, item := range group {
			if item.Slot == "" {
				item.Slot = types.Slot(key)
			}
			items = append(items, item)
		}
	}
	return items, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

// Normalize canonicalises an item's slot and trims its names. A unique item
// without a unique id gets one derived from its name.
func Normalize(item types.Item) (types.Item, error) {
	if item.Slot == "" {
		return item, errors.New("slot is required")
	}
	slot, ok := NormalizeSlot(string(item.Slot))
	if !ok {
		return item, fmt.Errorf("unknown slot %q", item.Slot)
	}
	item.Slot = slot

	item.Name = strings.TrimSpace(item.Name)
	item.UniqueID = strings.TrimSpace(item.UniqueID)
	if item.IsUnique && item.UniqueID == "" {
		item.UniqueID = scoring.NormalizeName(item.Name)
	}
	return item, nil
}

// NewGear groups items by slot, keeping input order within a slot.
func NewGear(items []types.Item) types.Gear {
	gear := make(types.Gear)
	for _, item := range items {
		gear[item.Slot] = append(gear[item.Slot], item)
	}
	return gear
}
