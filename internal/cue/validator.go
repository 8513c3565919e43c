package cue

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/dotcommander/gearfit/internal/discovery"
)

//go:embed schemas/*.cue
var schemaFS embed.FS

// Schema names, one per embedded file.
const (
	SchemaBuild = "build"
	SchemaItem  = "item"
	SchemaIndex = "index"
)

// ValidationError represents a validation error
type ValidationError struct {
	File     string
	Path     string // location inside the document, e.g. "profiles.endgame.slots.helm"
	Message  string
	Severity string // error, warning
}

func (e ValidationError) String() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Validator handles CUE validation
type Validator struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}
}

// LoadSchemas compiles every embedded schema file.
func (v *Validator) LoadSchemas() error {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return fmt.Errorf("could not read embedded schemas: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".cue" {
			continue
		}
		content, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return fmt.Errorf("could not read schema %s: %w", entry.Name(), err)
		}

		inst := v.ctx.CompileBytes(content, cue.Filename(entry.Name()))
		if err := inst.Err(); err != nil {
			return fmt.Errorf("error compiling schema %s: %w", entry.Name(), err)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".cue")] = inst.Value()
	}

	if len(v.schemas) == 0 {
		return fmt.Errorf("no CUE schemas loaded")
	}
	return nil
}

// ValidateBuild validates build data against the build schema
func (v *Validator) ValidateBuild(data map[string]any) ([]ValidationError, error) {
	return v.validate(SchemaBuild, data)
}

// ValidateItem validates one item record against the item schema
func (v *Validator) ValidateItem(data map[string]any) ([]ValidationError, error) {
	return v.validate(SchemaItem, data)
}

// ValidateIndex validates index data against the index schema
func (v *Validator) ValidateIndex(data map[string]any) ([]ValidationError, error) {
	return v.validate(SchemaIndex, data)
}

func (v *Validator) validate(schemaName string, data any) ([]ValidationError, error) {
	schema, ok := v.schemas[schemaName]
	if !ok {
		return nil, fmt.Errorf("schema %q not loaded", schemaName)
	}

	defPath := cue.ParsePath("#" + strings.ToUpper(schemaName[:1]) + schemaName[1:])
	def := schema.LookupPath(defPath)
	if !def.Exists() {
		return nil, fmt.Errorf("schema %q has no %s definition", schemaName, defPath)
	}

	dataValue := v.ctx.Encode(data)
	if err := dataValue.Err(); err != nil {
		return nil, fmt.Errorf("error encoding data: %w", err)
	}

	unified := def.Unify(dataValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return extractErrors(err), nil
	}
	return nil, nil
}

// extractErrors flattens a CUE error list into one ValidationError per failure.
func extractErrors(err error) []ValidationError {
	var out []ValidationError
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		parts := e.Path()
		if len(parts) > 0 && strings.HasPrefix(parts[0], "#") {
			parts = parts[1:]
		}
		p := strings.Join(parts, ".")
		key := p + "\x00" + msg
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ValidationError{Path: p, Message: msg, Severity: "error"})
	}
	return out
}

// ValidateFile validates a JSON or YAML document according to its file type.
// Item files may hold one item, a list, an "items" list, or a slot-keyed object.
func (v *Validator) ValidateFile(file string, content []byte, fileType discovery.FileType) ([]ValidationError, error) {
	var doc any
	if err := yamlv3.Unmarshal(content, &doc); err != nil {
		return []ValidationError{{File: file, Message: fmt.Sprintf("error parsing file: %v", err), Severity: "error"}}, nil
	}

	var errs []ValidationError
	var err error
	switch fileType {
	case discovery.FileTypeBuild:
		errs, err = v.validateObject(SchemaBuild, doc)
	case discovery.FileTypeIndex:
		errs, err = v.validateObject(SchemaIndex, doc)
	case discovery.FileTypeItem:
		errs, err = v.validateItems(doc)
	default:
		return nil, fmt.Errorf("unknown file type: %s", fileType)
	}
	if err != nil {
		return nil, err
	}

	for i := range errs {
		errs[i].File = file
	}
	return errs, nil
}

func (v *Validator) validateObject(schemaName string, doc any) ([]ValidationError, error) {
	m, ok := doc.(map[string]any)
	if !ok {
		return []ValidationError{{Message: fmt.Sprintf("expected an object, got %s", describe(doc)), Severity: "error"}}, nil
	}
	return v.validate(schemaName, m)
}

func (v *Validator) validateItems(doc any) ([]ValidationError, error) {
	type entry struct {
		prefix string
		value  any
	}
	var entries []entry

	switch d := doc.(type) {
	case []any:
		for i, item := range d {
			entries = append(entries, entry{fmt.Sprintf("[%d]", i), item})
		}
	case map[string]any:
		if list, ok := d["items"].([]any); ok {
			for i, item := range list {
				entries = append(entries, entry{fmt.Sprintf("items[%d]", i), item})
			}
			break
		}
		if looksLikeItem(d) {
			entries = append(entries, entry{"", d})
			break
		}
		for _, slot := range sortedKeys(d) {
			switch group := d[slot].(type) {
			case []any:
				for i, item := range group {
					entries = append(entries, entry{fmt.Sprintf("%s[%d]", slot, i), item})
				}
			default:
				entries = append(entries, entry{slot, group})
			}
		}
	default:
		return []ValidationError{{Message: fmt.Sprintf("expected an item, a list or an object, got %s", describe(doc)), Severity: "error"}}, nil
	}

	var all []ValidationError
	for _, e := range entries {
		errs, err := v.validateObject(SchemaItem, e.value)
		if err != nil {
			return nil, err
		}
		for _, ve := range errs {
			ve.Path = joinPath(e.prefix, ve.Path)
			all = append(all, ve)
		}
	}
	return all, nil
}

func looksLikeItem(m map[string]any) bool {
	for _, k := range []string{"name", "slot", "item_power", "is_unique", "affixes"} {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(prefix, p string) string {
	switch {
	case prefix == "":
		return p
	case p == "":
		return prefix
	default:
		return prefix + "." + p
	}
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "nothing"
	case []any:
		return "a list"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
