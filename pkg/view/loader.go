// Package view loads the table view definitions. A definition lists the base columns of a view, the
// sub-fields projected next to every event and where the rows are stored. Definitions are embedded
// YAML files, one per view, validated when loaded.
package view

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/nuptial-ops/wedding-manager/pkg/roster"
	"gopkg.in/yaml.v3"
)

const (
	Guests  = "guests"
	Vendors = "vendors"
)

//go:embed definitions/*.yaml
var definitions embed.FS

type definitionYaml struct {
	Name         string           `yaml:"name"`
	Storage      storageYaml      `yaml:"storage"`
	SearchFields []string         `yaml:"searchFields"`
	Categories   []categoryYaml   `yaml:"categories"`
	Columns      []columnYaml     `yaml:"columns"`
	EventFields  []eventFieldYaml `yaml:"eventFields"`
}

type storageYaml struct {
	Table           string `yaml:"table"`
	AttendanceTable string `yaml:"attendanceTable,omitempty"`
	RecordKey       string `yaml:"recordKey,omitempty"`
}

type categoryYaml struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
}

type columnYaml struct {
	ID       string      `yaml:"id"`
	Header   string      `yaml:"header"`
	Category string      `yaml:"category"`
	Type     string      `yaml:"type"`
	Editable bool        `yaml:"editable"`
	Nullable bool        `yaml:"nullable"`
	Lookup   *lookupYaml `yaml:"lookup,omitempty"`
}

type lookupYaml struct {
	Kind   string `yaml:"kind"`
	Source string `yaml:"source"`
}

type eventFieldYaml struct {
	Field     string `yaml:"field"`
	Label     string `yaml:"label"`
	Type      string `yaml:"type"`
	Transport bool   `yaml:"transport"`
	Editable  bool   `yaml:"editable"`
}

// Definitions holds the loaded view definitions by name.
type Definitions map[string]roster.Definition

func (d Definitions) Get(name string) (roster.Definition, error) {
	def, ok := d[name]
	if !ok {
		return roster.Definition{}, fmt.Errorf("view %q is not defined", name)
	}
	return def, nil
}

// Load parses every embedded definition.
func Load() (Definitions, error) {
	return LoadFS(definitions, "definitions")
}

// LoadFS parses every YAML file in dir of fsys.
func LoadFS(fsys fs.FS, dir string) (Definitions, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("error reading view directory %q: %v", dir, err)
	}

	result := make(Definitions)
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".yaml" {
			continue
		}

		file, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("error reading view %q: %v", entry.Name(), err)
		}

		def, err := Parse(file)
		if err != nil {
			return nil, fmt.Errorf("error parsing view %q: %v", entry.Name(), err)
		}
		if _, ok := result[def.Name]; ok {
			return nil, fmt.Errorf("view %q is defined more than once", def.Name)
		}
		result[def.Name] = def
	}

	return result, nil
}

// Parse reads and validates a single view definition.
func Parse(data []byte) (roster.Definition, error) {
	var in definitionYaml
	if err := yaml.Unmarshal(data, &in); err != nil {
		return roster.Definition{}, err
	}

	if err := validate(in); err != nil {
		return roster.Definition{}, err
	}

	def := roster.Definition{
		Name:         in.Name,
		SearchFields: in.SearchFields,
		Storage: roster.Storage{
			Table:           in.Storage.Table,
			AttendanceTable: in.Storage.AttendanceTable,
			RecordKey:       in.Storage.RecordKey,
		},
	}
	for _, c := range in.Categories {
		def.CategoryOrder = append(def.CategoryOrder, roster.Category{ID: c.ID, Label: c.Label})
	}
	for _, c := range in.Columns {
		column := roster.ColumnDescriptor{
			ID:        c.ID,
			Header:    c.Header,
			Category:  c.Category,
			FieldPath: roster.FieldPath{Field: c.ID},
			ValueType: roster.ValueType(c.Type),
			Editable:  c.Editable,
			Nullable:  c.Nullable,
		}
		if c.Lookup != nil {
			column.Lookup = &roster.Lookup{Kind: c.Lookup.Kind, Source: c.Lookup.Source}
		}
		def.BaseColumns = append(def.BaseColumns, column)
	}
	for _, f := range in.EventFields {
		def.EventFields = append(def.EventFields, roster.EventField{
			Field:     f.Field,
			Label:     f.Label,
			ValueType: roster.ValueType(f.Type),
			Transport: f.Transport,
			Editable:  f.Editable,
		})
	}
	return def, nil
}

func validate(in definitionYaml) error {
	if in.Name == "" {
		return errors.New("name is required")
	}
	if in.Storage.Table == "" {
		return errors.New("storage table is required")
	}

	var errs []error
	columns := make(map[string]columnYaml, len(in.Columns))
	for _, c := range in.Columns {
		if c.ID == "" {
			errs = append(errs, errors.New("column without id"))
			continue
		}
		if strings.HasPrefix(c.ID, "event_") {
			errs = append(errs, fmt.Errorf("column %q: the event_ prefix is reserved for event columns", c.ID))
		}
		if _, ok := columns[c.ID]; ok {
			errs = append(errs, fmt.Errorf("column %q is defined more than once", c.ID))
		}
		columns[c.ID] = c
		if !roster.ValueType(c.Type).Valid() {
			errs = append(errs, fmt.Errorf("column %q: unknown type %q", c.ID, c.Type))
		}
		if (c.Type == string(roster.TypeDisplay)) != (c.Lookup != nil) {
			errs = append(errs, fmt.Errorf("column %q: display columns and only display columns need a lookup", c.ID))
		}
		if c.Type == string(roster.TypeDisplay) && c.Editable {
			errs = append(errs, fmt.Errorf("column %q: display columns can't be editable", c.ID))
		}
	}

	for _, c := range in.Columns {
		if c.Lookup == nil {
			continue
		}
		source, ok := columns[c.Lookup.Source]
		if !ok {
			errs = append(errs, fmt.Errorf("column %q: lookup source %q is not a column", c.ID, c.Lookup.Source))
		} else if source.Lookup != nil {
			errs = append(errs, fmt.Errorf("column %q: lookup source %q is itself a display column", c.ID, c.Lookup.Source))
		}
		if c.Lookup.Kind == "" {
			errs = append(errs, fmt.Errorf("column %q: lookup kind is required", c.ID))
		}
	}

	for _, field := range in.SearchFields {
		c, ok := columns[field]
		if !ok {
			errs = append(errs, fmt.Errorf("search field %q is not a column", field))
		} else if c.Type != string(roster.TypeString) {
			errs = append(errs, fmt.Errorf("search field %q is not a string column", field))
		}
	}

	var categories []string
	for _, c := range in.Categories {
		if slices.Contains(categories, c.ID) {
			errs = append(errs, fmt.Errorf("category %q is defined more than once", c.ID))
		}
		categories = append(categories, c.ID)
	}

	if len(in.EventFields) > 0 && (in.Storage.AttendanceTable == "" || in.Storage.RecordKey == "") {
		errs = append(errs, errors.New("event fields need an attendance table and a record key"))
	}
	var fields []string
	for _, f := range in.EventFields {
		if f.Field != roster.FieldShuttleToEvent && f.Field != roster.FieldShuttleFromEvent {
			errs = append(errs, fmt.Errorf("event field %q is not an attendance field", f.Field))
		}
		if slices.Contains(fields, f.Field) {
			errs = append(errs, fmt.Errorf("event field %q is defined more than once", f.Field))
		}
		fields = append(fields, f.Field)
		if !roster.ValueType(f.Type).Valid() {
			errs = append(errs, fmt.Errorf("event field %q: unknown type %q", f.Field, f.Type))
		}
	}

	return errors.Join(errs...)
}
