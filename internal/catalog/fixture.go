package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is a file-backed catalog: the five row-sets written out with named
// fields instead of positions. Useful for rendering a schema offline.
//
//	database: DEMO
//	schema: PUBLIC
//	tables:
//	  - name: USERS
//	columns:
//	  - table: USERS
//	    name: ID
//	    type: {type: FIXED, precision: 38, scale: 0, nullable: false}
//	primary_keys:
//	  - {table: USERS, column: ID, position: 1}
type Fixture struct {
	Database    string            `yaml:"database"`
	Schema      string            `yaml:"schema"`
	TableSet    []FixtureTable    `yaml:"tables"`
	ColumnSet   []FixtureColumn   `yaml:"columns"`
	UniqueSet   []FixtureKey      `yaml:"unique_keys"`
	PrimarySet  []FixtureKey      `yaml:"primary_keys"`
	ImportedSet []FixtureImported `yaml:"imported_keys"`
}

// FixtureTable is one table entry
type FixtureTable struct {
	Name    string `yaml:"name"`
	Comment string `yaml:"comment"`
}

// FixtureColumn is one column entry
type FixtureColumn struct {
	Table    string         `yaml:"table"`
	Name     string         `yaml:"name"`
	Type     TypeDescriptor `yaml:"type"`
	Comment  string         `yaml:"comment"`
	Identity bool           `yaml:"identity"`
}

// FixtureKey is one unique or primary key member
type FixtureKey struct {
	Schema     string `yaml:"schema"`
	Table      string `yaml:"table"`
	Column     string `yaml:"column"`
	Constraint string `yaml:"constraint"`
	Position   int    `yaml:"position"`
}

// FixtureImported is one foreign key member
type FixtureImported struct {
	ParentSchema string `yaml:"parent_schema"`
	ParentTable  string `yaml:"parent_table"`
	ParentColumn string `yaml:"parent_column"`
	ChildSchema  string `yaml:"child_schema"`
	ChildTable   string `yaml:"child_table"`
	ChildColumn  string `yaml:"child_column"`
	Constraint   string `yaml:"constraint"`
}

// LoadFixture reads a fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return &f, nil
}

func (f *Fixture) schemaOr(name string) string {
	if name != "" {
		return name
	}
	return f.Schema
}

// Tables implements Catalog
func (f *Fixture) Tables(_ context.Context) ([]Row, error) {
	rows := make([]Row, 0, len(f.TableSet))
	for _, t := range f.TableSet {
		rows = append(rows, TableRow(t.Name, t.Comment))
	}
	return rows, nil
}

// Columns implements Catalog
func (f *Fixture) Columns(_ context.Context) ([]Row, error) {
	rows := make([]Row, 0, len(f.ColumnSet))
	for _, c := range f.ColumnSet {
		identity := ""
		if c.Identity {
			identity = "IDENTITY START 1 INCREMENT 1"
		}
		rows = append(rows, ColumnRow(c.Table, c.Name, c.Type, c.Comment, identity))
	}
	return rows, nil
}

// UniqueKeys implements Catalog
func (f *Fixture) UniqueKeys(_ context.Context) ([]Row, error) {
	rows := make([]Row, 0, len(f.UniqueSet))
	for _, k := range f.UniqueSet {
		rows = append(rows, UniqueKeyRow(f.schemaOr(k.Schema), k.Table, k.Column, k.Constraint))
	}
	return rows, nil
}

// PrimaryKeys implements Catalog
func (f *Fixture) PrimaryKeys(_ context.Context) ([]Row, error) {
	rows := make([]Row, 0, len(f.PrimarySet))
	for _, k := range f.PrimarySet {
		pos := k.Position
		if pos == 0 {
			pos = 1
		}
		rows = append(rows, PrimaryKeyRow(f.schemaOr(k.Schema), k.Table, k.Column, pos))
	}
	return rows, nil
}

// ImportedKeys implements Catalog
func (f *Fixture) ImportedKeys(_ context.Context) ([]Row, error) {
	rows := make([]Row, 0, len(f.ImportedSet))
	for _, k := range f.ImportedSet {
		rows = append(rows, ImportedKeyRow(
			f.schemaOr(k.ParentSchema), k.ParentTable, k.ParentColumn,
			f.schemaOr(k.ChildSchema), k.ChildTable, k.ChildColumn,
			k.Constraint,
		))
	}
	return rows, nil
}
