// Package importer builds a schema.Model from catalog row-sets.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/tordrt/erdviewer/internal/catalog"
	"github.com/tordrt/erdviewer/internal/schema"
)

var (
	// ErrUnknownTable is returned when a row names a table the catalog never listed
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned when a row names a column the catalog never listed
	ErrUnknownColumn = errors.New("unknown column")
	// ErrShortRow is returned when a row has fewer values than its layout needs
	ErrShortRow = errors.New("catalog row too short")
)

// Logger receives import diagnostics
type Logger interface {
	Verbose(format string, args ...interface{})
	Warn(format string, args ...interface{})
}

// Importer loads metadata from a catalog into a schema model
type Importer struct {
	catalog catalog.Catalog
	logger  Logger
}

// New creates a new importer
func New(c catalog.Catalog, logger Logger) *Importer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Importer{catalog: c, logger: logger}
}

// Import reads tables, columns, unique keys, primary keys and foreign keys, in
// that order. Each phase relies on the entities created by the previous one.
func (i *Importer) Import(ctx context.Context) (*schema.Model, error) {
	m := schema.NewModel()

	phases := []struct {
		name  string
		query func(context.Context) ([]catalog.Row, error)
		load  func(*schema.Model, []catalog.Row) error
	}{
		{"tables", i.catalog.Tables, i.loadTables},
		{"columns", i.catalog.Columns, i.loadColumns},
		{"unique keys", i.catalog.UniqueKeys, i.loadUniqueKeys},
		{"primary keys", i.catalog.PrimaryKeys, i.loadPrimaryKeys},
		{"foreign keys", i.catalog.ImportedKeys, i.loadForeignKeys},
	}

	for _, p := range phases {
		rows, err := p.query(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", p.name, err)
		}
		i.logger.Verbose("loading %d %s rows", len(rows), p.name)
		if err := p.load(m, rows); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", p.name, err)
		}
	}

	return m, nil
}

func (i *Importer) loadTables(m *schema.Model, rows []catalog.Row) error {
	for _, row := range rows {
		if !row.Has(catalog.TableComment) {
			return fmt.Errorf("%w: table row has %d values", ErrShortRow, len(row))
		}
		m.AddTable(row.Text(catalog.TableName), row.Text(catalog.TableComment))
	}
	return nil
}

func (i *Importer) loadColumns(m *schema.Model, rows []catalog.Row) error {
	for _, row := range rows {
		if !row.Has(catalog.ColumnIdentity) {
			return fmt.Errorf("%w: column row has %d values", ErrShortRow, len(row))
		}

		table, err := lookupTable(m, row.Text(catalog.ColumnTable))
		if err != nil {
			return err
		}

		name := row.Text(catalog.ColumnName)
		d, err := catalog.ParseTypeDescriptor(row.Text(catalog.ColumnDataType))
		if err != nil {
			return fmt.Errorf("column %s.%s: %w", table.Name, name, err)
		}

		column := table.AddColumn(name, row.Text(catalog.ColumnComment))
		column.Identity = row.Text(catalog.ColumnIdentity) != ""
		column.DataType = NormalizeType(d)
		column.Nullable = d.Nullable
	}
	return nil
}

func (i *Importer) loadUniqueKeys(m *schema.Model, rows []catalog.Row) error {
	for _, row := range rows {
		if !row.Has(catalog.KeyConstraint) {
			return fmt.Errorf("%w: unique key row has %d values", ErrShortRow, len(row))
		}

		table, column, err := lookupColumn(m, row.Text(catalog.KeyTable), row.Text(catalog.KeyColumn))
		if err != nil {
			return err
		}

		table.Uniques.Add(row.Text(catalog.KeyConstraint), column)
		column.IsUnique = true
	}
	return nil
}

func (i *Importer) loadPrimaryKeys(m *schema.Model, rows []catalog.Row) error {
	for _, row := range rows {
		if !row.Has(catalog.KeySequence) {
			return fmt.Errorf("%w: primary key row has %d values", ErrShortRow, len(row))
		}

		table, column, err := lookupColumn(m, row.Text(catalog.KeyTable), row.Text(catalog.KeyColumn))
		if err != nil {
			return err
		}

		pos, err := row.Int(catalog.KeySequence)
		if err != nil {
			return fmt.Errorf("primary key %s.%s: %w", table.Name, column.Name, err)
		}
		table.AddPrimaryKey(column, pos)
	}
	return nil
}

func (i *Importer) loadForeignKeys(m *schema.Model, rows []catalog.Row) error {
	for _, row := range rows {
		if !row.Has(catalog.FKConstraint) {
			return fmt.Errorf("%w: imported key row has %d values", ErrShortRow, len(row))
		}

		// The parent of a cross-schema key is not part of this model, so the
		// schema check comes before any lookup.
		parentSchema, childSchema := row.Text(catalog.ParentSchema), row.Text(catalog.ChildSchema)
		if parentSchema != childSchema {
			i.logger.Warn("relationship across schemas skipped: %s.%s.%s -> %s.%s.%s",
				childSchema, row.Text(catalog.ChildTable), row.Text(catalog.ChildColumn),
				parentSchema, row.Text(catalog.ParentTable), row.Text(catalog.ParentColumn))
			continue
		}

		_, pkColumn, err := lookupColumn(m, row.Text(catalog.ParentTable), row.Text(catalog.ParentColumn))
		if err != nil {
			return err
		}
		fkTable, fkColumn, err := lookupColumn(m, row.Text(catalog.ChildTable), row.Text(catalog.ChildColumn))
		if err != nil {
			return err
		}

		fkTable.FKs.Add(row.Text(catalog.FKConstraint), fkColumn)
		ref := pkColumn.Ref()
		fkColumn.FKOf = &ref
	}
	return nil
}

func lookupTable(m *schema.Model, name string) (*schema.Table, error) {
	t, ok := m.Table(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return t, nil
}

func lookupColumn(m *schema.Model, tableName, columnName string) (*schema.Table, *schema.Column, error) {
	t, err := lookupTable(m, tableName)
	if err != nil {
		return nil, nil, err
	}
	c, ok := t.Column(columnName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, tableName, columnName)
	}
	return t, c, nil
}

type nopLogger struct{}

func (nopLogger) Verbose(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})    {}
