// Package catalog defines the row-set contract between catalog drivers and the
// metadata importer.
//
// Each query returns rows shaped like the result sets of Snowflake's SHOW
// commands: a fixed-position tuple of opaque values. Drivers for other engines
// build rows with the constructors below so the importer only ever reads one
// layout.
package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Positions within SHOW TABLES rows
const (
	TableName    = 1
	TableComment = 5
	tableWidth   = 6
)

// Positions within SHOW COLUMNS rows
const (
	ColumnTable    = 0
	ColumnName     = 2
	ColumnDataType = 3
	ColumnComment  = 8
	ColumnIdentity = 10
	columnWidth    = 11
)

// Positions within SHOW UNIQUE KEYS and SHOW PRIMARY KEYS rows
const (
	KeySchema     = 2
	KeyTable      = 3
	KeyColumn     = 4
	KeySequence   = 5
	KeyConstraint = 6
	keyWidth      = 7
)

// Positions within SHOW IMPORTED KEYS rows
const (
	ParentSchema  = 2
	ParentTable   = 3
	ParentColumn  = 4
	ChildSchema   = 6
	ChildTable    = 7
	ChildColumn   = 8
	FKConstraint  = 12
	importedWidth = 13
)

// Catalog is a metadata source returning the five row-sets the importer needs.
type Catalog interface {
	Tables(ctx context.Context) ([]Row, error)
	Columns(ctx context.Context) ([]Row, error)
	UniqueKeys(ctx context.Context) ([]Row, error)
	PrimaryKeys(ctx context.Context) ([]Row, error)
	ImportedKeys(ctx context.Context) ([]Row, error)
}

// Row is one catalog result row
type Row []any

// Has reports whether position i exists in the row
func (r Row) Has(i int) bool {
	return i >= 0 && i < len(r)
}

// Text returns the value at position i as a string. Missing and NULL values
// read as the empty string.
func (r Row) Text(i int) string {
	if !r.Has(i) || r[i] == nil {
		return ""
	}
	switch v := r[i].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns the value at position i as an integer
func (r Row) Int(i int) (int, error) {
	if !r.Has(i) || r[i] == nil {
		return 0, fmt.Errorf("no integer value at position %d", i)
	}
	switch v := r[i].(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		n, err := strconv.Atoi(strings.TrimSpace(r.Text(i)))
		if err != nil {
			return 0, fmt.Errorf("invalid integer at position %d: %w", i, err)
		}
		return n, nil
	}
}

// TableRow builds a SHOW TABLES row
func TableRow(name, comment string) Row {
	r := make(Row, tableWidth)
	r[TableName] = name
	r[TableComment] = comment
	return r
}

// ColumnRow builds a SHOW COLUMNS row. identity is empty for non-identity
// columns, otherwise any marker text (Snowflake reports the sequence definition).
func ColumnRow(table, name string, dataType TypeDescriptor, comment, identity string) Row {
	r := make(Row, columnWidth)
	r[ColumnTable] = table
	r[ColumnName] = name
	r[ColumnDataType] = dataType.JSON()
	r[ColumnComment] = comment
	r[ColumnIdentity] = identity
	return r
}

// UniqueKeyRow builds a SHOW UNIQUE KEYS row
func UniqueKeyRow(schemaName, table, column, constraint string) Row {
	r := make(Row, keyWidth)
	r[KeySchema] = schemaName
	r[KeyTable] = table
	r[KeyColumn] = column
	r[KeyConstraint] = constraint
	return r
}

// PrimaryKeyRow builds a SHOW PRIMARY KEYS row; position is 1-based
func PrimaryKeyRow(schemaName, table, column string, position int) Row {
	r := make(Row, keyWidth)
	r[KeySchema] = schemaName
	r[KeyTable] = table
	r[KeyColumn] = column
	r[KeySequence] = position
	return r
}

// ImportedKeyRow builds a SHOW IMPORTED KEYS row for one foreign key member
func ImportedKeyRow(parentSchema, parentTable, parentColumn, childSchema, childTable, childColumn, constraint string) Row {
	r := make(Row, importedWidth)
	r[ParentSchema] = parentSchema
	r[ParentTable] = parentTable
	r[ParentColumn] = parentColumn
	r[ChildSchema] = childSchema
	r[ChildTable] = childTable
	r[ChildColumn] = childColumn
	r[FKConstraint] = constraint
	return r
}
