package db

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/erdviewer/internal/catalog"
)

// SQLiteCatalog reads catalog rows from a SQLite database using the
// table-valued PRAGMA functions. SQLite has no comments, so every comment
// is empty.
type SQLiteCatalog struct {
	client *SQLiteClient
}

type sqliteColumn struct {
	name     string
	declared string
	notNull  bool
	pk       int
}

// Tables lists user tables
func (c *SQLiteCatalog) Tables(ctx context.Context) ([]catalog.Row, error) {
	names, err := c.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]catalog.Row, 0, len(names))
	for _, name := range names {
		result = append(result, catalog.TableRow(name, ""))
	}
	return result, nil
}

// Columns lists the columns of every table. A lone INTEGER primary key
// aliases the rowid and is reported as an identity column.
func (c *SQLiteCatalog) Columns(ctx context.Context) ([]catalog.Row, error) {
	names, err := c.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	var result []catalog.Row
	for _, table := range names {
		columns, err := c.tableColumns(ctx, table)
		if err != nil {
			return nil, err
		}

		pkCount := 0
		for _, col := range columns {
			if col.pk > 0 {
				pkCount++
			}
		}

		for _, col := range columns {
			d := sqliteTypeDescriptor(col.declared)
			d.Nullable = !col.notNull && col.pk == 0

			identity := ""
			if col.pk > 0 && pkCount == 1 && strings.EqualFold(col.declared, "INTEGER") {
				identity = "ROWID"
			}

			result = append(result, catalog.ColumnRow(table, col.name, d, "", identity))
		}
	}

	return result, nil
}

// UniqueKeys lists members of indexes created by UNIQUE constraints
func (c *SQLiteCatalog) UniqueKeys(ctx context.Context) ([]catalog.Row, error) {
	names, err := c.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	var result []catalog.Row
	for _, table := range names {
		indexes, err := c.uniqueIndexes(ctx, table)
		if err != nil {
			return nil, err
		}

		for _, index := range indexes {
			columns, err := c.indexColumns(ctx, index)
			if err != nil {
				return nil, err
			}
			for _, column := range columns {
				result = append(result, catalog.UniqueKeyRow(SQLiteSchema, table, column, index))
			}
		}
	}

	return result, nil
}

// PrimaryKeys lists primary key members with their key positions
func (c *SQLiteCatalog) PrimaryKeys(ctx context.Context) ([]catalog.Row, error) {
	names, err := c.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	var result []catalog.Row
	for _, table := range names {
		columns, err := c.tableColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		for _, col := range columns {
			if col.pk > 0 {
				result = append(result, catalog.PrimaryKeyRow(SQLiteSchema, table, col.name, col.pk))
			}
		}
	}

	return result, nil
}

// ImportedKeys lists foreign key members. A reference without explicit
// parent columns targets the parent's primary key.
func (c *SQLiteCatalog) ImportedKeys(ctx context.Context) ([]catalog.Row, error) {
	names, err := c.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, seq, "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`

	var result []catalog.Row
	for _, table := range names {
		rows, err := c.client.GetDB().QueryContext(ctx, query, table)
		if err != nil {
			return nil, err
		}

		type reference struct {
			id, seq      int
			parent, from string
			to           sql.NullString
		}
		var refs []reference
		for rows.Next() {
			var r reference
			if err := rows.Scan(&r.id, &r.seq, &r.parent, &r.from, &r.to); err != nil {
				rows.Close()
				return nil, err
			}
			refs = append(refs, r)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		for _, r := range refs {
			parentColumn := r.to.String
			if !r.to.Valid || parentColumn == "" {
				parentColumn, err = c.primaryKeyColumn(ctx, r.parent, r.seq)
				if err != nil {
					return nil, err
				}
			}
			constraint := fmt.Sprintf("fk_%s_%d", table, r.id)
			result = append(result, catalog.ImportedKeyRow(SQLiteSchema, r.parent, parentColumn, SQLiteSchema, table, r.from, constraint))
		}
	}

	return result, nil
}

func (c *SQLiteCatalog) tableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := c.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (c *SQLiteCatalog) tableColumns(ctx context.Context, table string) ([]sqliteColumn, error) {
	query := `SELECT name, type, "notnull", pk FROM pragma_table_info(?) ORDER BY cid`

	rows, err := c.client.GetDB().QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var col sqliteColumn
		if err := rows.Scan(&col.name, &col.declared, &col.notNull, &col.pk); err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (c *SQLiteCatalog) primaryKeyColumn(ctx context.Context, table string, seq int) (string, error) {
	columns, err := c.tableColumns(ctx, table)
	if err != nil {
		return "", err
	}
	for _, col := range columns {
		if col.pk == seq+1 {
			return col.name, nil
		}
	}
	return "", fmt.Errorf("table %s has no primary key column at position %d", table, seq+1)
}

func (c *SQLiteCatalog) uniqueIndexes(ctx context.Context, table string) ([]string, error) {
	query := `SELECT name FROM pragma_index_list(?) WHERE "unique" = 1 AND origin = 'u' ORDER BY name`

	rows, err := c.client.GetDB().QueryContext(ctx, query, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (c *SQLiteCatalog) indexColumns(ctx context.Context, index string) ([]string, error) {
	query := `SELECT name FROM pragma_index_info(?) ORDER BY seqno`

	rows, err := c.client.GetDB().QueryContext(ctx, query, index)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

var sqliteDeclared = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_ ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// sqliteTypeDescriptor maps a declared column type onto a catalog type
// descriptor. Declared types are free text in SQLite, so unknown names are
// passed through upper-cased.
func sqliteTypeDescriptor(declared string) catalog.TypeDescriptor {
	m := sqliteDeclared.FindStringSubmatch(declared)
	if m == nil {
		if strings.TrimSpace(declared) == "" {
			return catalog.TypeDescriptor{Type: "BLOB"}
		}
		return catalog.TypeDescriptor{Type: strings.ToUpper(strings.TrimSpace(declared))}
	}

	name := strings.ToUpper(m[1])
	first := atoiPtr(m[2])
	second := atoiPtr(m[3])

	switch name {
	case "VARCHAR", "CHARACTER VARYING", "NVARCHAR", "VARYING CHARACTER":
		return catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(false), Length: first}
	case "CHAR", "CHARACTER", "NCHAR", "NATIVE CHARACTER":
		return catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(true), Length: first}
	case "TEXT", "CLOB":
		return catalog.TypeDescriptor{Type: "TEXT"}
	case "INTEGER", "INT", "BIGINT", "SMALLINT", "TINYINT", "MEDIUMINT":
		return catalog.TypeDescriptor{Type: "FIXED", Precision: catalog.Int(38), Scale: catalog.Int(0)}
	case "NUMERIC", "DECIMAL":
		if first == nil {
			return catalog.TypeDescriptor{Type: "FIXED"}
		}
		if second == nil {
			second = catalog.Int(0)
		}
		return catalog.TypeDescriptor{Type: "FIXED", Precision: first, Scale: second}
	case "REAL", "FLOAT", "DOUBLE", "DOUBLE PRECISION":
		return catalog.TypeDescriptor{Type: "REAL"}
	case "DATETIME", "TIMESTAMP":
		return catalog.TypeDescriptor{Type: "TIMESTAMP_NTZ", Precision: catalog.Int(0), Scale: catalog.Int(9)}
	default:
		return catalog.TypeDescriptor{Type: name}
	}
}

func atoiPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
