package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tordrt/erdviewer/internal/catalog"
)

// MySQLCatalog reads catalog rows for one MySQL database
type MySQLCatalog struct {
	client *MySQLClient
	schema string
}

// Tables lists base tables with their comments
func (c *MySQLCatalog) Tables(ctx context.Context) ([]catalog.Row, error) {
	query := `
		SELECT table_name, COALESCE(table_comment, '')
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := c.client.GetDB().QueryContext(ctx, query, c.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Row
	for rows.Next() {
		var name, comment string
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, err
		}
		result = append(result, catalog.TableRow(name, comment))
	}

	return result, rows.Err()
}

// Columns lists the columns of every base table, in declaration order
func (c *MySQLCatalog) Columns(ctx context.Context) ([]catalog.Row, error) {
	query := `
		SELECT
			c.table_name,
			c.column_name,
			c.data_type,
			c.column_type,
			c.is_nullable,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale,
			c.datetime_precision,
			COALESCE(c.extra, ''),
			COALESCE(c.column_comment, '')
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = ? AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position
	`

	rows, err := c.client.GetDB().QueryContext(ctx, query, c.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Row
	for rows.Next() {
		var table, name, dataType, columnType, nullable, extra, comment string
		var charLength, precision, scale, datetimePrecision sql.NullInt64

		if err := rows.Scan(&table, &name, &dataType, &columnType, &nullable, &charLength, &precision,
			&scale, &datetimePrecision, &extra, &comment); err != nil {
			return nil, err
		}

		d := mysqlTypeDescriptor(dataType, columnType, nullInt(charLength), nullInt(precision), nullInt(scale), nullInt(datetimePrecision))
		d.Nullable = nullable == "YES"

		identity := ""
		if strings.Contains(strings.ToLower(extra), "auto_increment") {
			identity = "AUTO_INCREMENT"
		}

		result = append(result, catalog.ColumnRow(table, name, d, comment, identity))
	}

	return result, rows.Err()
}

// UniqueKeys lists UNIQUE constraint members
func (c *MySQLCatalog) UniqueKeys(ctx context.Context) ([]catalog.Row, error) {
	return c.keyColumns(ctx, "UNIQUE", func(schemaName, table, column, constraint string, _ int) catalog.Row {
		return catalog.UniqueKeyRow(schemaName, table, column, constraint)
	})
}

// PrimaryKeys lists PRIMARY KEY members with their key positions
func (c *MySQLCatalog) PrimaryKeys(ctx context.Context) ([]catalog.Row, error) {
	return c.keyColumns(ctx, "PRIMARY KEY", func(schemaName, table, column, _ string, position int) catalog.Row {
		return catalog.PrimaryKeyRow(schemaName, table, column, position)
	})
}

func (c *MySQLCatalog) keyColumns(ctx context.Context, constraintType string,
	build func(schemaName, table, column, constraint string, position int) catalog.Row) ([]catalog.Row, error) {
	query := `
		SELECT
			tc.table_schema,
			tc.table_name,
			kcu.column_name,
			tc.constraint_name,
			kcu.ordinal_position
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = tc.constraint_schema
			AND kcu.constraint_name = tc.constraint_name
			AND kcu.table_name = tc.table_name
		WHERE tc.table_schema = ? AND tc.constraint_type = ?
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position
	`

	rows, err := c.client.GetDB().QueryContext(ctx, query, c.schema, constraintType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Row
	for rows.Next() {
		var schemaName, table, column, constraint string
		var position int
		if err := rows.Scan(&schemaName, &table, &column, &constraint, &position); err != nil {
			return nil, err
		}
		result = append(result, build(schemaName, table, column, constraint, position))
	}

	return result, rows.Err()
}

// ImportedKeys lists foreign key members declared by tables in this database
func (c *MySQLCatalog) ImportedKeys(ctx context.Context) ([]catalog.Row, error) {
	query := `
		SELECT
			kcu.referenced_table_schema,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			kcu.table_schema,
			kcu.table_name,
			kcu.column_name,
			kcu.constraint_name
		FROM information_schema.key_column_usage kcu
		WHERE kcu.table_schema = ? AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.table_name, kcu.constraint_name, kcu.ordinal_position
	`

	rows, err := c.client.GetDB().QueryContext(ctx, query, c.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Row
	for rows.Next() {
		var parentSchema, parentTable, parentColumn, childSchema, childTable, childColumn, constraint string
		if err := rows.Scan(&parentSchema, &parentTable, &parentColumn, &childSchema, &childTable, &childColumn, &constraint); err != nil {
			return nil, err
		}
		result = append(result, catalog.ImportedKeyRow(parentSchema, parentTable, parentColumn, childSchema, childTable, childColumn, constraint))
	}

	return result, rows.Err()
}

// mysqlTypeDescriptor maps information_schema type columns onto a catalog
// type descriptor. columnType carries modifiers such as "tinyint(1)".
func mysqlTypeDescriptor(dataType, columnType string, charLength, precision, scale, datetimePrecision *int) catalog.TypeDescriptor {
	switch strings.ToLower(dataType) {
	case "varchar":
		return catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(false), Length: charLength}
	case "char":
		return catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(true), Length: charLength}
	case "text", "tinytext", "mediumtext", "longtext", "enum", "set":
		return catalog.TypeDescriptor{Type: "TEXT"}
	case "tinyint":
		if strings.EqualFold(columnType, "tinyint(1)") {
			return catalog.TypeDescriptor{Type: "BOOLEAN"}
		}
		return catalog.TypeDescriptor{Type: "FIXED", Precision: catalog.Int(38), Scale: catalog.Int(0)}
	case "smallint", "mediumint", "int", "integer", "bigint":
		return catalog.TypeDescriptor{Type: "FIXED", Precision: catalog.Int(38), Scale: catalog.Int(0)}
	case "decimal", "numeric":
		return catalog.TypeDescriptor{Type: "FIXED", Precision: precision, Scale: scale}
	case "float", "double", "real":
		return catalog.TypeDescriptor{Type: "REAL"}
	case "datetime", "timestamp":
		return timeDescriptor("TIMESTAMP_NTZ", datetimePrecision)
	case "json":
		return catalog.TypeDescriptor{Type: "VARIANT"}
	case "binary", "varbinary", "blob", "tinyblob", "mediumblob", "longblob":
		return catalog.TypeDescriptor{Type: "BINARY"}
	default:
		return catalog.TypeDescriptor{Type: strings.ToUpper(dataType)}
	}
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return catalog.Int(int(v.Int64))
}
