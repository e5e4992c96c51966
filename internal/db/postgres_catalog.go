package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/erdviewer/internal/catalog"
)

// PostgresCatalog reads catalog rows for one PostgreSQL schema
type PostgresCatalog struct {
	client *PostgresClient
	schema string
}

// Tables lists base tables with their comments
func (c *PostgresCatalog) Tables(ctx context.Context) ([]catalog.Row, error) {
	query := `
		SELECT
			t.table_name::text,
			COALESCE(obj_description(format('%I.%I', t.table_schema, t.table_name)::regclass, 'pg_class'), '')
		FROM information_schema.tables t
		WHERE t.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY t.table_name
	`

	rows, err := c.client.GetConnection().Query(ctx, query, c.schema)
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
func (c *PostgresCatalog) Columns(ctx context.Context) ([]catalog.Row, error) {
	query := `
		SELECT
			c.table_name::text,
			c.column_name::text,
			c.data_type::text,
			c.is_nullable::text,
			c.character_maximum_length::int,
			c.numeric_precision::int,
			c.numeric_scale::int,
			c.datetime_precision::int,
			c.is_identity::text,
			COALESCE(c.column_default::text, ''),
			COALESCE(col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int), '')
		FROM information_schema.columns c
		JOIN information_schema.tables t
			ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = $1 AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position
	`

	rows, err := c.client.GetConnection().Query(ctx, query, c.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []catalog.Row
	for rows.Next() {
		var table, name, dataType, nullable, isIdentity, defaultValue, comment string
		var charLength, precision, scale, datetimePrecision *int

		if err := rows.Scan(&table, &name, &dataType, &nullable, &charLength, &precision, &scale,
			&datetimePrecision, &isIdentity, &defaultValue, &comment); err != nil {
			return nil, err
		}

		d := postgresTypeDescriptor(dataType, charLength, precision, scale, datetimePrecision)
		d.Nullable = nullable == "YES"

		identity := ""
		if isIdentity == "YES" || strings.HasPrefix(defaultValue, "nextval(") {
			identity = "IDENTITY"
		}

		result = append(result, catalog.ColumnRow(table, name, d, comment, identity))
	}

	return result, rows.Err()
}

// UniqueKeys lists UNIQUE constraint members
func (c *PostgresCatalog) UniqueKeys(ctx context.Context) ([]catalog.Row, error) {
	return c.keyColumns(ctx, "UNIQUE", func(schemaName, table, column, constraint string, _ int) catalog.Row {
		return catalog.UniqueKeyRow(schemaName, table, column, constraint)
	})
}

// PrimaryKeys lists PRIMARY KEY members with their key positions
func (c *PostgresCatalog) PrimaryKeys(ctx context.Context) ([]catalog.Row, error) {
	return c.keyColumns(ctx, "PRIMARY KEY", func(schemaName, table, column, _ string, position int) catalog.Row {
		return catalog.PrimaryKeyRow(schemaName, table, column, position)
	})
}

func (c *PostgresCatalog) keyColumns(ctx context.Context, constraintType string,
	build func(schemaName, table, column, constraint string, position int) catalog.Row) ([]catalog.Row, error) {
	query := `
		SELECT
			tc.table_schema::text,
			tc.table_name::text,
			kcu.column_name::text,
			tc.constraint_name::text,
			kcu.ordinal_position::int
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON kcu.constraint_schema = tc.constraint_schema
			AND kcu.constraint_name = tc.constraint_name
			AND kcu.table_name = tc.table_name
		WHERE tc.constraint_type = $2 AND tc.table_schema = $1
		ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position
	`

	rows, err := c.client.GetConnection().Query(ctx, query, c.schema, constraintType)
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

// ImportedKeys lists foreign key members of tables in this schema, paired
// position by position with the referenced columns. The parent may live in
// another schema.
func (c *PostgresCatalog) ImportedKeys(ctx context.Context) ([]catalog.Row, error) {
	query := `
		SELECT
			pn.nspname::text,
			pc.relname::text,
			pa.attname::text,
			cn.nspname::text,
			cc.relname::text,
			ca.attname::text,
			con.conname::text
		FROM pg_constraint con
		JOIN pg_class cc ON cc.oid = con.conrelid
		JOIN pg_namespace cn ON cn.oid = cc.relnamespace
		JOIN pg_class pc ON pc.oid = con.confrelid
		JOIN pg_namespace pn ON pn.oid = pc.relnamespace
		CROSS JOIN LATERAL unnest(con.conkey, con.confkey) WITH ORDINALITY AS k(child_attnum, parent_attnum, ord)
		JOIN pg_attribute ca ON ca.attrelid = con.conrelid AND ca.attnum = k.child_attnum
		JOIN pg_attribute pa ON pa.attrelid = con.confrelid AND pa.attnum = k.parent_attnum
		WHERE con.contype = 'f' AND cn.nspname = $1
		ORDER BY cc.relname, con.conname, k.ord
	`

	rows, err := c.client.GetConnection().Query(ctx, query, c.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Row, error) {
		var parentSchema, parentTable, parentColumn, childSchema, childTable, childColumn, constraint string
		if err := row.Scan(&parentSchema, &parentTable, &parentColumn, &childSchema, &childTable, &childColumn, &constraint); err != nil {
			return nil, err
		}
		return catalog.ImportedKeyRow(parentSchema, parentTable, parentColumn, childSchema, childTable, childColumn, constraint), nil
	})
}

// postgresTypeDescriptor maps information_schema type columns onto a catalog
// type descriptor
func postgresTypeDescriptor(dataType string, charLength, precision, scale, datetimePrecision *int) catalog.TypeDescriptor {
	switch dataType {
	case "character varying":
		return catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(false), Length: charLength}
	case "character":
		return catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(true), Length: charLength}
	case "text":
		return catalog.TypeDescriptor{Type: "TEXT"}
	case "smallint", "integer", "bigint":
		return catalog.TypeDescriptor{Type: "FIXED", Precision: catalog.Int(38), Scale: catalog.Int(0)}
	case "numeric":
		if precision == nil {
			return catalog.TypeDescriptor{Type: "FIXED"}
		}
		return catalog.TypeDescriptor{Type: "FIXED", Precision: precision, Scale: scale}
	case "real", "double precision":
		return catalog.TypeDescriptor{Type: "REAL"}
	case "timestamp without time zone":
		return timeDescriptor("TIMESTAMP_NTZ", datetimePrecision)
	case "timestamp with time zone":
		return timeDescriptor("TIMESTAMP_TZ", datetimePrecision)
	case "time without time zone", "time with time zone":
		return timeDescriptor("TIME", datetimePrecision)
	case "json", "jsonb":
		return catalog.TypeDescriptor{Type: "VARIANT"}
	case "bytea":
		return catalog.TypeDescriptor{Type: "BINARY"}
	default:
		return catalog.TypeDescriptor{Type: strings.ToUpper(dataType)}
	}
}

func timeDescriptor(typeName string, fractional *int) catalog.TypeDescriptor {
	if fractional == nil {
		return catalog.TypeDescriptor{Type: typeName}
	}
	return catalog.TypeDescriptor{Type: typeName, Precision: catalog.Int(0), Scale: fractional}
}
