package db

import (
	"context"
	"database/sql"

	"github.com/tordrt/erdviewer/internal/catalog"
)

// SnowflakeCatalog answers catalog queries with SHOW commands. The rows come
// back in SHOW layout, which is the layout catalog.Row positions describe.
type SnowflakeCatalog struct {
	conn *sql.Conn
}

// Tables runs SHOW TABLES
func (c *SnowflakeCatalog) Tables(ctx context.Context) ([]catalog.Row, error) {
	return queryRows(ctx, c.conn, "show tables")
}

// Columns runs SHOW COLUMNS
func (c *SnowflakeCatalog) Columns(ctx context.Context) ([]catalog.Row, error) {
	return queryRows(ctx, c.conn, "show columns")
}

// UniqueKeys runs SHOW UNIQUE KEYS
func (c *SnowflakeCatalog) UniqueKeys(ctx context.Context) ([]catalog.Row, error) {
	return queryRows(ctx, c.conn, "show unique keys")
}

// PrimaryKeys runs SHOW PRIMARY KEYS
func (c *SnowflakeCatalog) PrimaryKeys(ctx context.Context) ([]catalog.Row, error) {
	return queryRows(ctx, c.conn, "show primary keys")
}

// ImportedKeys runs SHOW IMPORTED KEYS
func (c *SnowflakeCatalog) ImportedKeys(ctx context.Context) ([]catalog.Row, error) {
	return queryRows(ctx, c.conn, "show imported keys")
}

// Close returns the pinned session to the pool
func (c *SnowflakeCatalog) Close() error {
	return c.conn.Close()
}
