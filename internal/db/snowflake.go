package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/snowflakedb/gosnowflake"

	"github.com/tordrt/erdviewer/internal/schema"
)

// SnowflakeClient manages the connection to Snowflake
type SnowflakeClient struct {
	db *sql.DB
}

// NewSnowflakeClient opens a pool for a gosnowflake DSN
// (user:password@account/database/schema?warehouse=WH) and pings it.
func NewSnowflakeClient(ctx context.Context, dsn string) (*SnowflakeClient, error) {
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SnowflakeClient{db: db}, nil
}

// Close closes the database connection
func (c *SnowflakeClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SnowflakeClient) GetDB() *sql.DB {
	return c.db
}

// Catalog pins one session and switches it to database.schemaName. SHOW
// commands are scoped by the session's current schema, so every query of the
// returned catalog runs on that session. Empty names keep the schema the DSN
// selected. The caller must Close the catalog.
func (c *SnowflakeClient) Catalog(ctx context.Context, database, schemaName string) (*SnowflakeCatalog, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session: %w", err)
	}

	if database != "" && schemaName != "" {
		stmt := schema.UseSchemaStatement(database, schemaName)
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}

	return &SnowflakeCatalog{conn: conn}, nil
}
