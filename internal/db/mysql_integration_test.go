//go:build integration

package db

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/erdviewer/internal/importer"
)

func TestMySQLCatalog_Import(t *testing.T) {
	ctx := context.Background()

	dsn := os.Getenv("MYSQL_TEST_URL")
	if dsn == "" {
		t.Skip("MYSQL_TEST_URL not set")
	}

	client, err := NewMySQLClient(ctx, dsn+"?multiStatements=true")
	require.NoError(t, err)
	defer client.Close()

	_, err = client.GetDB().ExecContext(ctx, `
		DROP TABLE IF EXISTS order_lines, orders, customers;
		CREATE TABLE customers (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			active TINYINT(1)
		) COMMENT = 'People who buy things';
		CREATE TABLE orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			customer_id BIGINT NOT NULL,
			total DECIMAL(10,2),
			FOREIGN KEY (customer_id) REFERENCES customers(id)
		);
		CREATE TABLE order_lines (
			order_id INT NOT NULL,
			line_no INT NOT NULL,
			PRIMARY KEY (order_id, line_no),
			CONSTRAINT order_fk FOREIGN KEY (order_id) REFERENCES orders(id)
		);
	`)
	require.NoError(t, err)

	var schemaName string
	require.NoError(t, client.GetDB().QueryRowContext(ctx, "SELECT DATABASE()").Scan(&schemaName))

	m, err := importer.New(client.Catalog(schemaName), nil).Import(ctx)
	require.NoError(t, err)

	customers, ok := m.Table("customers")
	require.True(t, ok)
	assert.Equal(t, "People who buy things", customers.Comment)

	id, _ := customers.Column("id")
	assert.True(t, id.Identity)
	active, _ := customers.Column("active")
	assert.Equal(t, "boolean", active.DataType)

	orders, _ := m.Table("orders")
	customerID, _ := orders.Column("customer_id")
	require.NotNil(t, customerID.FKOf)
	assert.Equal(t, id.Ref(), *customerID.FKOf)

	lines, _ := m.Table("order_lines")
	assert.True(t, lines.HasCompositePK())
	_, ok = lines.FKs.Get("order_fk")
	assert.True(t, ok)
}
