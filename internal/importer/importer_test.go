package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/erdviewer/internal/catalog"
	"github.com/tordrt/erdviewer/internal/schema"
)

type stubCatalog struct {
	tables, columns, uniques, pks, fks []catalog.Row
	failOn                             string
}

func (s *stubCatalog) rows(name string, rows []catalog.Row) ([]catalog.Row, error) {
	if s.failOn == name {
		return nil, errors.New("connection reset")
	}
	return rows, nil
}

func (s *stubCatalog) Tables(context.Context) ([]catalog.Row, error) {
	return s.rows("tables", s.tables)
}

func (s *stubCatalog) Columns(context.Context) ([]catalog.Row, error) {
	return s.rows("columns", s.columns)
}

func (s *stubCatalog) UniqueKeys(context.Context) ([]catalog.Row, error) {
	return s.rows("uniques", s.uniques)
}

func (s *stubCatalog) PrimaryKeys(context.Context) ([]catalog.Row, error) {
	return s.rows("pks", s.pks)
}

func (s *stubCatalog) ImportedKeys(context.Context) ([]catalog.Row, error) {
	return s.rows("fks", s.fks)
}

type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Verbose(string, ...interface{}) {}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}

func intType(nullable bool) catalog.TypeDescriptor {
	return catalog.TypeDescriptor{Type: "FIXED", Precision: catalog.Int(38), Scale: catalog.Int(0), Nullable: nullable}
}

func varchar(length int, nullable bool) catalog.TypeDescriptor {
	return catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(false), Length: catalog.Int(length), Nullable: nullable}
}

// shopCatalog is a small schema: customers, products, orders and a
// composite-key order_items table, plus one key pointing at another schema.
func shopCatalog() *stubCatalog {
	return &stubCatalog{
		tables: []catalog.Row{
			catalog.TableRow("CUSTOMERS", "people who buy"),
			catalog.TableRow("PRODUCTS", ""),
			catalog.TableRow("ORDERS", ""),
			catalog.TableRow("ORDER_ITEMS", ""),
		},
		columns: []catalog.Row{
			catalog.ColumnRow("CUSTOMERS", "ID", intType(false), "", "IDENTITY START 1 INCREMENT 1"),
			catalog.ColumnRow("CUSTOMERS", "EMAIL", varchar(255, false), "login", ""),
			catalog.ColumnRow("PRODUCTS", "SKU", catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(true), Length: catalog.Int(12)}, "", ""),
			catalog.ColumnRow("PRODUCTS", "PRICE", catalog.TypeDescriptor{Type: "FIXED", Precision: catalog.Int(10), Scale: catalog.Int(2), Nullable: true}, "", ""),
			catalog.ColumnRow("ORDERS", "ID", intType(false), "", ""),
			catalog.ColumnRow("ORDERS", "CUSTOMER_ID", intType(true), "", ""),
			catalog.ColumnRow("ORDERS", "REGION_ID", intType(true), "", ""),
			catalog.ColumnRow("ORDER_ITEMS", "ORDER_ID", intType(false), "", ""),
			catalog.ColumnRow("ORDER_ITEMS", "LINE", intType(false), "", ""),
			catalog.ColumnRow("ORDER_ITEMS", "SKU", catalog.TypeDescriptor{Type: "TEXT", Fixed: catalog.Bool(true), Length: catalog.Int(12)}, "", ""),
		},
		uniques: []catalog.Row{
			catalog.UniqueKeyRow("SALES", "CUSTOMERS", "EMAIL", "UQ_CUSTOMERS_EMAIL"),
		},
		pks: []catalog.Row{
			catalog.PrimaryKeyRow("SALES", "ORDER_ITEMS", "LINE", 2),
			catalog.PrimaryKeyRow("SALES", "CUSTOMERS", "ID", 1),
			catalog.PrimaryKeyRow("SALES", "PRODUCTS", "SKU", 1),
			catalog.PrimaryKeyRow("SALES", "ORDERS", "ID", 1),
			catalog.PrimaryKeyRow("SALES", "ORDER_ITEMS", "ORDER_ID", 1),
		},
		fks: []catalog.Row{
			catalog.ImportedKeyRow("SALES", "CUSTOMERS", "ID", "SALES", "ORDERS", "CUSTOMER_ID", "FK_ORDERS_CUSTOMERS"),
			catalog.ImportedKeyRow("GEO", "REGIONS", "ID", "SALES", "ORDERS", "REGION_ID", "FK_ORDERS_REGIONS"),
			catalog.ImportedKeyRow("SALES", "ORDERS", "ID", "SALES", "ORDER_ITEMS", "ORDER_ID", "FK_ITEMS_ORDERS"),
			catalog.ImportedKeyRow("SALES", "PRODUCTS", "SKU", "SALES", "ORDER_ITEMS", "SKU", "FK_ITEMS_PRODUCTS"),
		},
	}
}

func mustTable(t *testing.T, m *schema.Model, name string) *schema.Table {
	t.Helper()
	tbl, ok := m.Table(name)
	require.True(t, ok, "table %s", name)
	return tbl
}

func mustColumn(t *testing.T, tbl *schema.Table, name string) *schema.Column {
	t.Helper()
	c, ok := tbl.Column(name)
	require.True(t, ok, "column %s.%s", tbl.Name, name)
	return c
}

func TestImport(t *testing.T) {
	logger := &recordingLogger{}
	m, err := New(shopCatalog(), logger).Import(context.Background())
	require.NoError(t, err)

	require.Equal(t, 4, m.Len())
	customers := mustTable(t, m, "CUSTOMERS")
	assert.Equal(t, "n1", customers.Label)
	assert.Equal(t, "people who buy", customers.Comment)
	assert.Equal(t, "n4", mustTable(t, m, "ORDER_ITEMS").Label)

	id := mustColumn(t, customers, "ID")
	assert.Equal(t, "int", id.DataType)
	assert.True(t, id.Identity)
	assert.False(t, id.Nullable)
	assert.True(t, id.IsPK)

	email := mustColumn(t, customers, "EMAIL")
	assert.Equal(t, "varchar(255)", email.DataType)
	assert.Equal(t, "login", email.Comment)
	assert.True(t, email.IsUnique)
	uq, ok := customers.Uniques.Get("UQ_CUSTOMERS_EMAIL")
	require.True(t, ok)
	assert.Equal(t, []*schema.Column{email}, uq.Columns)

	products := mustTable(t, m, "PRODUCTS")
	assert.Equal(t, "char(12)", mustColumn(t, products, "SKU").DataType)
	assert.Equal(t, "number(10,2)", mustColumn(t, products, "PRICE").DataType)
	assert.True(t, mustColumn(t, products, "PRICE").Nullable)

	items := mustTable(t, m, "ORDER_ITEMS")
	require.Len(t, items.PKs, 2)
	assert.Equal(t, "ORDER_ID", items.PKs[0].Name)
	assert.Equal(t, "LINE", items.PKs[1].Name)
}

func TestImportLinksForeignKeys(t *testing.T) {
	m, err := New(shopCatalog(), nil).Import(context.Background())
	require.NoError(t, err)

	orders := mustTable(t, m, "ORDERS")
	customerID := mustColumn(t, orders, "CUSTOMER_ID")
	require.NotNil(t, customerID.FKOf)

	parentTable, parentColumn := m.Resolve(*customerID.FKOf)
	require.NotNil(t, parentColumn)
	assert.Equal(t, "CUSTOMERS", parentTable.Name)
	assert.Equal(t, "ID", parentColumn.Name)
	assert.True(t, parentColumn.IsPK)

	fk, ok := orders.FKs.Get("FK_ORDERS_CUSTOMERS")
	require.True(t, ok)
	assert.Equal(t, []*schema.Column{customerID}, fk.Columns)

	items := mustTable(t, m, "ORDER_ITEMS")
	assert.Equal(t, 2, items.FKs.Len())
	assert.Equal(t, "FK_ITEMS_ORDERS", items.FKs.All()[0].Name)
	assert.Equal(t, "FK_ITEMS_PRODUCTS", items.FKs.All()[1].Name)
}

func TestImportSkipsCrossSchemaForeignKeys(t *testing.T) {
	logger := &recordingLogger{}
	m, err := New(shopCatalog(), logger).Import(context.Background())
	require.NoError(t, err)

	orders := mustTable(t, m, "ORDERS")
	_, ok := orders.FKs.Get("FK_ORDERS_REGIONS")
	assert.False(t, ok)
	assert.Nil(t, mustColumn(t, orders, "REGION_ID").FKOf)
	assert.Equal(t, 1, orders.FKs.Len())

	require.Len(t, logger.warnings, 1)
	assert.Contains(t, logger.warnings[0], "ORDERS.REGION_ID")
}

func TestImportIsDeterministic(t *testing.T) {
	first, err := New(shopCatalog(), nil).Import(context.Background())
	require.NoError(t, err)
	second, err := New(shopCatalog(), nil).Import(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestImportUnknownNames(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *stubCatalog)
		wantErr error
	}{
		{
			name: "column of unknown table",
			mutate: func(c *stubCatalog) {
				c.columns = append(c.columns, catalog.ColumnRow("GHOSTS", "ID", intType(false), "", ""))
			},
			wantErr: ErrUnknownTable,
		},
		{
			name: "unique key on unknown column",
			mutate: func(c *stubCatalog) {
				c.uniques = append(c.uniques, catalog.UniqueKeyRow("SALES", "CUSTOMERS", "PHONE", "UQ_PHONE"))
			},
			wantErr: ErrUnknownColumn,
		},
		{
			name: "primary key on unknown table",
			mutate: func(c *stubCatalog) {
				c.pks = append(c.pks, catalog.PrimaryKeyRow("SALES", "GHOSTS", "ID", 1))
			},
			wantErr: ErrUnknownTable,
		},
		{
			name: "foreign key to unknown parent column",
			mutate: func(c *stubCatalog) {
				c.fks = append(c.fks, catalog.ImportedKeyRow("SALES", "CUSTOMERS", "UUID", "SALES", "ORDERS", "CUSTOMER_ID", "FK_X"))
			},
			wantErr: ErrUnknownColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := shopCatalog()
			tt.mutate(c)

			m, err := New(c, nil).Import(context.Background())
			require.Error(t, err)
			assert.Nil(t, m)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestImportRejectsMalformedRows(t *testing.T) {
	c := shopCatalog()
	c.columns[0][catalog.ColumnDataType] = "{broken"
	_, err := New(c, nil).Import(context.Background())
	assert.Error(t, err)

	c = shopCatalog()
	c.pks[0][catalog.KeySequence] = "first"
	_, err = New(c, nil).Import(context.Background())
	assert.Error(t, err)

	c = shopCatalog()
	c.tables = append(c.tables, catalog.Row{"x", "Y"})
	_, err = New(c, nil).Import(context.Background())
	assert.ErrorIs(t, err, ErrShortRow)
}

func TestImportPropagatesCatalogErrors(t *testing.T) {
	for _, phase := range []string{"tables", "columns", "uniques", "pks", "fks"} {
		t.Run(phase, func(t *testing.T) {
			c := shopCatalog()
			c.failOn = phase

			_, err := New(c, nil).Import(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "connection reset")
		})
	}
}
