package formatter

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/erdviewer/internal/schema"
)

func addColumn(t *schema.Table, name, dataType string, nullable bool) *schema.Column {
	c := t.AddColumn(name, "")
	c.DataType = dataType
	c.Nullable = nullable
	return c
}

func link(child *schema.Table, constraint string, fk, pk *schema.Column) {
	child.FKs.Add(constraint, fk)
	ref := pk.Ref()
	fk.FKOf = &ref
}

// shopModel builds:
//
//	CUSTOMERS   (ID pk identity, EMAIL unique)
//	ORDERS      (ID pk, CUSTOMER_ID nullable -> CUSTOMERS)
//	ORDER_ITEMS (ORDER_ID pk -> ORDERS, LINE pk)
//	SHIPMENTS   (ORDER_ID pk -> ORDERS), shares the parent's key
//	RETURNS     (ID pk, ORDER_ID + LINE -> ORDER_ITEMS)
//	My Table    (no columns)
func shopModel() *schema.Model {
	m := schema.NewModel()

	customers := m.AddTable("CUSTOMERS", "people's accounts")
	custID := addColumn(customers, "ID", "int", false)
	custID.Identity = true
	customers.AddPrimaryKey(custID, 1)
	email := addColumn(customers, "EMAIL", "varchar(255)", false)
	email.Comment = "user's login"
	email.IsUnique = true
	customers.Uniques.Add("UQ_EMAIL", email)

	orders := m.AddTable("ORDERS", "")
	orderID := addColumn(orders, "ID", "int", false)
	orders.AddPrimaryKey(orderID, 1)
	customerID := addColumn(orders, "CUSTOMER_ID", "int", true)
	link(orders, "FK_ORDERS_CUSTOMERS", customerID, custID)

	items := m.AddTable("ORDER_ITEMS", "")
	itemOrder := addColumn(items, "ORDER_ID", "int", false)
	line := addColumn(items, "LINE", "int(5)", false)
	items.AddPrimaryKey(line, 2)
	items.AddPrimaryKey(itemOrder, 1)
	link(items, "FK_ITEMS_ORDERS", itemOrder, orderID)

	shipments := m.AddTable("SHIPMENTS", "")
	shipOrder := addColumn(shipments, "ORDER_ID", "int", false)
	shipments.AddPrimaryKey(shipOrder, 1)
	link(shipments, "FK_SHIPMENTS_ORDERS", shipOrder, orderID)

	returns := m.AddTable("RETURNS", "")
	retID := addColumn(returns, "ID", "int", false)
	returns.AddPrimaryKey(retID, 1)
	retOrder := addColumn(returns, "ORDER_ID", "int", false)
	retLine := addColumn(returns, "LINE", "int(5)", false)
	link(returns, "FK_RETURNS_ITEMS", retOrder, itemOrder)
	link(returns, "FK_RETURNS_ITEMS", retLine, line)

	m.AddTable("My Table", "")

	return m
}

func tableStatement(t *testing.T, script, table string) string {
	t.Helper()
	start := strings.Index(script, "create or replace table "+table+" (")
	require.NotEqual(t, -1, start, "no create statement for %s", table)
	end := strings.Index(script[start:], ";\n\n")
	require.NotEqual(t, -1, end)
	return script[start : start+end]
}

func TestRenderSQLCompositePrimaryKey(t *testing.T) {
	script := RenderSQL(shopModel(), "")
	stmt := tableStatement(t, script, "order_items")

	assert.Equal(t, "create or replace table order_items (\n"+
		"  order_id int not null,\n"+
		"  line int(5) not null,\n"+
		"  primary key (order_id, line)\n"+
		")", stmt)
	assert.Equal(t, 1, strings.Count(stmt, "primary key"))
}

func TestRenderSQLSolePrimaryKey(t *testing.T) {
	script := RenderSQL(shopModel(), "")
	stmt := tableStatement(t, script, "customers")

	assert.Equal(t, "create or replace table customers (\n"+
		"  id int identity primary key,\n"+
		"  email varchar(255) not null comment 'user''s login',\n"+
		"  unique (email)\n"+
		") comment = 'people''s accounts'", stmt)
	assert.NotContains(t, stmt, "primary key (")
}

func TestRenderSQLNullableColumn(t *testing.T) {
	stmt := tableStatement(t, RenderSQL(shopModel(), ""), "orders")
	assert.Contains(t, stmt, "\n  customer_id int\n")
	assert.Contains(t, stmt, "\n  id int primary key,")
}

func TestRenderSQLForeignKeys(t *testing.T) {
	script := RenderSQL(shopModel(), "")

	alters := script[strings.Index(script, "alter table"):]
	assert.Equal(t,
		"alter table orders\n  add foreign key (customer_id) references customers (id);\n\n"+
			"alter table order_items\n  add foreign key (order_id) references orders (id);\n\n"+
			"alter table shipments\n  add foreign key (order_id) references orders (id);\n\n"+
			"alter table returns\n  add foreign key (order_id, line) references order_items (order_id, line);\n\n",
		alters)

	lastCreate := strings.LastIndex(script, "create or replace table")
	firstAlter := strings.Index(script, "alter table")
	assert.Less(t, lastCreate, firstAlter)
}

func TestRenderSQLPreambleAndQuoting(t *testing.T) {
	script := RenderSQL(shopModel(), schema.UseSchemaStatement("DEMO", "Sales"))

	assert.True(t, strings.HasPrefix(script, "use schema demo.\"Sales\";\n\n"))
	assert.Contains(t, script, "create or replace table \"My Table\" (\n);\n\n")
}

func TestSQLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSQLFormatter(&buf, "").Format(shopModel()))
	assert.Equal(t, RenderSQL(shopModel(), ""), buf.String())
}

func edgeLines(dot string) []string {
	var edges []string
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, " -> ") {
			edges = append(edges, line)
		}
	}
	return edges
}

func TestRenderDotOneEdgePerConstraint(t *testing.T) {
	dot := RenderDot(shopModel(), ThemeByName(DefaultTheme), ModeColumns)

	edges := edgeLines(dot)
	require.Len(t, edges, 4)
	assert.Equal(t, `  n2 -> n1 [ penwidth="1" color="#696969" style="dashed" arrowtail="crow" ]`, edges[0])
	assert.Equal(t, `  n3 -> n2 [ penwidth="1" color="#696969" arrowtail="crow" ]`, edges[1])
	assert.Equal(t, `  n4 -> n2 [ penwidth="1" color="#696969" ]`, edges[2])
	assert.Equal(t, `  n5 -> n3 [ penwidth="1" color="#696969" arrowtail="crow" ]`, edges[3])
}

func TestRenderDotHeader(t *testing.T) {
	dot := RenderDot(shopModel(), ThemeByName("Common Gray Box"), ModeColumns)

	assert.True(t, strings.HasPrefix(dot, "# You may copy and paste all this to http://viz-js.com/\n\ndigraph G {\n"))
	assert.Contains(t, dot, `  graph [ rankdir="LR" bgcolor="#ffffff" ]`)
	assert.Contains(t, dot, `  node [ style="filled" shape="record" gradientangle="180" ]`)
	assert.Contains(t, dot, `  edge [ arrowhead="none" arrowtail="none" dir="both" ]`)
	assert.True(t, strings.HasSuffix(dot, "}\n"))

	lastNode := strings.LastIndex(dot, "</table>>")
	firstEdge := strings.Index(dot, " -> ")
	assert.Less(t, lastNode, firstEdge)
}

func TestRenderDotModes(t *testing.T) {
	m := shopModel()
	theme := ThemeByName(DefaultTheme)

	collapsed := RenderDot(m, theme, ModeCollapsed)
	assert.NotContains(t, collapsed, "EMAIL")
	assert.Contains(t, collapsed, `fillcolor="#e0e0e0"`)
	assert.Contains(t, collapsed, `colspan="1"><font color="#000000"><b>CUSTOMERS</b>`)

	columns := RenderDot(m, theme, ModeColumns)
	assert.Contains(t, columns, `<tr><td align="left"><font color="#000000"><u>ID</u> I</font></td></tr>`)
	assert.Contains(t, columns, `<tr><td align="left"><font color="#000000">EMAIL U</font></td></tr>`)
	assert.Contains(t, columns, `<i>CUSTOMER_ID</i>*</font>`)
	assert.Contains(t, columns, `fillcolor="#f5f5f5"`)
	assert.NotContains(t, columns, "varchar(255)")

	full := RenderDot(m, theme, ModeFull)
	assert.Contains(t, full, `colspan="2"`)
	assert.Contains(t, full, "<tr><td align=\"left\"><font color=\"#000000\">EMAIL U&nbsp;</font></td>\n"+
		"        <td align=\"left\"><font color=\"#000000\">varchar(255)</font></td></tr>")
	assert.Contains(t, full, "<i><u>ORDER_ID</u></i>&nbsp;")
}

func TestRenderDotThemes(t *testing.T) {
	m := shopModel()

	navy := RenderDot(m, ThemeByName("Blue Navy"), ModeColumns)
	assert.Contains(t, navy, `penwidth="2" color="#0078d7"`)
	assert.Contains(t, navy, `<td bgcolor="#1a5282" align="center" colspan="1"><font color="#ffffff">`)
	assert.Contains(t, navy, `shape="Mrecord"`)

	green := RenderDot(m, ThemeByName("Gradient Green"), ModeCollapsed)
	assert.Contains(t, green, `fillcolor="#008080:#ffffff" color="#716f64"`)

	sky := RenderDot(m, ThemeByName("Blue Sky"), ModeFull)
	assert.Contains(t, sky, `fillcolor="#d3dcef:#ffffff"`)
	assert.Contains(t, sky, `bgcolor="transparent"`)

	assert.Equal(t, RenderDot(m, ThemeByName(DefaultTheme), ModeFull), RenderDot(m, ThemeByName("Neon Pink"), ModeFull))
}

func TestThemeNames(t *testing.T) {
	assert.Equal(t, []string{"Common Gray", "Common Gray Box", "Blue Navy", "Gradient Green", "Blue Sky"}, ThemeNames())
	assert.True(t, IsTheme("Blue Sky"))
	assert.False(t, IsTheme("blue sky"))
	assert.Equal(t, DefaultTheme, ThemeByName("").Name)
}

func TestColumnLabelEscapesMarkup(t *testing.T) {
	m := schema.NewModel()
	tbl := m.AddTable("A&B", "")
	addColumn(tbl, "X<Y", "int", false)

	dot := RenderDot(m, ThemeByName(DefaultTheme), ModeFull)
	assert.Contains(t, dot, "<b>A&amp;B</b>")
	assert.Contains(t, dot, "X&lt;Y&nbsp;")
}

func TestModeFromName(t *testing.T) {
	assert.Equal(t, ModeCollapsed, ModeFromName("output/DB.S-relationships"))
	assert.Equal(t, ModeFull, ModeFromName("output/DB.S-full"))
	assert.Equal(t, ModeColumns, ModeFromName("output/DB.S-columns"))
	assert.Equal(t, ModeColumns, ModeFromName("diagram"))

	for _, mode := range Modes {
		assert.Equal(t, mode, ModeFromName("x"+mode.Suffix()))
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("Relationships")
	require.NoError(t, err)
	assert.Equal(t, ModeCollapsed, mode)

	mode, err = ParseMode("full")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, mode)

	_, err = ParseMode("everything")
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	dot := RenderDot(shopModel(), ThemeByName(DefaultTheme), ModeColumns)
	page := RenderHTML(dot)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html><html>\n"))
	assert.Contains(t, page, `<script src="https://d3js.org/d3.v5.min.js"></script>`)
	assert.Contains(t, page, `<script src="https://unpkg.com/@hpcc-js/wasm@0.3.11/dist/index.min.js"></script>`)
	assert.Contains(t, page, `<script src="https://unpkg.com/d3-graphviz@3.0.5/build/d3-graphviz.js"></script>`)
	assert.Contains(t, page, "<textarea id=\"digraph\" style=\"display:none; height:0px;\">\n"+dot+"</textarea></body></html>")

	var buf bytes.Buffer
	require.NoError(t, NewHTMLFormatter(&buf).Format(dot))
	assert.Equal(t, page, buf.String())
}

func TestMultiFileFormatter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	f := NewMultiFileFormatter(dir, "DEMO", "SALES", ThemeByName("Blue Navy"))

	require.NoError(t, f.Format(shopModel()))

	assert.Equal(t, []string{
		"DEMO.SALES.sql",
		"DEMO.SALES-relationships.dot", "DEMO.SALES-relationships.html",
		"DEMO.SALES-full.dot", "DEMO.SALES-full.html",
		"DEMO.SALES-columns.dot", "DEMO.SALES-columns.html",
	}, f.Files())

	for _, name := range f.Files() {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	script, err := os.ReadFile(filepath.Join(dir, "DEMO.SALES.sql"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(script), "use schema demo.sales;\n\n"))

	collapsed, err := os.ReadFile(filepath.Join(dir, "DEMO.SALES-relationships.dot"))
	require.NoError(t, err)
	assert.NotContains(t, string(collapsed), "EMAIL")

	full, err := os.ReadFile(filepath.Join(dir, "DEMO.SALES-full.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(full), "varchar(255)")
}

func TestMultiFileFormatter_RequiresNames(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")

	err := NewMultiFileFormatter(dir, "DEMO", "", ThemeByName("")).Format(shopModel())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database and schema name are required")

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}
