package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/erdviewer/internal/schema"
)

// SQLFormatter formats a model as a DDL script
type SQLFormatter struct {
	writer   io.Writer
	preamble string
}

// NewSQLFormatter creates a new SQL formatter. A non-empty preamble is
// written as the first statement, e.g.
// schema.UseSchemaStatement("DEMO", "PUBLIC").
func NewSQLFormatter(w io.Writer, preamble string) *SQLFormatter {
	return &SQLFormatter{writer: w, preamble: preamble}
}

// Format writes the script
func (f *SQLFormatter) Format(m *schema.Model) error {
	_, err := io.WriteString(f.writer, RenderSQL(m, f.preamble))
	return err
}

// RenderSQL returns one CREATE TABLE statement per table, in import order,
// followed by one ALTER TABLE statement per foreign key constraint.
func RenderSQL(m *schema.Model, preamble string) string {
	var b strings.Builder

	if preamble != "" {
		b.WriteString(preamble)
		b.WriteString(";\n\n")
	}
	for _, t := range m.Tables() {
		writeCreateTable(&b, t)
	}
	for _, t := range m.Tables() {
		for _, fk := range t.FKs.All() {
			writeForeignKey(&b, m, t, fk)
		}
	}

	return b.String()
}

func writeCreateTable(b *strings.Builder, t *schema.Table) {
	fmt.Fprintf(b, "create or replace table %s (", schema.QuoteName(t.Name))

	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(",")
		}
		writeColumn(b, t, c)
	}

	for _, u := range t.Uniques.All() {
		fmt.Fprintf(b, ",\n  unique (%s)", columnList(u.Columns))
	}
	if t.HasCompositePK() {
		fmt.Fprintf(b, ",\n  primary key (%s)", columnList(t.PKs))
	}

	b.WriteString("\n)")
	if t.Comment != "" {
		fmt.Fprintf(b, " comment = '%s'", escapeLiteral(t.Comment))
	}
	b.WriteString(";\n\n")
}

// writeColumn writes one column definition. A sole primary key column gets an
// inline PRIMARY KEY and no NOT NULL; composite keys are declared after the
// columns.
func writeColumn(b *strings.Builder, t *schema.Table, c *schema.Column) {
	fmt.Fprintf(b, "\n  %s %s", schema.QuoteName(c.Name), c.DataType)

	solePK := t.IsSolePK(c)
	if !c.Nullable && !solePK {
		b.WriteString(" not null")
	}
	if c.Identity {
		b.WriteString(" identity")
	}
	if solePK {
		b.WriteString(" primary key")
	}
	if c.Comment != "" {
		fmt.Fprintf(b, " comment '%s'", escapeLiteral(c.Comment))
	}
}

func writeForeignKey(b *strings.Builder, m *schema.Model, t *schema.Table, fk *schema.Constraint) {
	if len(fk.Columns) == 0 || fk.Columns[0].FKOf == nil {
		return
	}
	parent, _ := m.Resolve(*fk.Columns[0].FKOf)
	if parent == nil {
		return
	}

	fks := make([]string, 0, len(fk.Columns))
	pks := make([]string, 0, len(fk.Columns))
	for _, c := range fk.Columns {
		fks = append(fks, schema.QuoteName(c.Name))
		if c.FKOf == nil {
			continue
		}
		if _, pk := m.Resolve(*c.FKOf); pk != nil {
			pks = append(pks, schema.QuoteName(pk.Name))
		}
	}

	fmt.Fprintf(b, "alter table %s\n  add foreign key (%s) references %s (%s);\n\n",
		schema.QuoteName(t.Name),
		strings.Join(fks, ", "),
		schema.QuoteName(parent.Name),
		strings.Join(pks, ", "))
}

func columnList(columns []*schema.Column) string {
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, schema.QuoteName(c.Name))
	}
	return strings.Join(names, ", ")
}

func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
