package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/erdviewer/internal/schema"
)

// DotFormatter formats a model as a Graphviz entity-relationship diagram
type DotFormatter struct {
	writer io.Writer
	theme  Theme
	mode   Mode
}

// NewDotFormatter creates a new DOT formatter
func NewDotFormatter(w io.Writer, theme Theme, mode Mode) *DotFormatter {
	return &DotFormatter{writer: w, theme: theme, mode: mode}
}

// Format writes the diagram
func (f *DotFormatter) Format(m *schema.Model) error {
	_, err := io.WriteString(f.writer, RenderDot(m, f.theme, f.mode))
	return err
}

var labelEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// RenderDot returns the diagram: one node per table, then one edge per
// foreign key constraint.
func RenderDot(m *schema.Model, theme Theme, mode Mode) string {
	var b strings.Builder

	b.WriteString("# You may copy and paste all this to http://viz-js.com/\n\n")
	b.WriteString("digraph G {\n")
	b.WriteString("  graph [ rankdir=\"LR\" bgcolor=\"#ffffff\" ]\n")
	fmt.Fprintf(&b, "  node [ style=\"filled\" shape=\"%s\" gradientangle=\"180\" ]\n", theme.Shape)
	b.WriteString("  edge [ arrowhead=\"none\" arrowtail=\"none\" dir=\"both\" ]\n\n")

	for _, t := range m.Tables() {
		writeNode(&b, t, theme, mode)
	}
	b.WriteString("\n")
	for _, t := range m.Tables() {
		writeEdges(&b, m, t, theme)
	}
	b.WriteString("}\n")

	return b.String()
}

func writeNode(b *strings.Builder, t *schema.Table, theme Theme, mode Mode) {
	fill := theme.Fill
	if mode == ModeCollapsed {
		fill = theme.CollapsedFill
	}
	colspan := "1"
	if mode == ModeFull {
		colspan = "2"
	}

	fmt.Fprintf(b, "  %s [\n", t.Label)
	fmt.Fprintf(b, "    fillcolor=\"%s\" color=\"%s\" penwidth=\"1\"\n", fill, theme.Border)
	b.WriteString("    label=<<table style=\"rounded\" border=\"0\" cellborder=\"0\" cellspacing=\"0\" cellpadding=\"1\">\n")
	fmt.Fprintf(b, "      <tr><td bgcolor=\"%s\" align=\"center\" colspan=\"%s\"><font color=\"%s\"><b>%s</b></font></td></tr>\n",
		theme.Header, colspan, theme.Text, labelEscaper.Replace(t.Name))

	if mode != ModeCollapsed {
		for _, c := range t.Columns {
			name := columnLabel(c)
			if mode == ModeFull {
				fmt.Fprintf(b, "      <tr><td align=\"left\"><font color=\"%s\">%s&nbsp;</font></td>\n", theme.Item, name)
				fmt.Fprintf(b, "        <td align=\"left\"><font color=\"%s\">%s</font></td></tr>\n", theme.Item, labelEscaper.Replace(c.DataType))
			} else {
				fmt.Fprintf(b, "      <tr><td align=\"left\"><font color=\"%s\">%s</font></td></tr>\n", theme.Item, name)
			}
		}
	}

	b.WriteString("    </table>>\n  ]\n")
}

// columnLabel decorates a column name: underlined when part of the primary
// key, italic when a foreign key, then "*" if nullable, " I" if identity and
// " U" if unique.
func columnLabel(c *schema.Column) string {
	name := labelEscaper.Replace(c.Name)
	if c.IsPK {
		name = "<u>" + name + "</u>"
	}
	if c.FKOf != nil {
		name = "<i>" + name + "</i>"
	}
	if c.Nullable {
		name += "*"
	}
	if c.Identity {
		name += " I"
	}
	if c.IsUnique {
		name += " U"
	}
	return name
}

// writeEdges draws one edge per foreign key constraint, from the child table
// to the parent. The first member column decides the style: dashed when
// nullable, and no crow's foot when it shares the parent's whole primary key.
func writeEdges(b *strings.Builder, m *schema.Model, t *schema.Table, theme Theme) {
	for _, fk := range t.FKs.All() {
		if len(fk.Columns) == 0 || fk.Columns[0].FKOf == nil {
			continue
		}
		first := fk.Columns[0]
		parent, _ := m.Resolve(*first.FKOf)
		if parent == nil {
			continue
		}

		dashed := ""
		if first.Nullable {
			dashed = " style=\"dashed\""
		}
		arrow := " arrowtail=\"crow\""
		if first.IsPK && len(t.PKs) == len(parent.PKs) {
			arrow = ""
		}

		fmt.Fprintf(b, "  %s -> %s [ penwidth=\"%s\" color=\"%s\"%s%s ]\n",
			t.Label, parent.Label, theme.EdgeWidth, theme.EdgeColor, dashed, arrow)
	}
}
