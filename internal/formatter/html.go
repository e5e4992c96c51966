package formatter

import (
	"io"
	"strings"
)

// HTMLFormatter wraps DOT text in a page that renders it with d3-graphviz
type HTMLFormatter struct {
	writer io.Writer
}

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(w io.Writer) *HTMLFormatter {
	return &HTMLFormatter{writer: w}
}

// Format writes the page for the given DOT text
func (f *HTMLFormatter) Format(dot string) error {
	_, err := io.WriteString(f.writer, RenderHTML(dot))
	return err
}

const htmlHead = `<!DOCTYPE html><html>
<head><meta charset="utf-8"></head>
<body><script src="https://d3js.org/d3.v5.min.js"></script>
<script src="https://unpkg.com/@hpcc-js/wasm@0.3.11/dist/index.min.js"></script>
<script src="https://unpkg.com/d3-graphviz@3.0.5/build/d3-graphviz.js"></script>
<div id="graph" style="text-align: center;"></div>
<script>
var graphviz = d3.select("#graph").graphviz()
   .on("initEnd", () => { graphviz.renderDot(d3.select("#digraph").text()); });
</script>
<textarea id="digraph" style="display:none; height:0px;">
`

const htmlTail = `</textarea></body></html>`

// RenderHTML returns the page. The DOT text is embedded verbatim in a hidden
// textarea and parsed client-side.
func RenderHTML(dot string) string {
	var b strings.Builder
	b.Grow(len(htmlHead) + len(dot) + len(htmlTail))
	b.WriteString(htmlHead)
	b.WriteString(dot)
	b.WriteString(htmlTail)
	return b.String()
}
