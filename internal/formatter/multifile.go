package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tordrt/erdviewer/internal/schema"
)

// MultiFileFormatter writes the DDL script and every diagram variant to a
// directory:
//
//	<database>.<schema>.sql
//	<database>.<schema>-relationships.dot / .html
//	<database>.<schema>-full.dot / .html
//	<database>.<schema>-columns.dot / .html
type MultiFileFormatter struct {
	OutputDir string
	Database  string
	Schema    string
	Theme     Theme
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, database, schemaName string, theme Theme) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir: outputDir,
		Database:  database,
		Schema:    schemaName,
		Theme:     theme,
	}
}

// BaseName returns the common file name prefix
func (f *MultiFileFormatter) BaseName() string {
	return f.Database + "." + f.Schema
}

// Files returns the names of the files Format writes, relative to OutputDir
func (f *MultiFileFormatter) Files() []string {
	base := f.BaseName()
	files := []string{base + ".sql"}
	for _, mode := range Modes {
		files = append(files, base+mode.Suffix()+".dot", base+mode.Suffix()+".html")
	}
	return files
}

// Format writes all files. Both names must be set since they form the file
// names and the script's use schema statement.
func (f *MultiFileFormatter) Format(m *schema.Model) error {
	if f.Database == "" || f.Schema == "" {
		return fmt.Errorf("database and schema name are required for output file names (got %q, %q)", f.Database, f.Schema)
	}

	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	base := filepath.Join(f.OutputDir, f.BaseName())

	script := RenderSQL(m, schema.UseSchemaStatement(f.Database, f.Schema))
	if err := writeFile(base+".sql", script); err != nil {
		return fmt.Errorf("failed to write script: %w", err)
	}

	for _, mode := range Modes {
		name := base + mode.Suffix()
		dot := RenderDot(m, f.Theme, ModeFromName(name))
		if err := writeFile(name+".dot", dot); err != nil {
			return fmt.Errorf("failed to write %s diagram: %w", mode, err)
		}
		if err := writeFile(name+".html", RenderHTML(dot)); err != nil {
			return fmt.Errorf("failed to write %s page: %w", mode, err)
		}
	}

	return nil
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}
