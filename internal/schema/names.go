package schema

import (
	"fmt"
	"regexp"
	"strings"
)

var bareName = regexp.MustCompile(`^[A-Z_0-9]*$`)

// QuoteName returns the SQL spelling of an identifier.
// Names made only of uppercase letters, digits and underscores are written
// bare and lowercased; anything else is double-quoted as is. Embedded double
// quotes are not escaped.
func QuoteName(name string) string {
	if bareName.MatchString(name) {
		return strings.ToLower(name)
	}
	return `"` + name + `"`
}

// UseSchemaStatement returns the statement that makes database.schemaName the
// current schema
func UseSchemaStatement(database, schemaName string) string {
	return fmt.Sprintf("use schema %s.%s", QuoteName(database), QuoteName(schemaName))
}
