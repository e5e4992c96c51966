package formatter

import (
	"fmt"
	"strings"
)

// Mode selects how much of each table a diagram shows
type Mode int

const (
	// ModeColumns lists column names
	ModeColumns Mode = iota
	// ModeCollapsed shows table names only
	ModeCollapsed
	// ModeFull lists column names and types
	ModeFull
)

// Modes in the order artifacts are written
var Modes = []Mode{ModeCollapsed, ModeFull, ModeColumns}

// Suffix returns the file name suffix of the mode
func (m Mode) Suffix() string {
	switch m {
	case ModeCollapsed:
		return "-relationships"
	case ModeFull:
		return "-full"
	default:
		return "-columns"
	}
}

func (m Mode) String() string {
	return strings.TrimPrefix(m.Suffix(), "-")
}

// ModeFromName derives the mode from an output name suffix
func ModeFromName(name string) Mode {
	switch {
	case strings.HasSuffix(name, "-relationships"):
		return ModeCollapsed
	case strings.HasSuffix(name, "-full"):
		return ModeFull
	default:
		return ModeColumns
	}
}

// ParseMode parses a mode given on the command line
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relationships", "collapsed":
		return ModeCollapsed, nil
	case "columns", "":
		return ModeColumns, nil
	case "full":
		return ModeFull, nil
	default:
		return ModeColumns, fmt.Errorf("invalid mode: %s (must be 'relationships', 'columns' or 'full')", s)
	}
}
