package importer

import (
	"fmt"
	"strings"

	"github.com/tordrt/erdviewer/internal/catalog"
)

// NormalizeType returns the canonical lowercase spelling of a column type,
// including its length or precision and scale.
//
//	FIXED                      -> number
//	TEXT, fixed                -> char(length)
//	TEXT, not fixed            -> varchar(length)
//	T, precision 0, scale s    -> t(s), timestamp_ntz(9) -> timestamp
//	NUMBER(38,0)               -> int
//	NUMBER(p,0)                -> int(p)
//	T(p,s)                     -> t(p,s)
func NormalizeType(d catalog.TypeDescriptor) string {
	t := d.Type
	if t == "FIXED" {
		t = "NUMBER"
	} else if d.Fixed != nil && t == "TEXT" {
		if *d.Fixed {
			t = "CHAR"
		} else {
			t = "VARCHAR"
		}
	}

	precision := 0
	if d.Precision != nil {
		precision = *d.Precision
	}

	switch {
	case d.Length != nil:
		t = fmt.Sprintf("%s(%d)", t, *d.Length)
	case d.Scale == nil:
	case precision == 0:
		t = fmt.Sprintf("%s(%d)", t, *d.Scale)
		if t == "TIMESTAMP_NTZ(9)" {
			t = "TIMESTAMP"
		}
	case *d.Scale == 0:
		if t == "NUMBER" {
			t = "INT"
			if precision != 38 {
				t = fmt.Sprintf("INT(%d)", precision)
			}
		} else {
			t = fmt.Sprintf("%s(%d)", t, precision)
		}
	default:
		t = fmt.Sprintf("%s(%d,%d)", t, precision, *d.Scale)
	}

	return strings.ToLower(t)
}
