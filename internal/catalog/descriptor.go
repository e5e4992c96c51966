package catalog

import (
	"encoding/json"
	"fmt"
)

// TypeDescriptor is the JSON type object reported for a column, e.g.
// {"type":"FIXED","precision":38,"scale":0,"nullable":false}.
type TypeDescriptor struct {
	Type      string `json:"type" yaml:"type"`
	Nullable  bool   `json:"nullable" yaml:"nullable"`
	Fixed     *bool  `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	Length    *int   `json:"length,omitempty" yaml:"length,omitempty"`
	Precision *int   `json:"precision,omitempty" yaml:"precision,omitempty"`
	Scale     *int   `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// ParseTypeDescriptor decodes a column type descriptor
func ParseTypeDescriptor(raw string) (TypeDescriptor, error) {
	var d TypeDescriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return d, fmt.Errorf("invalid type descriptor %q: %w", raw, err)
	}
	if d.Type == "" {
		return d, fmt.Errorf("type descriptor %q has no type", raw)
	}
	return d, nil
}

// JSON encodes the descriptor the way the catalog reports it
func (d TypeDescriptor) JSON() string {
	b, _ := json.Marshal(d)
	return string(b)
}

// Int returns a pointer to v, for optional descriptor fields
func Int(v int) *int {
	return &v
}

// Bool returns a pointer to v, for optional descriptor fields
func Bool(v bool) *bool {
	return &v
}
