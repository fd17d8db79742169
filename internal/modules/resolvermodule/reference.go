package resolvermodule

import (
	"fmt"
	"strings"
)

// Reference is the canonical identifier for a title, independent of any
// specific content provider. It is a compound of the metadata catalog
// that issued the id and the id itself, e.g. "catalog:500".
type Reference struct {
	Source string
	ID     string
}

// ParseReference parses a "source:id" string into a Reference.
func ParseReference(s string) (Reference, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, s)
	}
	return Reference{
		Source: strings.TrimSpace(parts[0]),
		ID:     strings.TrimSpace(parts[1]),
	}, nil
}

// String returns the canonical source:id form.
func (r Reference) String() string {
	return r.Source + ":" + r.ID
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool {
	return r.Source == "" && r.ID == ""
}
