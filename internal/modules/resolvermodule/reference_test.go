package resolvermodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReference(t *testing.T) {
	ref, err := ParseReference("catalog:500")
	require.NoError(t, err)
	assert.Equal(t, "catalog", ref.Source)
	assert.Equal(t, "500", ref.ID)
	assert.Equal(t, "catalog:500", ref.String())
}

func TestParseReference_IDWithColon(t *testing.T) {
	// Only the first separator splits; native ids may contain colons.
	ref, err := ParseReference("catalog:ns:42")
	require.NoError(t, err)
	assert.Equal(t, "catalog", ref.Source)
	assert.Equal(t, "ns:42", ref.ID)
}

func TestParseReference_Invalid(t *testing.T) {
	invalid := []string{
		"",
		"catalog",
		"catalog:",
		":500",
		":",
		"  :  ",
	}

	for _, s := range invalid {
		_, err := ParseReference(s)
		assert.ErrorIs(t, err, ErrInvalidReference, "expected invalid: %q", s)
	}
}
