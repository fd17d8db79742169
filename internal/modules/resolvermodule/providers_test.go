package resolvermodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/medialog/internal/config"
)

func testRankings() *ProviderRankings {
	return NewProviderRankings(map[string][]config.ProviderEntry{
		"anime": {
			{Name: "aniwave", Working: true},
			{Name: "gogostream", Working: true},
			{Name: "zorotv", Working: false},
			{Name: "animepahe", Working: true},
		},
		"movie-tv": {
			{Name: "vidsrc", Working: false},
			{Name: "embedstream", Working: true},
		},
	})
}

func TestPrimaryProvider(t *testing.T) {
	r := testRankings()

	primary, err := r.PrimaryProvider("anime")
	require.NoError(t, err)
	assert.Equal(t, "aniwave", primary)

	// First working entry, not first entry
	primary, err = r.PrimaryProvider("movie-tv")
	require.NoError(t, err)
	assert.Equal(t, "embedstream", primary)
}

func TestPrimaryProvider_NoWorking(t *testing.T) {
	r := NewProviderRankings(map[string][]config.ProviderEntry{
		"anime": {{Name: "zorotv", Working: false}},
	})

	_, err := r.PrimaryProvider("anime")
	assert.Error(t, err)

	_, err = r.PrimaryProvider("unknown-category")
	assert.Error(t, err)
}

func TestFallbackChain(t *testing.T) {
	r := testRankings()

	chain := r.FallbackChain("anime", "")
	assert.Equal(t, []string{"aniwave", "gogostream", "animepahe"}, chain)
}

func TestFallbackChain_PreferredPromoted(t *testing.T) {
	r := testRankings()

	chain := r.FallbackChain("anime", "animepahe")
	assert.Equal(t, []string{"animepahe", "aniwave", "gogostream"}, chain)
}

func TestFallbackChain_BrokenPreferredIgnored(t *testing.T) {
	r := testRankings()

	// A broken provider is not promoted, and not included at all.
	chain := r.FallbackChain("anime", "zorotv")
	assert.Equal(t, []string{"aniwave", "gogostream", "animepahe"}, chain)
}
