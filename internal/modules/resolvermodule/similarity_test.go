package resolvermodule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases", "Attack On Titan", "attack on titan"},
		{"strips punctuation", "Re:Zero - Starting Life!", "rezero starting life"},
		{"collapses whitespace", "  Death   Note  ", "death note"},
		{"keeps digits", "Mob Psycho 100", "mob psycho 100"},
		{"empty", "", ""},
		{"only punctuation", "?!.,", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestSimilarity_Identity(t *testing.T) {
	titles := []string{
		"Attack on Titan",
		"Naruto",
		"mob psycho 100",
		"The Office (US)",
		"Steins;Gate",
	}

	for _, title := range titles {
		assert.Equal(t, 1.0, Similarity(title, title), "identity failed for %q", title)
	}
}

func TestSimilarity_Symmetry(t *testing.T) {
	pairs := [][2]string{
		{"Attack on Titan", "Attack no Titan OVA"},
		{"Naruto", "Naruto Season 2"},
		{"Death Note", "Sword Art Online"},
		{"One Piece", ""},
	}

	for _, pair := range pairs {
		assert.Equal(t, Similarity(pair[0], pair[1]), Similarity(pair[1], pair[0]),
			"symmetry failed for %q vs %q", pair[0], pair[1])
	}
}

func TestSimilarity_Bounds(t *testing.T) {
	pairs := [][2]string{
		{"Attack on Titan", "Attack no Titan OVA"},
		{"Naruto", "Naruto Season 2"},
		{"x", "y"},
		{"", ""},
		{"a b c d e", "f g h i j"},
		{"The Melancholy of Haruhi Suzumiya", "Haruhi"},
	}

	for _, pair := range pairs {
		s := Similarity(pair[0], pair[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestSimilarity_SubstringRule(t *testing.T) {
	// "naruto" is 6 chars, "naruto season 2" is 15 after normalization,
	// so the score is the length ratio. Low enough to not look like the
	// same entry, high enough to surface as a suspected duplicate.
	s := Similarity("Naruto Season 2", "Naruto")
	assert.InDelta(t, 6.0/15.0, s, 0.0001)
	assert.Less(t, s, 0.9)
	assert.GreaterOrEqual(t, s, 0.3)
}

func TestSimilarity_WordOverlap(t *testing.T) {
	// No substring relation: {attack, on, titan} vs
	// {attack, no, titan, ova} share two words out of max four.
	s := Similarity("Attack on Titan", "Attack no Titan OVA")
	assert.InDelta(t, 0.5, s, 0.0001)
}

func TestSimilarity_ExactBeatsVariant(t *testing.T) {
	query := "Attack on Titan"

	exact := Similarity(query, "Attack on Titan")
	variant := Similarity(query, "Attack no Titan OVA")

	assert.Equal(t, 1.0, exact)
	assert.Greater(t, exact, variant)
}

func TestSimilarity_EmptyTokenSets(t *testing.T) {
	// Single-character tokens are dropped, leaving nothing to compare.
	assert.Equal(t, 0.0, Similarity("a b", "c d"))
	assert.Equal(t, 0.0, Similarity("", "Naruto"))
}

func TestScoreCandidates(t *testing.T) {
	candidates := []Candidate{
		{ID: "1", Title: "Attack no Titan OVA", MediaType: "ova"},
		{ID: "2", Title: "Attack on Titan", MediaType: "tv"},
		{ID: "3", Title: "Attack on Titan: Junior High", MediaType: "tv"},
	}

	scored := scoreCandidates(candidates, "Attack on Titan", "")

	assert.Len(t, scored, 3)
	assert.Equal(t, "2", scored[0].ID)
	assert.Equal(t, 1.0, scored[0].Score)
	// Ranked best-first
	for i := 1; i < len(scored); i++ {
		assert.LessOrEqual(t, scored[i].Score, scored[i-1].Score)
	}
}

func TestScoreCandidates_TypeHintBonus(t *testing.T) {
	candidates := []Candidate{
		{ID: "movie", Title: "Your Name", MediaType: "movie"},
		{ID: "tv", Title: "Your Name", MediaType: "tv"},
	}

	scored := scoreCandidates(candidates, "Your Name", "movie")

	assert.Equal(t, "movie", scored[0].ID)
	// Both are exact title matches; the bonus cannot push past 1.0.
	assert.Equal(t, 1.0, scored[0].Score)

	scored = scoreCandidates([]Candidate{
		{ID: "a", Title: "Your Name the Movie", MediaType: "movie"},
		{ID: "b", Title: "Your Name the Movie", MediaType: "tv"},
	}, "Your Name", "movie")
	assert.Equal(t, "a", scored[0].ID)
	assert.InDelta(t, typeHintBonus, scored[0].Score-scored[1].Score, 0.0001)
}
