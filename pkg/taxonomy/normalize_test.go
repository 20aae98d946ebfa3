package taxonomy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Underscore separator", input: "food_drink", want: "FOOD-DRINK"},
		{name: "Padded with inner space", input: " Food Drink ", want: "FOOD-DRINK"},
		{name: "Double hyphen", input: "FOOD--DRINK", want: "FOOD-DRINK"},
		{name: "Already canonical", input: "GEN-01", want: "GEN-01"},
		{name: "Mixed separators", input: "ultra _ beast", want: "ULTRA-BEAST"},
		{name: "Leading and trailing hyphens", input: "-HK-MAIN-", want: "HK-MAIN"},
		{name: "Tabs and newlines", input: "\tdrg\nfir", want: "DRG-FIR"},
		{name: "Digits only", input: "00042", want: "00042"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantCandidate string
	}{
		{name: "Empty", input: "", wantCandidate: ""},
		{name: "Only underscores", input: "___", wantCandidate: ""},
		{name: "Only whitespace", input: "   ", wantCandidate: ""},
		{name: "Disallowed punctuation", input: "abc_def!", wantCandidate: "ABC-DEF!"},
		{name: "Ampersand", input: "Food & Drink", wantCandidate: "FOOD-&-DRINK"},
		{name: "Non ASCII letter", input: "pokémon", wantCandidate: "POKÉMON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			assert.Empty(t, got)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNormalization)

			var normErr *NormalizationError
			require.True(t, errors.As(err, &normErr))
			assert.Equal(t, tt.input, normErr.Input)
			assert.Equal(t, tt.wantCandidate, normErr.Candidate)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"food_drink", " Food Drink ", "FOOD--DRINK", "hk main", "gen_01", "POK-TYP", "a__b--c  d"}

	for _, input := range inputs {
		once, err := Normalize(input)
		require.NoError(t, err)

		twice, err := Normalize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", input)
		assert.True(t, IsCanonical(once))
	}
}

func TestMustNormalize_Panics(t *testing.T) {
	assert.Equal(t, "FIRE", MustNormalize("fire"))
	assert.Panics(t, func() { MustNormalize("!!") })
}

func TestIsCanonical(t *testing.T) {
	assert.True(t, IsCanonical("FOOD-DRINK"))
	assert.False(t, IsCanonical("FOOD_DRINK"))
	assert.False(t, IsCanonical("food-drink"))
	assert.False(t, IsCanonical("-FOOD"))
	assert.False(t, IsCanonical(""))
	assert.True(t, HasUnderscore("test_cat"))
	assert.False(t, HasUnderscore("TEST-CAT"))
}
