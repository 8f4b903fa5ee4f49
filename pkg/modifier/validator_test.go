package modifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mod(text, spectrum string, intensity Intensity) Modifier {
	return Modifier{Text: text, Spectrum: spectrum, Intensity: intensity}
}

func TestValidate_Contradictions(t *testing.T) {
	rules := Rules{Contradictions: []ContradictionRule{{A: "highly anxious", B: "calm"}}}
	policy := Policy{IntensitySpreadLimit: Unbounded}

	set := []Modifier{
		mod("highly anxious", "e/anxiety", IntensityExtreme),
		mod("calm", "e/stability", IntensityMild),
	}
	res := Validate(set, rules, policy)
	assert.False(t, res.OK)
	assert.Equal(t, 1, res.Contradictions)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0], "contradiction")

	// Order within the pair must not matter.
	res = Validate([]Modifier{set[1], set[0]}, rules, policy)
	assert.Equal(t, 1, res.Contradictions)
}

func TestValidate_ContradictionBySpectrumID(t *testing.T) {
	rules := Rules{Contradictions: []ContradictionRule{{A: "e/anxiety", B: "e/stability"}}}
	policy := Policy{IntensitySpreadLimit: Unbounded}

	set := []Modifier{
		mod("mildly anxious", "e/anxiety", IntensityMild),
		mod("calm", "e/stability", IntensityMild),
	}
	res := Validate(set, rules, policy)
	assert.False(t, res.OK)
	assert.Equal(t, 1, res.Contradictions)
}

func TestValidate_IntensitySpread(t *testing.T) {
	rules := Rules{}
	set := []Modifier{
		mod("mildly anxious", "e/anxiety", IntensityMild),
		mod("highly defensive", "c/defensiveness", IntensityExtreme),
	}

	res := Validate(set, rules, Policy{IntensitySpreadLimit: 1})
	assert.False(t, res.OK)
	assert.Equal(t, 3, res.Spread)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0], "intensity spread")

	res = Validate(set, rules, Policy{IntensitySpreadLimit: 3})
	assert.True(t, res.OK)

	res = Validate(set, rules, Policy{IntensitySpreadLimit: Unbounded})
	assert.True(t, res.OK)
}

func TestValidate_EmptyAndSingleton(t *testing.T) {
	policy := Policy{IntensitySpreadLimit: 1}

	res := Validate(nil, Rules{}, policy)
	assert.True(t, res.OK)
	assert.Zero(t, res.Spread)

	res = Validate([]Modifier{mod("calm", "e/stability", IntensityMild)}, Rules{}, policy)
	assert.True(t, res.OK)
}
