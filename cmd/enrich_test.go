package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsage/plantenrich/internal/model"
)

func resetEnrichFlags() {
	enrichStates = nil
	enrichRegion = ""
	enrichAll = false
}

func TestResolveFilter_DefaultIsAll(t *testing.T) {
	resetEnrichFlags()

	spec, unmatched, err := resolveFilter()

	require.NoError(t, err)
	assert.Empty(t, unmatched)
	assert.Equal(t, model.FilterAll, spec.Kind)
}

func TestResolveFilter_Region(t *testing.T) {
	resetEnrichFlags()
	enrichRegion = "West"

	spec, _, err := resolveFilter()

	require.NoError(t, err)
	assert.Equal(t, model.FilterRegion, spec.Kind)
	assert.True(t, spec.Matches("CA"))
	assert.False(t, spec.Matches("NY"))
}

func TestResolveFilter_StatesWithUnknownCodes(t *testing.T) {
	resetEnrichFlags()
	enrichStates = []string{"ca", "ZZ", "NY"}

	spec, unmatched, err := resolveFilter()

	require.NoError(t, err)
	assert.Equal(t, []string{"ZZ"}, unmatched)
	assert.True(t, spec.Matches("CA"))
	assert.True(t, spec.Matches("NY"))
}

func TestResolveFilter_MutuallyExclusive(t *testing.T) {
	resetEnrichFlags()
	enrichAll = true
	enrichRegion = "south"

	_, _, err := resolveFilter()

	assert.Error(t, err)
}

func TestResolveFilter_UnknownRegion(t *testing.T) {
	resetEnrichFlags()
	enrichRegion = "pacific"

	_, _, err := resolveFilter()

	assert.Error(t, err)
}
