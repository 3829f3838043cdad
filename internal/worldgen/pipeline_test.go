package worldgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/nations"
	"github.com/talgya/hexforge/internal/world"
)

func smallSettings() Settings {
	s := DefaultSettings()
	s.Name = "Smallworld"
	s.Seed = 2024
	s.Columns, s.Rows = 24, 16
	s.OceanCoverage = 0.3
	s.Plates = 4
	s.MinIslandSize = 3
	s.Nations.Count = 2
	return s
}

func TestGenerateSmallWorld(t *testing.T) {
	var steps []Progress
	gw, err := Generate(context.Background(), smallSettings(), func(p Progress) { steps = append(steps, p) })
	require.NoError(t, err)

	require.Len(t, gw.Provinces, 24*16)
	assert.Equal(t, int64(2024), gw.Seed)
	assert.Positive(t, gw.Stats.Land)
	assert.Equal(t, len(gw.Provinces), gw.Climate.Len())

	for i, p := range gw.Provinces {
		assert.Equal(t, i, p.ID)
		assert.GreaterOrEqual(t, p.Elevation, 0.0)
		assert.LessOrEqual(t, p.Elevation, 1.0)
		assert.True(t, p.HasCulture(), "province %d has no culture", i)
		if p.IsOcean() {
			assert.Equal(t, nations.Unowned, p.Owner)
		}
		if p.Owner != nations.Unowned {
			assert.Less(t, p.Owner, len(gw.Political.Nations))
		}
	}

	require.NotEmpty(t, steps)
	assert.Equal(t, MilestoneStart.Step, steps[0].Step)
	assert.Equal(t, MilestoneNations.Step, steps[len(steps)-1].Step)
	for i := 1; i < len(steps); i++ {
		assert.Greater(t, steps[i].Fraction, steps[i-1].Fraction)
	}
	for _, p := range steps {
		assert.False(t, p.Terminal())
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(context.Background(), smallSettings(), nil)
	require.NoError(t, err)
	b, err := Generate(context.Background(), smallSettings(), nil)
	require.NoError(t, err)

	require.Equal(t, len(a.Provinces), len(b.Provinces))
	for i := range a.Provinces {
		assert.Equal(t, a.Provinces[i].Terrain, b.Provinces[i].Terrain)
		assert.Equal(t, a.Provinces[i].Elevation, b.Provinces[i].Elevation)
		assert.Equal(t, a.Provinces[i].Culture, b.Provinces[i].Culture)
		assert.Equal(t, a.Provinces[i].Owner, b.Provinces[i].Owner)
	}
	assert.Equal(t, len(a.Regions), len(b.Regions))
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, smallSettings(), nil)
	require.ErrorIs(t, err, ErrCancelled)

	var ge *GenerationError
	require.ErrorAs(t, err, &ge)
	require.NotNil(t, ge.Metrics)
	assert.Equal(t, "custom 24x16", ge.Metrics.WorldSize)
}

func TestGenerateInvalidSettings(t *testing.T) {
	s := smallSettings()
	s.RiverDensity = 3
	_, err := Generate(context.Background(), s, nil)

	var se *SettingsError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "river_density", se.Field)
	assert.False(t, errors.Is(err, ErrCancelled))
}

func TestGeneratedWorldCoversTerrains(t *testing.T) {
	gw, err := Generate(context.Background(), smallSettings(), nil)
	require.NoError(t, err)
	counts := world.TerrainCounts(gw.Provinces)
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, len(gw.Provinces), total)
}
