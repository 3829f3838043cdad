package worldgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/world"
)

func TestDefaultSettingsAreValid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"empty name", func(s *Settings) { s.Name = "  " }, "name"},
		{"ocean too low", func(s *Settings) { s.OceanCoverage = 0.01 }, "ocean_coverage"},
		{"ocean too high", func(s *Settings) { s.OceanCoverage = 0.99 }, "ocean_coverage"},
		{"no continents", func(s *Settings) { s.Continents = 0 }, "continents"},
		{"too many continents", func(s *Settings) { s.Continents = 101 }, "continents"},
		{"negative river density", func(s *Settings) { s.RiverDensity = -0.1 }, "river_density"},
		{"river density above one", func(s *Settings) { s.RiverDensity = 1.5 }, "river_density"},
		{"columns without rows", func(s *Settings) { s.Columns = 10 }, "columns/rows"},
		{"no plates", func(s *Settings) { s.Plates = 0 }, "plates"},
		{"negative nations", func(s *Settings) { s.Nations.Count = -1 }, "nations.count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			var se *SettingsError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestValidateBoundariesAreInclusive(t *testing.T) {
	s := DefaultSettings()
	s.OceanCoverage = MinOceanCoverage
	s.Continents = MaxContinents
	s.RiverDensity = MaxRiverDensity
	assert.NoError(t, s.Validate())
}

func TestValidateReportsEveryProblem(t *testing.T) {
	s := DefaultSettings()
	s.Name = ""
	s.Continents = 0
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "continents")
}

func TestDimensions(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, world.DimensionsFor(world.SizeMedium), s.Dimensions())
	assert.Equal(t, "medium", s.SizeLabel())

	s.Columns, s.Rows = 40, 30
	assert.Equal(t, 1200, s.Dimensions().ProvinceCount())
	assert.Equal(t, "custom 40x30", s.SizeLabel())
}

func TestSettingsYAMLRoundTrip(t *testing.T) {
	s := DefaultSettings()
	s.Name = "Archipelago"
	s.Seed = 1234
	s.Size = world.SizeLarge
	s.OceanCoverage = 0.8

	data, err := s.YAML()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	got, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLoadSettingsAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Pangaea\ncontinents: 1\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "Pangaea", s.Name)
	assert.Equal(t, 1, s.Continents)
	assert.Equal(t, 0.6, s.OceanCoverage)
	assert.Equal(t, 12, s.Plates)
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ocean_coverage: 2\n"), 0o644))

	_, err := LoadSettings(path)
	var se *SettingsError
	assert.ErrorAs(t, err, &se)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
