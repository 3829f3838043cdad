package worldgen

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/nations"
	"github.com/talgya/hexforge/internal/world"
)

// Validation ranges.
const (
	MinOceanCoverage = 0.05
	MaxOceanCoverage = 0.95
	MinContinents    = 1
	MaxContinents    = 100
	MinRiverDensity  = 0.0
	MaxRiverDensity  = 1.0
)

// Settings are the inputs to one generation run.
type Settings struct {
	Name          string          `yaml:"name" json:"name"`
	Seed          int64           `yaml:"seed" json:"seed"` // 0 picks a random seed
	Size          world.WorldSize `yaml:"size" json:"size"`
	Columns       int             `yaml:"columns,omitempty" json:"columns,omitempty"` // Overrides Size when both are set
	Rows          int             `yaml:"rows,omitempty" json:"rows,omitempty"`
	OceanCoverage float64         `yaml:"ocean_coverage" json:"ocean_coverage"`
	Continents    int             `yaml:"continents" json:"continents"`
	RiverDensity  float64         `yaml:"river_density" json:"river_density"`
	Plates        int             `yaml:"plates" json:"plates"`
	MinIslandSize int             `yaml:"min_island_size" json:"min_island_size"`

	Culture culture.Config `yaml:"culture" json:"culture"`
	Nations nations.Config `yaml:"nations" json:"nations"`
}

// DefaultSettings returns a balanced medium world.
func DefaultSettings() Settings {
	return Settings{
		Name:          "New World",
		Size:          world.SizeMedium,
		OceanCoverage: 0.6,
		Continents:    7,
		RiverDensity:  0.5,
		Plates:        12,
		MinIslandSize: 10,
		Culture:       culture.DefaultConfig(),
		Nations:       nations.DefaultConfig(),
	}
}

// Dimensions returns the grid for these settings.
func (s Settings) Dimensions() world.MapDimensions {
	if s.Columns > 0 && s.Rows > 0 {
		return world.NewDimensions(s.Columns, s.Rows, world.HexSize)
	}
	return world.DimensionsFor(s.Size)
}

// SizeLabel names the grid for logs and reports.
func (s Settings) SizeLabel() string {
	if s.Columns > 0 && s.Rows > 0 {
		return fmt.Sprintf("custom %dx%d", s.Columns, s.Rows)
	}
	return s.Size.String()
}

// SettingsError reports one invalid setting.
type SettingsError struct {
	Field  string
	Value  any
	Reason string
}

func (e *SettingsError) Error() string {
	return fmt.Sprintf("invalid setting %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Validate checks every setting and returns all problems joined.
func (s Settings) Validate() error {
	var errs []error
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, &SettingsError{"name", s.Name, "must not be empty"})
	}
	if s.OceanCoverage < MinOceanCoverage || s.OceanCoverage > MaxOceanCoverage {
		errs = append(errs, &SettingsError{"ocean_coverage", s.OceanCoverage,
			fmt.Sprintf("must be between %.2f and %.2f", MinOceanCoverage, MaxOceanCoverage)})
	}
	if s.Continents < MinContinents || s.Continents > MaxContinents {
		errs = append(errs, &SettingsError{"continents", s.Continents,
			fmt.Sprintf("must be between %d and %d", MinContinents, MaxContinents)})
	}
	if s.RiverDensity < MinRiverDensity || s.RiverDensity > MaxRiverDensity {
		errs = append(errs, &SettingsError{"river_density", s.RiverDensity,
			fmt.Sprintf("must be between %.1f and %.1f", MinRiverDensity, MaxRiverDensity)})
	}
	if (s.Columns > 0) != (s.Rows > 0) || s.Columns < 0 || s.Rows < 0 {
		errs = append(errs, &SettingsError{"columns/rows", fmt.Sprintf("%dx%d", s.Columns, s.Rows),
			"custom dimensions need both columns and rows"})
	}
	if s.Plates < 1 {
		errs = append(errs, &SettingsError{"plates", s.Plates, "must be at least 1"})
	}
	if s.Nations.Count < 0 {
		errs = append(errs, &SettingsError{"nations.count", s.Nations.Count, "must not be negative"})
	}
	return errors.Join(errs...)
}

// LoadSettings reads YAML settings from path on top of DefaultSettings and
// validates the result.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("read settings: %w", err)
	}
	return ParseSettings(data)
}

// ParseSettings decodes YAML on top of DefaultSettings and validates the
// result.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// YAML encodes s in the format LoadSettings reads.
func (s Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
