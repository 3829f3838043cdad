package diagnostics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
)

// DefaultDir is where error reports land unless configured otherwise.
const DefaultDir = "./error_logs"

// ErrorType routes an error report.
type ErrorType string

const (
	ErrorWorldGeneration ErrorType = "worldgen"
	ErrorRiverGeneration ErrorType = "river"
	ErrorMeshBuilding    ErrorType = "mesh"
	ErrorSaveLoad        ErrorType = "saveload"
)

// ErrorContext is everything known about one failure.
type ErrorContext struct {
	ID                  string             `json:"id"`
	ErrorMessage        string             `json:"error_message"`
	ErrorType           ErrorType          `json:"error_type"`
	Timestamp           time.Time          `json:"timestamp"`
	GameState           string             `json:"game_state"`
	GenerationMetrics   *GenerationMetrics `json:"generation_metrics,omitempty"`
	RecoverySuggestions []string           `json:"recovery_suggestions"`
}

// FromGenerationError builds the report for a failed generation run.
// metrics may be nil.
func FromGenerationError(message string, metrics *GenerationMetrics, gameState string) *ErrorContext {
	return &ErrorContext{
		ID:                  uuid.NewString(),
		ErrorMessage:        message,
		ErrorType:           ErrorWorldGeneration,
		Timestamp:           time.Now(),
		GameState:           gameState,
		GenerationMetrics:   metrics,
		RecoverySuggestions: Suggestions(metrics),
	}
}

// Suggestions proposes setting changes from what the metrics show. Without
// a specific finding it falls back to two general hints.
func Suggestions(m *GenerationMetrics) []string {
	var out []string
	if m != nil {
		if m.OceanPercentage > 95 {
			out = append(out, "Try reducing ocean coverage to 60% or less")
		}
		if m.OceanPercentage < 5 {
			out = append(out, "Try increasing ocean coverage to at least 40%")
		}
		if m.RiverSourcesFound == 0 && m.MountainCount == 0 {
			out = append(out, "No mountains found for rivers. Try reducing ocean coverage or changing the seed")
		}
		if m.ElevationRange() < 0.1 {
			out = append(out, "Elevation range too flat. Try a different seed or adjust continent count")
		}
	}
	if len(out) == 0 {
		out = append(out,
			"Try using different world generation settings",
			"Consider using a different seed value",
		)
	}
	return out
}

// FileName is the report's file name, unique per report.
func (c *ErrorContext) FileName() string {
	short := strings.ReplaceAll(c.ID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("error_%s_%s_%s.json", c.ErrorType, strftime.Format("%Y%m%d_%H%M%S", c.Timestamp), short)
}

// SaveToFile writes the report as indented JSON under dir, creating dir if
// needed, and returns the file's path.
func (c *ErrorContext) SaveToFile(dir string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create error log dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode error context: %w", err)
	}
	path := filepath.Join(dir, c.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write error context: %w", err)
	}
	slog.Info("error context saved", "path", path)
	return path, nil
}

// FormatForDisplay renders the report for the failure screen.
func (c *ErrorContext) FormatForDisplay() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %s\n", c.ErrorMessage)
	fmt.Fprintf(&b, "Type: %s\n", c.ErrorType)

	if m := c.GenerationMetrics; m != nil {
		b.WriteString("\nWorld Generation Details:\n")
		fmt.Fprintf(&b, "  • Ocean Coverage: %.1f%%\n", m.OceanPercentage)
		fmt.Fprintf(&b, "  • Land Coverage: %.1f%%\n", m.LandPercentage)
		fmt.Fprintf(&b, "  • Sea Level: %.3f\n", m.SeaLevel)
		fmt.Fprintf(&b, "  • Elevation Range: %.3f to %.3f\n", m.ElevationMin, m.ElevationMax)
		fmt.Fprintf(&b, "  • River Sources Found: %s\n", humanize.Comma(int64(m.RiverSourcesFound)))
		fmt.Fprintf(&b, "  • Mountains: %s\n", humanize.Comma(int64(m.MountainCount)))
		fmt.Fprintf(&b, "  • Provinces: %s\n", humanize.Comma(int64(m.TotalProvinces)))
		fmt.Fprintf(&b, "  • Generation Time: %s\n", time.Duration(m.GenerationTimeMS)*time.Millisecond)
		fmt.Fprintf(&b, "  • World Size: %s\n", m.WorldSize)
	}

	if len(c.RecoverySuggestions) > 0 {
		b.WriteString("\nSuggested Solutions:\n")
		for i, s := range c.RecoverySuggestions {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
		}
	}
	return b.String()
}

// FormatForIssue renders the report as a Markdown bug report body.
func (c *ErrorContext) FormatForIssue() string {
	var b strings.Builder
	b.WriteString("## Error Report\n\n")
	fmt.Fprintf(&b, "**Error Message:** %s\n", c.ErrorMessage)
	fmt.Fprintf(&b, "**Error Type:** %s\n", c.ErrorType)
	fmt.Fprintf(&b, "**Game State:** %s\n", c.GameState)
	fmt.Fprintf(&b, "**Timestamp:** %s (%s)\n\n", c.Timestamp.Format(time.RFC3339), humanize.Time(c.Timestamp))

	if c.GenerationMetrics != nil {
		b.WriteString("## World Generation Metrics\n\n```json\n")
		if data, err := json.MarshalIndent(c.GenerationMetrics, "", "  "); err == nil {
			b.Write(data)
		}
		b.WriteString("\n```\n\n")
	}

	b.WriteString("## System Information\n\n")
	fmt.Fprintf(&b, "- Platform: %s\n", runtime.GOOS)
	fmt.Fprintf(&b, "- Architecture: %s\n", runtime.GOARCH)
	return b.String()
}

// FileSink writes every report it receives to Dir.
type FileSink struct {
	Dir string
}

// Save implements the generation orchestrator's diagnostics sink.
func (s FileSink) Save(c *ErrorContext) error {
	_, err := c.SaveToFile(s.Dir)
	return err
}

// Saver is anything that can persist an ErrorContext.
type Saver interface {
	Save(*ErrorContext) error
}

// Tee saves to every sink in order and returns the first error; later
// sinks still run.
type Tee []Saver

func (t Tee) Save(c *ErrorContext) error {
	var first error
	for _, s := range t {
		if err := s.Save(c); err != nil && first == nil {
			first = err
		}
	}
	return first
}
