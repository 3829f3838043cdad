package persistence

import (
	"database/sql"
	"errors"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/diagnostics"
	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/nations"
	"github.com/talgya/hexforge/internal/world"
	"github.com/talgya/hexforge/internal/worldgen"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testWorld() *worldgen.GeneratedWorld {
	s := worldgen.DefaultSettings()
	s.Name = "Stored"
	s.Seed = 31337
	s.Columns, s.Rows = 4, 3
	dims := s.Dimensions()

	provinces := make([]world.Province, dims.ProvinceCount())
	for id := range provinces {
		col, row := dims.ColRow(id)
		x, y := dims.HexPosition(col, row)
		p := world.Province{
			ID: id, Position: geom.V(x, y), Col: col, Row: row,
			Elevation: 0.3 + float64(id)*0.01, Terrain: world.TerrainForest, Plate: id % 2,
			Population: 1234.5, Agriculture: 1.25, Culture: world.CultureNorthern,
			Owner: nations.Unowned, Neighbors: dims.NeighborIndices(col, row),
			FreshWaterDistance: world.NoFreshWater,
		}
		if col == 3 {
			p.Terrain, p.Culture, p.Elevation = world.TerrainOcean, world.CultureNone, 0.02
		}
		if col == 0 {
			p.Owner = 0
			p.FreshWaterDistance = 2
		}
		provinces[id] = p
	}

	return &worldgen.GeneratedWorld{
		Settings:   s,
		Seed:       s.Seed,
		Dimensions: dims,
		SeaLevel:   0.15,
		Provinces:  provinces,
		Regions: []culture.Region{{
			Culture: world.CultureNorthern, Provinces: []int{0, 1, 2, 4, 5, 6, 8, 9, 10},
			Center: geom.V(-25, 4.5), Size: 9, CoastalAccess: true, StrategicValue: 0.62, Radius: 80,
		}},
		Political: &nations.Result{
			Nations: []nations.Nation{{
				ID: 0, Name: "Nordmark", Adjective: "Nordic", Culture: world.CultureNorthern,
				Capital: 4, Government: nations.GovCouncil, Color: color.RGBA{R: 200, G: 40, B: 90, A: 255},
				Treasury: 1000, TaxRate: 0.21, Stability: 0.75, Provinces: 3,
			}},
			Houses: []nations.House{{
				ID: 0, Nation: 0, Name: "Eisgard", FullName: "House Eisgard of Nordmark",
				Ruler: "Sigrid", RulerTitle: "Chancellor", Motto: "Ever Watchful",
				YearsInPower: 12, Legitimacy: 0.8, Prestige: 0.4,
			}},
			Territories: []nations.Territory{{ID: 0, Nation: 0, Provinces: []int{0, 4, 8}, Center: geom.V(-75, 0), IsCore: true}},
		},
		Elapsed: 2500 * time.Millisecond,
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveMeta("k", "v"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.GetMeta("k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetMeta("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, db.SaveMeta("last_seed", "1"))
	require.NoError(t, db.SaveMeta("last_seed", "2"))
	v, err := db.GetMeta("last_seed")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestLoadWorldEmpty(t *testing.T) {
	_, err := openTestDB(t).LoadWorld()
	assert.ErrorIs(t, err, ErrNoWorld)
}

func TestWorldRoundTrip(t *testing.T) {
	db := openTestDB(t)
	gw := testWorld()
	require.NoError(t, db.SaveWorld(gw))

	got, err := db.LoadWorld()
	require.NoError(t, err)

	assert.Equal(t, gw.Settings, got.Settings)
	assert.Equal(t, gw.Seed, got.Seed)
	assert.Equal(t, gw.Dimensions, got.Dimensions)
	assert.Equal(t, gw.SeaLevel, got.SeaLevel)
	assert.Equal(t, gw.Elapsed, got.Elapsed)
	assert.Equal(t, gw.Provinces, got.Provinces)
	assert.Equal(t, gw.Regions, got.Regions)
	assert.Equal(t, gw.Political.Nations, got.Political.Nations)
	assert.Equal(t, gw.Political.Houses, got.Political.Houses)
	assert.Equal(t, gw.Political.Territories, got.Political.Territories)
	assert.Equal(t, []int{0, -1, -1, -1, 0, -1, -1, -1, 0, -1, -1, -1}, got.Political.Owner)
	assert.Equal(t, 9, got.Stats.Land)
	assert.Nil(t, got.Climate)
}

func TestSaveWorldReplaces(t *testing.T) {
	db := openTestDB(t)
	gw := testWorld()
	require.NoError(t, db.SaveWorld(gw))

	gw.Settings.Name = "Second"
	gw.Provinces = gw.Provinces[:4]
	gw.Political = nil
	require.NoError(t, db.SaveWorld(gw))

	got, err := db.LoadWorld()
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Settings.Name)
	assert.Len(t, got.Provinces, 4)
	assert.Empty(t, got.Political.Nations)
	assert.Empty(t, got.Political.Houses)
}

func TestErrorContextRoundTrip(t *testing.T) {
	db := openTestDB(t)
	metrics := &diagnostics.GenerationMetrics{OceanPercentage: 97.5, TotalProvinces: 12, WorldSize: "small", GenerationTimeMS: 40}
	ec := diagnostics.FromGenerationError("generated world has no land", metrics, "WorldGeneration")
	require.NoError(t, ErrorSink{DB: db}.Save(ec))

	got, err := db.ErrorContext(ec.ID)
	require.NoError(t, err)
	assert.Equal(t, ec.ID, got.ID)
	assert.Equal(t, ec.ErrorMessage, got.ErrorMessage)
	assert.Equal(t, ec.ErrorType, got.ErrorType)
	assert.Equal(t, ec.GameState, got.GameState)
	assert.True(t, ec.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, metrics, got.GenerationMetrics)
	assert.Equal(t, ec.RecoverySuggestions, got.RecoverySuggestions)
}

func TestErrorContextWithoutMetrics(t *testing.T) {
	db := openTestDB(t)
	ec := diagnostics.FromGenerationError("task vanished", nil, "WorldGeneration")
	require.NoError(t, db.SaveErrorContext(ec))

	got, err := db.ErrorContext(ec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GenerationMetrics)
	assert.NotEmpty(t, got.RecoverySuggestions)

	_, err = db.ErrorContext("nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestRecentErrorContexts(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		ec := diagnostics.FromGenerationError("failure", nil, "WorldGeneration")
		ec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.SaveErrorContext(ec))
		ids = append(ids, ec.ID)
	}

	got, err := db.RecentErrorContexts(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[1], got[1].ID)
}
