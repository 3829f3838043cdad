// Package persistence stores generated worlds and failure reports in SQLite.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/nations"
	"github.com/talgya/hexforge/internal/world"
	"github.com/talgya/hexforge/internal/worldgen"
)

// ErrNoWorld is returned by LoadWorld when nothing has been saved yet.
var ErrNoWorld = errors.New("no world saved")

// Meta keys.
const (
	metaSettings = "settings"
	metaSeed     = "seed"
	metaSeaLevel = "sea_level"
	metaElapsed  = "generation_ms"
	metaSavedAt  = "saved_at"
)

// DB wraps a SQLite connection.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = path
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS provinces (
		id INTEGER PRIMARY KEY,
		grid_col INTEGER NOT NULL,
		grid_row INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL,
		elevation REAL NOT NULL,
		terrain INTEGER NOT NULL,
		plate INTEGER NOT NULL,
		population REAL NOT NULL,
		agriculture REAL NOT NULL,
		culture INTEGER NOT NULL,
		owner INTEGER NOT NULL,
		fresh_water REAL NOT NULL,
		neighbors_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS regions (
		ordinal INTEGER PRIMARY KEY,
		culture INTEGER NOT NULL,
		size INTEGER NOT NULL,
		center_x REAL NOT NULL,
		center_y REAL NOT NULL,
		coastal_access INTEGER NOT NULL,
		strategic_value REAL NOT NULL,
		radius REAL NOT NULL,
		is_island INTEGER NOT NULL,
		provinces_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS nations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		adjective TEXT NOT NULL,
		culture INTEGER NOT NULL,
		capital INTEGER NOT NULL,
		government INTEGER NOT NULL,
		color INTEGER NOT NULL,
		treasury REAL NOT NULL,
		tax_rate REAL NOT NULL,
		stability REAL NOT NULL,
		provinces INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS houses (
		id INTEGER PRIMARY KEY,
		nation_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		full_name TEXT NOT NULL,
		ruler TEXT NOT NULL,
		ruler_title TEXT NOT NULL,
		motto TEXT NOT NULL,
		years_in_power INTEGER NOT NULL,
		legitimacy REAL NOT NULL,
		prestige REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS territories (
		id INTEGER PRIMARY KEY,
		nation_id INTEGER NOT NULL,
		is_core INTEGER NOT NULL,
		center_x REAL NOT NULL,
		center_y REAL NOT NULL,
		provinces_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS error_contexts (
		id TEXT PRIMARY KEY,
		error_type TEXT NOT NULL,
		message TEXT NOT NULL,
		game_state TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		metrics_json TEXT,
		suggestions_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_provinces_owner ON provinces(owner);
	CREATE INDEX IF NOT EXISTS idx_houses_nation ON houses(nation_id);
	CREATE INDEX IF NOT EXISTS idx_territories_nation ON territories(nation_id);
	CREATE INDEX IF NOT EXISTS idx_error_contexts_time ON error_contexts(timestamp);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorld replaces the stored world with gw.
func (db *DB) SaveWorld(gw *worldgen.GeneratedWorld) error {
	pol := gw.Political
	if pol == nil {
		pol = &nations.Result{}
	}
	slog.Info("saving world", "name", gw.Settings.Name,
		"provinces", humanize.Comma(int64(len(gw.Provinces))),
		"regions", len(gw.Regions), "nations", len(pol.Nations))

	settings, err := gw.Settings.YAML()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveProvinces(tx, gw.Provinces); err != nil {
		return fmt.Errorf("save provinces: %w", err)
	}
	if err := saveRegions(tx, gw.Regions); err != nil {
		return fmt.Errorf("save regions: %w", err)
	}
	if err := saveNations(tx, pol.Nations); err != nil {
		return fmt.Errorf("save nations: %w", err)
	}
	if err := saveHouses(tx, pol.Houses); err != nil {
		return fmt.Errorf("save houses: %w", err)
	}
	if err := saveTerritories(tx, pol.Territories); err != nil {
		return fmt.Errorf("save territories: %w", err)
	}

	meta := map[string]string{
		metaSettings: string(settings),
		metaSeed:     strconv.FormatInt(gw.Seed, 10),
		metaSeaLevel: strconv.FormatFloat(gw.SeaLevel, 'g', -1, 64),
		metaElapsed:  strconv.FormatInt(gw.Elapsed.Milliseconds(), 10),
		metaSavedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world saved", "name", gw.Settings.Name)
	return nil
}

func saveProvinces(tx *sqlx.Tx, provinces []world.Province) error {
	if _, err := tx.Exec("DELETE FROM provinces"); err != nil {
		return err
	}
	stmt, err := tx.Preparex(`INSERT INTO provinces
		(id, grid_col, grid_row, x, y, elevation, terrain, plate, population, agriculture,
		 culture, owner, fresh_water, neighbors_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range provinces {
		p := &provinces[i]
		neighbors, _ := json.Marshal(p.Neighbors)
		_, err := stmt.Exec(
			p.ID, p.Col, p.Row, p.Position.X, p.Position.Y,
			p.Elevation, int(p.Terrain), p.Plate, p.Population, p.Agriculture,
			int(p.Culture), p.Owner, p.FreshWaterDistance, string(neighbors),
		)
		if err != nil {
			return fmt.Errorf("insert province %d: %w", p.ID, err)
		}
	}
	return nil
}

func saveRegions(tx *sqlx.Tx, regions []culture.Region) error {
	if _, err := tx.Exec("DELETE FROM regions"); err != nil {
		return err
	}
	for i, r := range regions {
		members, _ := json.Marshal(r.Provinces)
		_, err := tx.Exec(`INSERT INTO regions
			(ordinal, culture, size, center_x, center_y, coastal_access,
			 strategic_value, radius, is_island, provinces_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, int(r.Culture), r.Size, r.Center.X, r.Center.Y, r.CoastalAccess,
			r.StrategicValue, r.Radius, r.IsIsland, string(members),
		)
		if err != nil {
			return fmt.Errorf("insert region %d: %w", i, err)
		}
	}
	return nil
}

func saveNations(tx *sqlx.Tx, list []nations.Nation) error {
	if _, err := tx.Exec("DELETE FROM nations"); err != nil {
		return err
	}
	for _, n := range list {
		_, err := tx.Exec(`INSERT INTO nations
			(id, name, adjective, culture, capital, government, color,
			 treasury, tax_rate, stability, provinces)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Name, n.Adjective, int(n.Culture), n.Capital, int(n.Government), int64(packColor(n.Color)),
			n.Treasury, n.TaxRate, n.Stability, n.Provinces,
		)
		if err != nil {
			return fmt.Errorf("insert nation %d: %w", n.ID, err)
		}
	}
	return nil
}

func saveHouses(tx *sqlx.Tx, list []nations.House) error {
	if _, err := tx.Exec("DELETE FROM houses"); err != nil {
		return err
	}
	for _, h := range list {
		_, err := tx.Exec(`INSERT INTO houses
			(id, nation_id, name, full_name, ruler, ruler_title, motto,
			 years_in_power, legitimacy, prestige)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			h.ID, h.Nation, h.Name, h.FullName, h.Ruler, h.RulerTitle, h.Motto,
			h.YearsInPower, h.Legitimacy, h.Prestige,
		)
		if err != nil {
			return fmt.Errorf("insert house %d: %w", h.ID, err)
		}
	}
	return nil
}

func saveTerritories(tx *sqlx.Tx, list []nations.Territory) error {
	if _, err := tx.Exec("DELETE FROM territories"); err != nil {
		return err
	}
	for _, t := range list {
		members, _ := json.Marshal(t.Provinces)
		_, err := tx.Exec(`INSERT INTO territories
			(id, nation_id, is_core, center_x, center_y, provinces_json)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.Nation, t.IsCore, t.Center.X, t.Center.Y, string(members),
		)
		if err != nil {
			return fmt.Errorf("insert territory %d: %w", t.ID, err)
		}
	}
	return nil
}

type provinceRow struct {
	ID          int     `db:"id"`
	Col         int     `db:"grid_col"`
	Row         int     `db:"grid_row"`
	X           float64 `db:"x"`
	Y           float64 `db:"y"`
	Elevation   float64 `db:"elevation"`
	Terrain     uint8   `db:"terrain"`
	Plate       int     `db:"plate"`
	Population  float64 `db:"population"`
	Agriculture float64 `db:"agriculture"`
	Culture     uint8   `db:"culture"`
	Owner       int     `db:"owner"`
	FreshWater  float64 `db:"fresh_water"`
	Neighbors   string  `db:"neighbors_json"`
}

type regionRow struct {
	Ordinal        int     `db:"ordinal"`
	Culture        uint8   `db:"culture"`
	Size           int     `db:"size"`
	CenterX        float64 `db:"center_x"`
	CenterY        float64 `db:"center_y"`
	CoastalAccess  bool    `db:"coastal_access"`
	StrategicValue float64 `db:"strategic_value"`
	Radius         float64 `db:"radius"`
	IsIsland       bool    `db:"is_island"`
	Provinces      string  `db:"provinces_json"`
}

type nationRow struct {
	ID         int     `db:"id"`
	Name       string  `db:"name"`
	Adjective  string  `db:"adjective"`
	Culture    uint8   `db:"culture"`
	Capital    int     `db:"capital"`
	Government uint8   `db:"government"`
	Color      uint32  `db:"color"`
	Treasury   float64 `db:"treasury"`
	TaxRate    float64 `db:"tax_rate"`
	Stability  float64 `db:"stability"`
	Provinces  int     `db:"provinces"`
}

type territoryRow struct {
	ID        int     `db:"id"`
	Nation    int     `db:"nation_id"`
	IsCore    bool    `db:"is_core"`
	CenterX   float64 `db:"center_x"`
	CenterY   float64 `db:"center_y"`
	Provinces string  `db:"provinces_json"`
}

// Provinces returns every stored province in ID order.
func (db *DB) Provinces() ([]world.Province, error) {
	var rows []provinceRow
	if err := db.conn.Select(&rows, "SELECT * FROM provinces ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]world.Province, len(rows))
	for i, r := range rows {
		out[i] = world.Province{
			ID:                 r.ID,
			Position:           geom.V(r.X, r.Y),
			Col:                r.Col,
			Row:                r.Row,
			Elevation:          r.Elevation,
			Terrain:            world.Terrain(r.Terrain),
			Plate:              r.Plate,
			Population:         r.Population,
			Agriculture:        r.Agriculture,
			Culture:            world.Culture(r.Culture),
			Owner:              r.Owner,
			FreshWaterDistance: r.FreshWater,
		}
		if err := json.Unmarshal([]byte(r.Neighbors), &out[i].Neighbors); err != nil {
			return nil, fmt.Errorf("province %d neighbors: %w", r.ID, err)
		}
	}
	return out, nil
}

// Regions returns the stored regions in rank order.
func (db *DB) Regions() ([]culture.Region, error) {
	var rows []regionRow
	if err := db.conn.Select(&rows, "SELECT * FROM regions ORDER BY ordinal"); err != nil {
		return nil, err
	}
	out := make([]culture.Region, len(rows))
	for i, r := range rows {
		out[i] = culture.Region{
			Culture:        world.Culture(r.Culture),
			Size:           r.Size,
			Center:         geom.V(r.CenterX, r.CenterY),
			CoastalAccess:  r.CoastalAccess,
			StrategicValue: r.StrategicValue,
			Radius:         r.Radius,
			IsIsland:       r.IsIsland,
		}
		if err := json.Unmarshal([]byte(r.Provinces), &out[i].Provinces); err != nil {
			return nil, fmt.Errorf("region %d provinces: %w", r.Ordinal, err)
		}
	}
	return out, nil
}

// Nations returns the stored nations in ID order.
func (db *DB) Nations() ([]nations.Nation, error) {
	var rows []nationRow
	if err := db.conn.Select(&rows, "SELECT * FROM nations ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]nations.Nation, len(rows))
	for i, r := range rows {
		out[i] = nations.Nation{
			ID:         r.ID,
			Name:       r.Name,
			Adjective:  r.Adjective,
			Culture:    world.Culture(r.Culture),
			Capital:    r.Capital,
			Government: nations.Government(r.Government),
			Color:      unpackColor(r.Color),
			Treasury:   r.Treasury,
			TaxRate:    r.TaxRate,
			Stability:  r.Stability,
			Provinces:  r.Provinces,
		}
	}
	return out, nil
}

// Houses returns the stored ruling houses in ID order.
func (db *DB) Houses() ([]nations.House, error) {
	var out []nations.House
	err := db.conn.Select(&out, `SELECT id, nation_id AS nation, name, full_name AS fullname,
		ruler, ruler_title AS rulertitle, motto, years_in_power AS yearsinpower,
		legitimacy, prestige FROM houses ORDER BY id`)
	return out, err
}

// Territories returns the stored territories in ID order.
func (db *DB) Territories() ([]nations.Territory, error) {
	var rows []territoryRow
	if err := db.conn.Select(&rows, "SELECT * FROM territories ORDER BY id"); err != nil {
		return nil, err
	}
	out := make([]nations.Territory, len(rows))
	for i, r := range rows {
		out[i] = nations.Territory{
			ID:     r.ID,
			Nation: r.Nation,
			Center: geom.V(r.CenterX, r.CenterY),
			IsCore: r.IsCore,
		}
		if err := json.Unmarshal([]byte(r.Provinces), &out[i].Provinces); err != nil {
			return nil, fmt.Errorf("territory %d provinces: %w", r.ID, err)
		}
	}
	return out, nil
}

// LoadWorld rebuilds the stored world. Climate and tectonics are not
// stored and come back nil.
func (db *DB) LoadWorld() (*worldgen.GeneratedWorld, error) {
	raw, err := db.GetMeta(metaSettings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoWorld
	}
	if err != nil {
		return nil, err
	}
	settings, err := worldgen.ParseSettings([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	gw := &worldgen.GeneratedWorld{Settings: settings, Dimensions: settings.Dimensions()}
	if gw.Seed, err = db.metaInt(metaSeed); err != nil {
		return nil, err
	}
	ms, err := db.metaInt(metaElapsed)
	if err != nil {
		return nil, err
	}
	gw.Elapsed = time.Duration(ms) * time.Millisecond
	sea, err := db.GetMeta(metaSeaLevel)
	if err != nil {
		return nil, err
	}
	if gw.SeaLevel, err = strconv.ParseFloat(sea, 64); err != nil {
		return nil, fmt.Errorf("meta %s: %w", metaSeaLevel, err)
	}

	if gw.Provinces, err = db.Provinces(); err != nil {
		return nil, fmt.Errorf("load provinces: %w", err)
	}
	if gw.Regions, err = db.Regions(); err != nil {
		return nil, fmt.Errorf("load regions: %w", err)
	}
	pol := &nations.Result{Owner: make([]int, len(gw.Provinces))}
	if pol.Nations, err = db.Nations(); err != nil {
		return nil, fmt.Errorf("load nations: %w", err)
	}
	if pol.Houses, err = db.Houses(); err != nil {
		return nil, fmt.Errorf("load houses: %w", err)
	}
	if pol.Territories, err = db.Territories(); err != nil {
		return nil, fmt.Errorf("load territories: %w", err)
	}
	for i := range gw.Provinces {
		pol.Owner[i] = gw.Provinces[i].Owner
	}
	gw.Political = pol
	gw.Stats = world.Summarize(gw.Provinces)
	return gw, nil
}

func (db *DB) metaInt(key string) (int64, error) {
	v, err := db.GetMeta(key)
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	return n, nil
}

func packColor(c color.RGBA) uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func unpackColor(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}
