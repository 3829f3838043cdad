// Package api provides the HTTP API for watching world generation and
// querying the finished world.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hexforge/internal/diagnostics"
	"github.com/talgya/hexforge/internal/engine"
	"github.com/talgya/hexforge/internal/persistence"
	"github.com/talgya/hexforge/internal/world"
	"github.com/talgya/hexforge/internal/worldgen"
)

// Server serves generation progress and world data over HTTP.
type Server struct {
	Orch     *worldgen.Orchestrator
	Eng      *engine.Engine
	DB       *persistence.DB // Optional; serves the last saved world and error history
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	generateLimiter *RateLimiter
}

// Handler builds the routing table.
func (s *Server) Handler() http.Handler {
	if s.generateLimiter == nil {
		s.generateLimiter = NewRateLimiter(6, time.Hour)
	}

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/regions", s.handleRegions)
	mux.HandleFunc("/api/v1/nations", s.handleNations)
	mux.HandleFunc("/api/v1/province/", s.handleProvince)
	mux.HandleFunc("/api/v1/errors", s.handleErrors)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/generate", s.adminOnly(RateLimitMiddleware(s.generateLimiter, s.handleGenerate)))
	mux.HandleFunc("/api/v1/cancel", s.adminOnly(s.handleCancel))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine. Shut the returned
// server down to stop it.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// CORS_ORIGINS is a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires POST with a valid bearer token.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no HEXFORGE_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// world returns the in-memory world, falling back to the last saved one.
func (s *Server) world() *worldgen.GeneratedWorld {
	if s.Orch != nil {
		if gw := s.Orch.World(); gw != nil {
			return gw
		}
	}
	if s.DB != nil {
		gw, err := s.DB.LoadWorld()
		if err == nil {
			return gw
		}
		if !errors.Is(err, persistence.ErrNoWorld) {
			slog.Error("load world", "error", err)
		}
	}
	return nil
}

func (s *Server) requireWorld(w http.ResponseWriter) *worldgen.GeneratedWorld {
	gw := s.world()
	if gw == nil {
		http.Error(w, "no world generated yet", http.StatusServiceUnavailable)
	}
	return gw
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"name": "hexforge"}
	if s.Eng != nil {
		status["tick"] = s.Eng.CurrentTick()
		status["running"] = s.Eng.Running()
		status["game_state"] = s.Eng.States.Current().String()
	}
	if s.Orch != nil {
		status["generation"] = s.Orch.State().String()
		status["loading"] = s.Orch.Loading().Snapshot()
		if ec := s.Orch.LastError(); ec != nil {
			status["last_error"] = map[string]any{"id": ec.ID, "message": ec.ErrorMessage}
		}
	}
	if gw := s.world(); gw != nil {
		status["world"] = map[string]any{
			"name":        gw.Settings.Name,
			"seed":        gw.Seed,
			"size":        gw.Settings.SizeLabel(),
			"provinces":   gw.Stats.Total,
			"land":        gw.Stats.Land,
			"ocean":       gw.Stats.Ocean,
			"regions":     len(gw.Regions),
			"nations":     nationCount(gw),
			"sea_level":   gw.SeaLevel,
			"generated_s": gw.Elapsed.Seconds(),
		}
	}
	writeJSON(w, status)
}

func nationCount(gw *worldgen.GeneratedWorld) int {
	if gw.Political == nil {
		return 0
	}
	return len(gw.Political.Nations)
}

type regionEntry struct {
	Rank           int     `json:"rank"`
	Culture        string  `json:"culture"`
	Size           int     `json:"size"`
	CenterX        float64 `json:"center_x"`
	CenterY        float64 `json:"center_y"`
	CoastalAccess  bool    `json:"coastal_access"`
	StrategicValue float64 `json:"strategic_value"`
	Radius         float64 `json:"radius"`
	IsIsland       bool    `json:"is_island"`
}

// handleRegions lists ranked regions. ?culture= filters by culture name and
// ?limit= caps the count.
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	gw := s.requireWorld(w)
	if gw == nil {
		return
	}
	cultureFilter := r.URL.Query().Get("culture")
	limit := len(gw.Regions)
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	out := []regionEntry{}
	for i, reg := range gw.Regions {
		if len(out) >= limit {
			break
		}
		if cultureFilter != "" && !strings.EqualFold(reg.Culture.String(), cultureFilter) {
			continue
		}
		out = append(out, regionEntry{
			Rank: i, Culture: reg.Culture.String(), Size: reg.Size,
			CenterX: reg.Center.X, CenterY: reg.Center.Y,
			CoastalAccess: reg.CoastalAccess, StrategicValue: reg.StrategicValue,
			Radius: reg.Radius, IsIsland: reg.IsIsland,
		})
	}
	writeJSON(w, out)
}

type nationEntry struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Adjective    string  `json:"adjective"`
	Culture      string  `json:"culture"`
	Government   string  `json:"government"`
	Capital      int     `json:"capital"`
	Color        string  `json:"color"`
	Provinces    int     `json:"provinces"`
	Treasury     float64 `json:"treasury"`
	TaxRate      float64 `json:"tax_rate"`
	Stability    float64 `json:"stability"`
	House        string  `json:"house,omitempty"`
	Ruler        string  `json:"ruler,omitempty"`
	Motto        string  `json:"motto,omitempty"`
	Territories  int     `json:"territories"`
	Connectivity float64 `json:"connectivity"`
	Ports        int     `json:"ports"`
}

func (s *Server) handleNations(w http.ResponseWriter, r *http.Request) {
	gw := s.requireWorld(w)
	if gw == nil {
		return
	}
	out := []nationEntry{}
	if gw.Political == nil {
		writeJSON(w, out)
		return
	}
	pol := gw.Political
	for _, n := range pol.Nations {
		e := nationEntry{
			ID: n.ID, Name: n.Name, Adjective: n.Adjective,
			Culture: n.Culture.String(), Government: n.Government.String(),
			Capital: n.Capital, Color: fmt.Sprintf("#%02x%02x%02x", n.Color.R, n.Color.G, n.Color.B),
			Provinces: n.Provinces, Treasury: n.Treasury, TaxRate: n.TaxRate, Stability: n.Stability,
		}
		for _, h := range pol.Houses {
			if h.Nation == n.ID {
				e.House = h.FullName
				e.Ruler = h.RulerTitle + " " + h.Ruler
				e.Motto = h.Motto
				break
			}
		}
		for _, t := range pol.Territories {
			if t.Nation == n.ID {
				e.Territories++
			}
		}
		if n.ID < len(pol.Infrastructure) {
			inf := pol.Infrastructure[n.ID]
			e.Connectivity = inf.Connectivity
			e.Ports = len(inf.Ports)
		}
		out = append(out, e)
	}
	writeJSON(w, out)
}

// handleProvince serves GET /api/v1/province/:id.
func (s *Server) handleProvince(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimSuffix(r.URL.Path, "/"), "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing province id", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(parts[4])
	if err != nil {
		http.Error(w, "invalid province id", http.StatusBadRequest)
		return
	}
	gw := s.requireWorld(w)
	if gw == nil {
		return
	}
	if id < 0 || id >= len(gw.Provinces) {
		http.Error(w, "province not found", http.StatusNotFound)
		return
	}

	p := gw.Provinces[id]
	neighbors := []int{}
	for _, n := range p.Neighbors {
		if n != world.NoNeighbor {
			neighbors = append(neighbors, n)
		}
	}
	detail := map[string]any{
		"id":          p.ID,
		"col":         p.Col,
		"row":         p.Row,
		"x":           p.Position.X,
		"y":           p.Position.Y,
		"terrain":     p.Terrain.String(),
		"elevation":   p.Elevation,
		"plate":       p.Plate,
		"population":  p.Population,
		"agriculture": p.Agriculture,
		"culture":     p.Culture.String(),
		"neighbors":   neighbors,
	}
	if p.FreshWaterDistance >= 0 {
		detail["fresh_water_distance"] = p.FreshWaterDistance
	}
	if gw.Climate != nil {
		c := gw.Climate.Get(id)
		detail["climate"] = map[string]any{
			"zone":        c.Zone.String(),
			"temperature": c.Temperature,
			"rainfall":    c.Rainfall,
		}
	}
	if gw.Political != nil && p.Owner >= 0 && p.Owner < len(gw.Political.Nations) {
		n := gw.Political.Nations[p.Owner]
		detail["owner"] = map[string]any{"id": n.ID, "name": n.Name, "is_capital": n.Capital == id}
	}
	for i, reg := range gw.Regions {
		if containsInt(reg.Provinces, id) {
			detail["region"] = i
			break
		}
	}
	writeJSON(w, detail)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

// handleErrors lists recent failure reports. ?format=issue returns the last
// one as plain text ready to paste into a bug report.
func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	var list []*diagnostics.ErrorContext
	if s.DB != nil {
		var err error
		if list, err = s.DB.RecentErrorContexts(20); err != nil {
			http.Error(w, "failed to load error reports", http.StatusInternalServerError)
			slog.Error("load error contexts", "error", err)
			return
		}
	} else if s.Orch != nil && s.Orch.LastError() != nil {
		list = append(list, s.Orch.LastError())
	}

	if r.URL.Query().Get("format") == "issue" {
		if len(list) == 0 {
			http.Error(w, "no error reports", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, list[0].FormatForIssue())
		return
	}
	if list == nil {
		list = []*diagnostics.ErrorContext{}
	}
	writeJSON(w, list)
}

// handleGenerate starts a new run. The body is optional JSON settings
// applied on top of the defaults.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.Orch == nil {
		http.Error(w, "generation unavailable", http.StatusServiceUnavailable)
		return
	}
	settings := worldgen.DefaultSettings()
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
			http.Error(w, "invalid settings: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	if err := settings.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Orch.Start(context.WithoutCancel(r.Context()), settings); err != nil {
		if errors.Is(err, worldgen.ErrAlreadyRunning) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	slog.Info("generation started via API", "name", settings.Name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]any{"state": s.Orch.State().String(), "seed": s.Orch.Settings().Seed})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	if s.Orch == nil || !s.Orch.Cancel() {
		http.Error(w, "no generation running", http.StatusConflict)
		return
	}
	writeJSON(w, map[string]any{"cancelling": true})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
