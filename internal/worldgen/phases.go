package worldgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/ecs"
	"github.com/talgya/hexforge/internal/mesh"
	"github.com/talgya/hexforge/internal/nations"
	"github.com/talgya/hexforge/internal/world"
)

// MeshBuilder turns provinces into a render mesh.
type MeshBuilder interface {
	Build(ctx context.Context, provinces []world.Province, hexSize float64) (*mesh.Mesh, error)
}

// MeshBuilderFunc adapts a function to MeshBuilder.
type MeshBuilderFunc func(ctx context.Context, provinces []world.Province, hexSize float64) (*mesh.Mesh, error)

func (f MeshBuilderFunc) Build(ctx context.Context, provinces []world.Province, hexSize float64) (*mesh.Mesh, error) {
	return f(ctx, provinces, hexSize)
}

// materializer carries state between the exclusive phases. Later phases
// read the entity handles earlier ones captured.
type materializer struct {
	ctx  context.Context
	w    *ecs.World
	gw   *GeneratedWorld
	mesh MeshBuilder

	bundles   []Province
	ownership *OwnershipMap
	storage   *ProvinceStorage
}

type phase struct {
	name string
	run  func(*materializer) error
}

// phases run in this order; each depends on the ones before it.
var phases = []phase{
	{"mesh build", (*materializer).buildMesh},
	{"climate storage insert", (*materializer).insertClimate},
	{"province storage construction", (*materializer).buildProvinceStorage},
	{"culture application", (*materializer).applyCultures},
	{"province bundle preparation", (*materializer).prepareBundles},
	{"map resource setup", (*materializer).setupMap},
	{"nation entity spawn", (*materializer).spawnNations},
	{"ownership map construction", (*materializer).buildOwnership},
	{"province entity spawn", (*materializer).spawnProvinces},
	{"territory entity spawn", (*materializer).spawnTerritories},
	{"house entity spawn", (*materializer).spawnHouses},
	{"coastal cache build", (*materializer).buildCoastal},
	{"finalize", (*materializer).finalize},
}

// PhaseNames lists the exclusive phases in execution order.
func PhaseNames() []string {
	out := make([]string, len(phases))
	for i, p := range phases {
		out[i] = p.name
	}
	return out
}

// materialize replaces whatever w holds with gw, running every phase with
// exclusive access. onPhase, if set, is called before each phase. A failed
// phase leaves w empty.
func materialize(ctx context.Context, w *ecs.World, gw *GeneratedWorld, mb MeshBuilder, onPhase func(i int, name string)) error {
	m := &materializer{ctx: ctx, w: w, gw: gw, mesh: mb}
	var err error
	w.Exclusive(func(*ecs.World) {
		w.Clear()
		for i, p := range phases {
			if onPhase != nil {
				onPhase(i, p.name)
			}
			start := time.Now()
			if err = p.run(m); err != nil {
				err = fmt.Errorf("%s: %w", p.name, err)
				w.Clear()
				return
			}
			slog.Debug("phase complete", "phase", p.name, "elapsed", time.Since(start))
		}
	})
	return err
}

func (m *materializer) buildMesh() error {
	if m.mesh == nil {
		return nil
	}
	built, err := m.mesh.Build(m.ctx, m.gw.Provinces, m.gw.Dimensions.HexSize)
	if err != nil {
		return err
	}
	ecs.SetResource(m.w, WorldMesh{Mesh: built})
	return nil
}

func (m *materializer) insertClimate() error {
	ecs.SetResource(m.w, ClimateStorage{Storage: m.gw.Climate})
	return nil
}

func (m *materializer) buildProvinceStorage() error {
	m.storage = &ProvinceStorage{
		Provinces: m.gw.Provinces,
		Entities:  make([]ecs.Entity, len(m.gw.Provinces)),
	}
	ecs.SetResource(m.w, *m.storage)
	return nil
}

func (m *materializer) applyCultures() error {
	ecs.SetResource(m.w, CulturalRegions{
		Regions: m.gw.Regions,
		Counts:  culture.Counts(m.gw.Provinces),
	})
	return nil
}

func (m *materializer) prepareBundles() error {
	m.bundles = make([]Province, len(m.gw.Provinces))
	for i := range m.gw.Provinces {
		p := &m.gw.Provinces[i]
		m.bundles[i] = Province{
			ID:          p.ID,
			Position:    p.Position,
			Terrain:     p.Terrain,
			Elevation:   p.Elevation,
			Population:  p.Population,
			Agriculture: p.Agriculture,
			Culture:     p.Culture,
		}
	}
	return nil
}

func (m *materializer) setupMap() error {
	ecs.SetResource(m.w, MapInfo{
		Name:       m.gw.Settings.Name,
		Seed:       m.gw.Seed,
		Dimensions: m.gw.Dimensions,
		SeaLevel:   m.gw.SeaLevel,
		Stats:      m.gw.Stats,
	})
	return nil
}

func (m *materializer) political() *nations.Result {
	if m.gw.Political == nil {
		return &nations.Result{}
	}
	return m.gw.Political
}

func (m *materializer) spawnNations() error {
	pol := m.political()
	comps := make([]Nation, len(pol.Nations))
	for i, n := range pol.Nations {
		comps[i] = Nation{Nation: n}
	}
	m.ownership = &OwnershipMap{Nations: ecs.SpawnWith(m.w, comps)}
	return nil
}

func (m *materializer) buildOwnership() error {
	m.ownership.ByProvince = make([]ecs.Entity, len(m.gw.Provinces))
	for i := range m.gw.Provinces {
		m.ownership.ByProvince[i] = m.ownership.NationEntity(m.gw.Provinces[i].Owner)
	}
	return nil
}

func (m *materializer) spawnProvinces() error {
	ids := ecs.SpawnWith(m.w, m.bundles)
	copy(m.storage.Entities, ids)

	for i, e := range ids {
		var nb Neighbors
		for slot, idx := range m.gw.Provinces[i].Neighbors {
			if idx >= 0 && idx < len(ids) {
				nb[slot] = ids[idx]
			}
		}
		ecs.Insert(m.w, e, nb)
		if owner := m.ownership.ByProvince[i]; !owner.IsNil() {
			ecs.Insert(m.w, e, OwnedBy{Nation: owner})
		}
	}

	for i, ne := range m.ownership.Nations {
		if n, ok := ecs.Get[Nation](m.w, ne); ok {
			n.CapitalEntity = m.storage.Entity(m.political().Nations[i].Capital)
		}
	}

	ecs.SetResource(m.w, *m.storage)
	ecs.SetResource(m.w, *m.ownership)
	return nil
}

func (m *materializer) spawnTerritories() error {
	pol := m.political()
	comps := make([]Territory, len(pol.Territories))
	for i, t := range pol.Territories {
		comps[i] = Territory{Territory: t, NationEntity: m.ownership.NationEntity(t.Nation)}
	}
	ecs.SpawnWith(m.w, comps)
	return nil
}

func (m *materializer) spawnHouses() error {
	pol := m.political()
	comps := make([]House, len(pol.Houses))
	for i, h := range pol.Houses {
		comps[i] = House{House: h, NationEntity: m.ownership.NationEntity(h.Nation)}
	}
	ecs.SpawnWith(m.w, comps)
	return nil
}

func (m *materializer) buildCoastal() error {
	ecs.SetResource(m.w, CoastalProvinces{Cache: world.BuildCoastalCache(m.gw.Provinces)})
	return nil
}

func (m *materializer) finalize() error {
	pol := m.political()
	ecs.SetResource(m.w, WorldReady{
		Name:        m.gw.Settings.Name,
		Seed:        m.gw.Seed,
		Provinces:   len(m.gw.Provinces),
		Nations:     len(pol.Nations),
		Territories: len(pol.Territories),
		Houses:      len(pol.Houses),
		GeneratedIn: m.gw.Elapsed,
	})
	return nil
}
