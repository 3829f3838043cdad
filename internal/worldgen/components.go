package worldgen

import (
	"time"

	"github.com/talgya/hexforge/internal/climate"
	"github.com/talgya/hexforge/internal/culture"
	"github.com/talgya/hexforge/internal/ecs"
	"github.com/talgya/hexforge/internal/geom"
	"github.com/talgya/hexforge/internal/mesh"
	"github.com/talgya/hexforge/internal/nations"
	"github.com/talgya/hexforge/internal/world"
)

// Components and resources a finished world leaves in the ECS World.

// Province is the per-entity province component.
type Province struct {
	ID          int
	Position    geom.Vec2
	Terrain     world.Terrain
	Elevation   float64
	Population  float64
	Agriculture float64
	Culture     world.Culture
}

// Neighbors holds a province's neighbour entities; ecs.Nil marks an empty slot.
type Neighbors [6]ecs.Entity

// OwnedBy links a province to its nation entity.
type OwnedBy struct {
	Nation ecs.Entity
}

// Nation is the per-entity nation component.
type Nation struct {
	nations.Nation
	CapitalEntity ecs.Entity
}

// Territory is the per-entity territory component.
type Territory struct {
	nations.Territory
	NationEntity ecs.Entity
}

// House is the per-entity ruling house component.
type House struct {
	nations.House
	NationEntity ecs.Entity
}

// WorldMesh is the render mesh resource.
type WorldMesh struct {
	Mesh *mesh.Mesh
}

// ClimateStorage is the per-province climate resource.
type ClimateStorage struct {
	Storage *climate.Storage
}

// ProvinceStorage is the authoritative province array, indexed by ID, with
// the entity spawned for each province once that phase has run.
type ProvinceStorage struct {
	Provinces []world.Province
	Entities  []ecs.Entity
}

// Entity returns the entity of province id, or ecs.Nil.
func (s *ProvinceStorage) Entity(id int) ecs.Entity {
	if id < 0 || id >= len(s.Entities) {
		return ecs.Nil
	}
	return s.Entities[id]
}

// CulturalRegions is the ranked region list with per-culture counts.
type CulturalRegions struct {
	Regions []culture.Region
	Counts  map[world.Culture]int
}

// MapInfo describes the map as a whole.
type MapInfo struct {
	Name       string
	Seed       int64
	Dimensions world.MapDimensions
	SeaLevel   float64
	Stats      world.Stats
}

// OwnershipMap resolves nation IDs to entities and provinces to owners.
type OwnershipMap struct {
	Nations    []ecs.Entity // Indexed by nation ID
	ByProvince []ecs.Entity // Indexed by province ID; ecs.Nil when unowned
}

// NationEntity returns the entity of nation id, or ecs.Nil.
func (m *OwnershipMap) NationEntity(id int) ecs.Entity {
	if id < 0 || id >= len(m.Nations) {
		return ecs.Nil
	}
	return m.Nations[id]
}

// CoastalProvinces is the coastal lookup resource.
type CoastalProvinces struct {
	Cache *world.CoastalCache
}

// WorldReady is set by the last phase; its presence means the world is
// fully materialised.
type WorldReady struct {
	Name        string
	Seed        int64
	Provinces   int
	Nations     int
	Territories int
	Houses      int
	GeneratedIn time.Duration
}
