// Package ecs is a small entity arena: generational entity handles, one
// dense store per component type, and typed singleton resources.
//
// Operations do not lock. Callers that share a World between goroutines run
// their mutations inside Exclusive, which serialises whole phases.
package ecs

import (
	"fmt"
	"reflect"
	"sync"
)

// Entity is a generational handle. The zero Entity is never issued.
type Entity struct {
	ID      uint32
	Version uint32
}

// Nil is the zero handle, used for "no entity".
var Nil Entity

func (e Entity) String() string {
	return fmt.Sprintf("%d.%d", e.ID, e.Version)
}

// IsNil reports whether e is the zero handle.
func (e Entity) IsNil() bool {
	return e == Nil
}

type store interface {
	remove(id uint32)
	len() int
}

// World owns every entity, component and resource.
type World struct {
	mu sync.Mutex

	versions []uint32 // Indexed by entity ID; 0 means never issued
	alive    []bool
	free     []uint32
	count    int

	stores    map[reflect.Type]store
	resources map[reflect.Type]any
}

// NewWorld returns an empty World.
func NewWorld() *World {
	return &World{
		stores:    make(map[reflect.Type]store),
		resources: make(map[reflect.Type]any),
	}
}

// Exclusive runs fn with sole access to w.
func (w *World) Exclusive(fn func(*World)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w)
}

// Spawn creates one entity with no components.
func (w *World) Spawn() Entity {
	var id uint32
	if n := len(w.free); n > 0 {
		id = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		id = uint32(len(w.versions))
		w.versions = append(w.versions, 0)
		w.alive = append(w.alive, false)
	}
	w.versions[id]++
	if w.versions[id] == 0 {
		w.versions[id] = 1
	}
	w.alive[id] = true
	w.count++
	return Entity{ID: id, Version: w.versions[id]}
}

// SpawnBatch creates n entities. Handles are returned in creation order.
func (w *World) SpawnBatch(n int) []Entity {
	if n <= 0 {
		return nil
	}
	out := make([]Entity, n)
	for i := range out {
		out[i] = w.Spawn()
	}
	return out
}

// Alive reports whether e refers to a live entity.
func (w *World) Alive(e Entity) bool {
	return int(e.ID) < len(w.versions) && w.alive[e.ID] && w.versions[e.ID] == e.Version
}

// Despawn removes e and all of its components. Stale handles are ignored.
func (w *World) Despawn(e Entity) {
	if !w.Alive(e) {
		return
	}
	for _, s := range w.stores {
		s.remove(e.ID)
	}
	w.alive[e.ID] = false
	w.free = append(w.free, e.ID)
	w.count--
}

// Len is the number of live entities.
func (w *World) Len() int {
	return w.count
}

// Clear despawns everything and drops all resources.
func (w *World) Clear() {
	for id, ok := range w.alive {
		if ok {
			w.Despawn(Entity{ID: uint32(id), Version: w.versions[id]})
		}
	}
	w.resources = make(map[reflect.Type]any)
}
