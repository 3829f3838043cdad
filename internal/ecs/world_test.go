package ecs

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }
type name string

func TestSpawnBatchPreservesOrder(t *testing.T) {
	w := NewWorld()
	es := w.SpawnBatch(5)
	require.Len(t, es, 5)
	for i, e := range es {
		assert.Equal(t, uint32(i), e.ID)
		assert.Equal(t, uint32(1), e.Version)
		assert.True(t, w.Alive(e))
	}
	assert.Equal(t, 5, w.Len())
	assert.Nil(t, w.SpawnBatch(0))
}

func TestDespawnRecyclesWithNewVersion(t *testing.T) {
	w := NewWorld()
	a := w.Spawn()
	require.True(t, Insert(w, a, position{1, 2}))

	w.Despawn(a)
	assert.False(t, w.Alive(a))
	assert.Zero(t, Count[position](w))
	_, ok := Get[position](w, a)
	assert.False(t, ok)

	b := w.Spawn()
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.Version, b.Version)
	assert.False(t, Insert(w, a, position{}), "stale handle")

	w.Despawn(a) // stale: no effect
	assert.True(t, w.Alive(b))
	assert.Equal(t, 1, w.Len())
}

func TestComponents(t *testing.T) {
	w := NewWorld()
	es := w.SpawnBatch(3)
	for i, e := range es {
		Insert(w, e, position{X: float64(i)})
	}
	Insert(w, es[1], name("middle"))

	p, ok := Get[position](w, es[2])
	require.True(t, ok)
	assert.Equal(t, 2.0, p.X)
	p.Y = 9
	p, _ = Get[position](w, es[2])
	assert.Equal(t, 9.0, p.Y)

	Insert(w, es[2], position{X: 7})
	assert.Equal(t, 3, Count[position](w))

	Remove[position](w, es[0])
	assert.Equal(t, 2, Count[position](w))
	p, ok = Get[position](w, es[2])
	require.True(t, ok)
	assert.Equal(t, 7.0, p.X)

	var names []Entity
	Each(w, func(e Entity, n *name) {
		names = append(names, e)
		assert.Equal(t, name("middle"), *n)
	})
	assert.Equal(t, []Entity{es[1]}, names)
}

func TestSpawnWith(t *testing.T) {
	w := NewWorld()
	w.Spawn()
	vals := []position{{X: 1}, {X: 2}, {X: 3}}
	es := SpawnWith(w, vals)
	require.Len(t, es, 3)
	for i, e := range es {
		p, ok := Get[position](w, e)
		require.True(t, ok)
		assert.Equal(t, vals[i], *p)
	}
}

func TestResources(t *testing.T) {
	w := NewWorld()
	_, ok := Resource[position](w)
	assert.False(t, ok)

	SetResource(w, position{X: 4})
	r, ok := Resource[position](w)
	require.True(t, ok)
	r.X = 5
	r, _ = Resource[position](w)
	assert.Equal(t, 5.0, r.X)

	RemoveResource[position](w)
	_, ok = Resource[position](w)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	w := NewWorld()
	es := w.SpawnBatch(4)
	Insert(w, es[0], name("a"))
	SetResource(w, name("r"))

	w.Clear()
	assert.Zero(t, w.Len())
	assert.Zero(t, Count[name](w))
	_, ok := Resource[name](w)
	assert.False(t, ok)
}

func TestExclusiveSerialises(t *testing.T) {
	w := NewWorld()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Exclusive(func(w *World) {
				e := w.Spawn()
				Insert(w, e, position{})
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, w.Len())
	assert.Equal(t, 8, Count[position](w))
}

func TestNilEntity(t *testing.T) {
	w := NewWorld()
	assert.True(t, Nil.IsNil())
	assert.False(t, w.Alive(Nil))
	e := w.Spawn()
	assert.False(t, e.IsNil())
	assert.Equal(t, "0.1", e.String())
}
