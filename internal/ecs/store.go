package ecs

import "reflect"

// Store holds every T component densely, in insertion order.
type Store[T any] struct {
	index    map[uint32]int
	entities []Entity
	data     []T
}

func (s *Store[T]) len() int { return len(s.data) }

func (s *Store[T]) remove(id uint32) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.data) - 1
	if i != last {
		s.data[i] = s.data[last]
		s.entities[i] = s.entities[last]
		s.index[s.entities[i].ID] = i
	}
	s.data = s.data[:last]
	s.entities = s.entities[:last]
	delete(s.index, id)
}

func storeFor[T any](w *World) *Store[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if s, ok := w.stores[key]; ok {
		return s.(*Store[T])
	}
	s := &Store[T]{index: make(map[uint32]int)}
	w.stores[key] = s
	return s
}

// Insert sets e's T component, replacing any existing value. It reports
// false when e is not alive.
func Insert[T any](w *World, e Entity, v T) bool {
	if !w.Alive(e) {
		return false
	}
	s := storeFor[T](w)
	if i, ok := s.index[e.ID]; ok {
		s.data[i] = v
		return true
	}
	s.index[e.ID] = len(s.data)
	s.entities = append(s.entities, e)
	s.data = append(s.data, v)
	return true
}

// Get returns a pointer to e's T component. The pointer is valid until the
// next insert or removal of a T.
func Get[T any](w *World, e Entity) (*T, bool) {
	if !w.Alive(e) {
		return nil, false
	}
	s := storeFor[T](w)
	i, ok := s.index[e.ID]
	if !ok {
		return nil, false
	}
	return &s.data[i], true
}

// Remove deletes e's T component.
func Remove[T any](w *World, e Entity) {
	if w.Alive(e) {
		storeFor[T](w).remove(e.ID)
	}
}

// Each calls fn for every entity with a T component, in store order.
// fn must not insert or remove T components.
func Each[T any](w *World, fn func(Entity, *T)) {
	s := storeFor[T](w)
	for i := range s.data {
		fn(s.entities[i], &s.data[i])
	}
}

// Count is the number of T components.
func Count[T any](w *World) int {
	return storeFor[T](w).len()
}

// SpawnWith creates one entity per value, in order, each carrying its value
// as a component. Handle i belongs to values[i].
func SpawnWith[T any](w *World, values []T) []Entity {
	out := w.SpawnBatch(len(values))
	s := storeFor[T](w)
	for i, e := range out {
		s.index[e.ID] = len(s.data)
		s.entities = append(s.entities, e)
		s.data = append(s.data, values[i])
	}
	return out
}

// SetResource stores v as the World's singleton of type T.
func SetResource[T any](w *World, v T) {
	w.resources[reflect.TypeOf((*T)(nil)).Elem()] = &v
}

// Resource returns the World's singleton of type T.
func Resource[T any](w *World) (*T, bool) {
	r, ok := w.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	return r.(*T), true
}

// RemoveResource drops the singleton of type T.
func RemoveResource[T any](w *World) {
	delete(w.resources, reflect.TypeOf((*T)(nil)).Elem())
}
