package ecs

import (
	"github.com/kamstrup/intmap"
)

// entityRecord holds the live and most-recently-removed component payloads
// of a single entity. A component id is never present in both maps.
type entityRecord struct {
	components     *intmap.Map[ComponentID, any]
	removed        *intmap.Map[ComponentID, any]
	pendingRemoval bool
}

func newEntityRecord() *entityRecord {
	return &entityRecord{
		components: intmap.New[ComponentID, any](8),
		removed:    intmap.New[ComponentID, any](4),
	}
}

func (r *entityRecord) holds(id ComponentID) bool {
	return r.components.Has(id)
}

// put stores data as the live payload and forgets any removed payload.
func (r *entityRecord) put(id ComponentID, data any) {
	r.components.Put(id, data)
	r.removed.Del(id)
}

// take moves a live payload into the removed history. Returns false if the
// component was not held.
func (r *entityRecord) take(id ComponentID) bool {
	data, ok := r.components.Get(id)
	if !ok {
		return false
	}
	r.components.Del(id)
	r.removed.Put(id, data)
	return true
}

// takeAll moves every live payload into the removed history.
func (r *entityRecord) takeAll() {
	r.components.ForEach(func(id ComponentID, data any) bool {
		r.removed.Put(id, data)
		return true
	})
	r.components.Clear()
}

type entitySlot struct {
	generation uint16
	record     *entityRecord
}

// entityStore is an arena of entity records indexed by generational handles.
// Freed slots are reused with a bumped generation so stale handles never
// resolve to a new entity.
type entityStore struct {
	worldId   uint32
	slots     []entitySlot
	freeSlots []uint32
	live      int
}

func newEntityStore(worldId uint32) *entityStore {
	return &entityStore{
		worldId: worldId,
		slots:   make([]entitySlot, 0, 256),
	}
}

// create allocates a record and returns its handle
func (s *entityStore) create() (Entity, *entityRecord) {
	record := newEntityRecord()
	s.live++

	if len(s.freeSlots) > 0 {
		index := s.freeSlots[len(s.freeSlots)-1]
		s.freeSlots = s.freeSlots[:len(s.freeSlots)-1]
		slot := &s.slots[index]
		slot.record = record
		return newEntity(s.worldId, slot.generation, index), record
	}

	if len(s.slots) > maxEntityIndex {
		panic("ecs: entity slots exhausted")
	}
	index := uint32(len(s.slots))
	s.slots = append(s.slots, entitySlot{record: record})
	return newEntity(s.worldId, 0, index), record
}

// lookup resolves a handle to its record, or nil if the handle is stale,
// belongs to another world or was never issued.
func (s *entityStore) lookup(entity Entity) *entityRecord {
	if entity.WorldID() != s.worldId {
		return nil
	}
	index := entity.Index()
	if int(index) >= len(s.slots) {
		return nil
	}
	slot := &s.slots[index]
	if slot.generation != entity.Generation() {
		return nil
	}
	return slot.record
}

// destroy releases the slot behind the handle. Stale handles are ignored.
func (s *entityStore) destroy(entity Entity) {
	if s.lookup(entity) == nil {
		return
	}
	index := entity.Index()
	slot := &s.slots[index]
	slot.record = nil
	slot.generation++
	s.freeSlots = append(s.freeSlots, index)
	s.live--
}

// each visits every live record in slot order
func (s *entityStore) each(fn func(Entity, *entityRecord)) {
	for index := range s.slots {
		slot := &s.slots[index]
		if slot.record == nil {
			continue
		}
		fn(newEntity(s.worldId, slot.generation, uint32(index)), slot.record)
	}
}

func (s *entityStore) count() int {
	return s.live
}
