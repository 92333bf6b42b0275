package ecs

import (
	"sync"
	"sync/atomic"

	"github.com/kamstrup/intmap"
	"github.com/rotisserie/eris"
)

// Package-level functions below resolve their world from the entity handle.
// CreateEntity has no entity to go on, so it uses the world whose system is
// currently executing. That slot is set for the duration of each execute
// callback and each commands flush, and restored right after, even when the
// callback panics.

// A world id is a 16-bit registry slot plus an 8-bit generation for that
// slot. Slots of stopped worlds are reused in the order they were freed, and
// only once no fresh slot is left, with the generation bumped so handles of
// the stopped world keep resolving to nothing.
const (
	worldSlotBits = 16
	maxWorldSlot  = 1<<worldSlotBits - 1
)

var (
	worldsMu         sync.RWMutex
	worlds           = intmap.New[uint32, *World](16)
	worldGenerations [maxWorldSlot + 1]uint8
	freeWorldSlots   []uint32
	nextWorldSlot    uint32 = 1

	currentWorld atomic.Pointer[World]
)

func registerWorld(w *World) uint32 {
	worldsMu.Lock()
	defer worldsMu.Unlock()

	var slot uint32
	switch {
	case nextWorldSlot <= maxWorldSlot:
		slot = nextWorldSlot
		nextWorldSlot++
	case len(freeWorldSlots) > 0:
		slot = freeWorldSlots[0]
		freeWorldSlots = freeWorldSlots[1:]
	default:
		panic("ecs: too many live worlds")
	}

	id := uint32(worldGenerations[slot])<<worldSlotBits | slot
	worlds.Put(id, w)
	return id
}

func unregisterWorld(id uint32) {
	worldsMu.Lock()
	defer worldsMu.Unlock()

	if _, ok := worlds.Get(id); !ok {
		return
	}
	worlds.Del(id)
	slot := id & maxWorldSlot
	worldGenerations[slot]++
	freeWorldSlots = append(freeWorldSlots, slot)
}

func lookupWorld(id uint32) (*World, bool) {
	worldsMu.RLock()
	defer worldsMu.RUnlock()
	return worlds.Get(id)
}

// enterWorld makes w the current world and returns a func restoring the
// previous one.
func enterWorld(w *World) func() {
	previous := currentWorld.Swap(w)
	return func() {
		currentWorld.Store(previous)
	}
}

// CurrentWorld returns the world whose system is executing or whose commands
// are being flushed.
func CurrentWorld() (*World, error) {
	w := currentWorld.Load()
	if w == nil {
		return nil, eris.Wrap(ErrNoActiveContext, "current world")
	}
	return w, nil
}

// WorldOf resolves the world that created the entity.
func WorldOf(entity Entity) (*World, error) {
	w, ok := lookupWorld(entity.WorldID())
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "%s has no owning world", entity)
	}
	return w, nil
}

// CreateEntity creates an entity in the world whose system is executing.
func CreateEntity() (Entity, error) {
	w, err := CurrentWorld()
	if err != nil {
		return 0, eris.Wrap(err, "create entity")
	}
	return w.CreateEntity(), nil
}

func GetComponent[T any](entity Entity, c *Component[T]) (T, error) {
	w, err := WorldOf(entity)
	if err != nil {
		var zero T
		return zero, err
	}
	return Read(w, entity, c)
}

func HasComponent(entity Entity, c ComponentType) bool {
	w, err := WorldOf(entity)
	return err == nil && w.HasComponent(entity, c)
}

func GetRemovedComponent[T any](entity Entity, c *Component[T]) (T, error) {
	w, err := WorldOf(entity)
	if err != nil {
		var zero T
		return zero, err
	}
	return ReadRemoved(w, entity, c)
}

func HasRemovedComponent(entity Entity, c ComponentType) bool {
	w, err := WorldOf(entity)
	return err == nil && w.HasRemovedComponent(entity, c)
}

// AddComponent is a no-op for entities without an owning world.
func AddComponent[T any](entity Entity, c *Component[T], data T) (Entity, error) {
	w, err := WorldOf(entity)
	if err != nil {
		return entity, nil
	}
	return w.AddComponent(entity, c, data)
}

func RemoveComponent(entity Entity, c ComponentType) Entity {
	if w, err := WorldOf(entity); err == nil {
		w.RemoveComponent(entity, c)
	}
	return entity
}

func RemoveEntity(entity Entity) Entity {
	if w, err := WorldOf(entity); err == nil {
		w.RemoveEntity(entity)
	}
	return entity
}
