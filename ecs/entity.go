package ecs

import "fmt"

// Entity is a generational handle. From the most significant bit down it
// packs the owning world id (24 bits), the slot generation (16 bits) and the
// slot index (24 bits). The zero Entity is never valid.
type Entity uint64

const (
	indexBits      = 24
	generationBits = 16
	maxEntityIndex = 1<<indexBits - 1
)

func newEntity(worldId uint32, generation uint16, index uint32) Entity {
	return Entity(uint64(worldId)<<(indexBits+generationBits) | uint64(generation)<<indexBits | uint64(index))
}

// Index extracts the slot index from the entity
func (e Entity) Index() uint32 {
	return uint32(e & maxEntityIndex)
}

// Generation extracts the slot generation from the entity
func (e Entity) Generation() uint16 {
	return uint16(e >> indexBits)
}

// WorldID extracts the id of the world that created the entity
func (e Entity) WorldID() uint32 {
	return uint32(e >> (indexBits + generationBits))
}

func (e Entity) String() string {
	return fmt.Sprintf("entity(%d:%d.%d)", e.WorldID(), e.Index(), e.Generation())
}
