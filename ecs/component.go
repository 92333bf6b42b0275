package ecs

import (
	"sync/atomic"

	"github.com/plus3/tickecs/schema"
	"github.com/rotisserie/eris"
)

// ComponentID uniquely identifies a component descriptor within the process.
type ComponentID uint32

var lastComponentId atomic.Uint32

// ComponentType is the type-erased view of a component descriptor, used
// wherever descriptors of different data types are listed together.
type ComponentType interface {
	ID() ComponentID
	Name() string
	// Validate reports a contract violation if data cannot be stored under
	// this descriptor.
	Validate(data any) error
}

// Component is an immutable descriptor for component data of type T.
// Descriptors are compared by identity, never by name.
type Component[T any] struct {
	id     ComponentID
	name   string
	schema schema.Checker
}

// NewComponent creates a new component descriptor. The checker is optional
// and is applied to every payload written under the descriptor.
func NewComponent[T any](name string, checker schema.Checker) *Component[T] {
	return &Component[T]{
		id:     ComponentID(lastComponentId.Add(1)),
		name:   name,
		schema: checker,
	}
}

func (c *Component[T]) ID() ComponentID { return c.id }
func (c *Component[T]) Name() string    { return c.name }

func (c *Component[T]) Validate(data any) error {
	if _, ok := data.(T); !ok {
		return eris.Wrapf(ErrContractViolation, "component %s: unexpected payload type %T", c.name, data)
	}
	if err := schema.Check(c.schema, data); err != nil {
		return eris.Wrapf(ErrContractViolation, "component %s: %v", c.name, err)
	}
	return nil
}

// With pairs a descriptor with a payload, for use with Commands.Spawn.
func (c *Component[T]) With(data T) ComponentValue {
	return ComponentValue{Type: c, Data: data}
}

// ComponentValue is a descriptor and the payload to store under it.
type ComponentValue struct {
	Type ComponentType
	Data any
}

// ComponentReader resolves component payloads for an entity.
type ComponentReader interface {
	Component(Entity, ComponentType) (any, error)
	RemovedComponent(Entity, ComponentType) (any, error)
}

// Read returns the live payload of c on the entity.
func Read[T any](reader ComponentReader, entity Entity, c *Component[T]) (T, error) {
	data, err := reader.Component(entity, c)
	if err != nil {
		var zero T
		return zero, err
	}
	return data.(T), nil
}

// ReadRemoved returns the payload of c as it was when removed during the
// current tick, falling back to the live payload.
func ReadRemoved[T any](reader ComponentReader, entity Entity, c *Component[T]) (T, error) {
	data, err := reader.RemovedComponent(entity, c)
	if err != nil {
		var zero T
		return zero, err
	}
	return data.(T), nil
}
