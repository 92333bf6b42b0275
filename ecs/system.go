package ecs

import (
	"reflect"
	"slices"
	"sort"

	"github.com/plus3/tickecs/schema"
	"github.com/rotisserie/eris"
)

// QuerySet maps query names to the components an entity must hold to match.
type QuerySet map[string][]ComponentType

// ExecuteFunc is a system body. It runs once per tick with the system's state
// and a frame carrying the delta, the world and frozen query results.
type ExecuteFunc[S any] func(frame *Frame, state S) error

// InitFunc runs once when a system is registered. The returned teardown,
// which may be nil, runs when the world is stopped.
type InitFunc[S any] func(state S) func()

// SystemDescriptor is the type-erased view of a System, accepted by
// World.RegisterSystem.
type SystemDescriptor interface {
	Name() string
	QueryNames() []string
	instantiate(state any) (*systemInstance, error)
}

type querySpec struct {
	name     string
	required []ComponentType
}

// System is an immutable bundle of a state schema, named queries, an execute
// callback and an optional init callback.
type System[S any] struct {
	name    string
	schema  schema.Checker
	queries []querySpec
	execute ExecuteFunc[S]
	init    InitFunc[S]
}

// NewSystem creates a system descriptor. Queries are indexed in name order.
func NewSystem[S any](name string, stateSchema schema.Checker, queries QuerySet, execute ExecuteFunc[S], init ...InitFunc[S]) *System[S] {
	if execute == nil {
		panic("system " + name + " has no execute callback")
	}

	specs := make([]querySpec, 0, len(queries))
	for queryName, required := range queries {
		specs = append(specs, querySpec{name: queryName, required: slices.Clone(required)})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].name < specs[j].name })

	s := &System[S]{
		name:    name,
		schema:  stateSchema,
		queries: specs,
		execute: execute,
	}
	if len(init) > 0 {
		s.init = init[0]
	}
	return s
}

func (s *System[S]) Name() string {
	return s.name
}

func (s *System[S]) QueryNames() []string {
	names := make([]string, len(s.queries))
	for i, q := range s.queries {
		names[i] = q.name
	}
	return names
}

func (s *System[S]) instantiate(state any) (*systemInstance, error) {
	typed, ok := state.(S)
	if !ok {
		if state != nil || !nilable(reflect.TypeFor[S]()) {
			return nil, eris.Wrapf(ErrContractViolation, "system %s: state of type %T is not %s", s.name, state, reflect.TypeFor[S]())
		}
	}
	if err := schema.Check(s.schema, state); err != nil {
		return nil, eris.Wrapf(ErrContractViolation, "system %s: %v", s.name, err)
	}

	instance := &systemInstance{
		name:    s.name,
		queries: make([]*queryIndex, len(s.queries)),
		run: func(frame *Frame) error {
			return s.execute(frame, typed)
		},
	}
	for i, q := range s.queries {
		instance.queries[i] = newQueryIndex(q.name, q.required)
	}
	if s.init != nil {
		instance.start = func() func() {
			return s.init(typed)
		}
	}
	return instance, nil
}

// systemInstance binds a descriptor to its state, teardown and query indices.
type systemInstance struct {
	name     string
	queries  []*queryIndex
	run      func(frame *Frame) error
	start    func() func()
	teardown func()
}

func (si *systemInstance) snapshot() Queries {
	queries := make(Queries, len(si.queries))
	for _, q := range si.queries {
		queries[q.name] = q.snapshot()
	}
	return queries
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
