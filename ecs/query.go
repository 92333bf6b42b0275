package ecs

import (
	"iter"
	"slices"

	"github.com/kamstrup/intmap"
)

type entityMembership = intmap.Set[Entity]

func newMembership() *entityMembership {
	return intmap.NewSet[Entity](64)
}

// queryIndex incrementally tracks the entities holding every required
// component, along with the entities that started or stopped matching since
// the last drain. added and removed are always disjoint.
type queryIndex struct {
	name     string
	required []ComponentType

	results *entityMembership
	added   *entityMembership
	removed *entityMembership
}

func newQueryIndex(name string, required []ComponentType) *queryIndex {
	return &queryIndex{
		name:     name,
		required: slices.Clone(required),
		results:  newMembership(),
		added:    newMembership(),
		removed:  newMembership(),
	}
}

// matches evaluates the conjunction against the live components of record.
// Entities pending removal never match.
func (q *queryIndex) matches(record *entityRecord) bool {
	if record == nil || record.pendingRemoval {
		return false
	}
	for _, c := range q.required {
		if !record.holds(c.ID()) {
			return false
		}
	}
	return true
}

// seed adds a matching entity to results without recording an add event.
func (q *queryIndex) seed(entity Entity, record *entityRecord) {
	if q.matches(record) {
		q.results.Add(entity)
	}
}

// update re-evaluates membership of one entity after a mutation.
func (q *queryIndex) update(entity Entity, record *entityRecord) {
	member := q.results.Has(entity)
	match := q.matches(record)

	switch {
	case match && !member:
		q.results.Add(entity)
		q.added.Add(entity)
		q.removed.Del(entity)
	case !match && member:
		q.results.Del(entity)
		q.added.Del(entity)
		q.removed.Add(entity)
	}
}

// evict drops an entity that is about to be deleted from the store.
func (q *queryIndex) evict(entity Entity) {
	q.results.Del(entity)
	q.added.Del(entity)
	q.removed.Del(entity)
}

// drain forgets added and removed; results is the durable membership.
func (q *queryIndex) drain() {
	q.added.Clear()
	q.removed.Clear()
}

func (q *queryIndex) snapshot() QueryResult {
	return QueryResult{
		Results: newEntitySet(q.results),
		Added:   newEntitySet(q.added),
		Removed: newEntitySet(q.removed),
	}
}

// EntitySet is an immutable, ordered set of entities captured at a point in
// time. Later mutations of the world never change it.
type EntitySet struct {
	entities []Entity
}

func newEntitySet(m *entityMembership) EntitySet {
	if m.Len() == 0 {
		return EntitySet{}
	}
	entities := make([]Entity, 0, m.Len())
	m.ForEach(func(entity Entity) bool {
		entities = append(entities, entity)
		return true
	})
	slices.Sort(entities)
	return EntitySet{entities: entities}
}

func (s EntitySet) Len() int {
	return len(s.entities)
}

func (s EntitySet) Contains(entity Entity) bool {
	_, ok := slices.BinarySearch(s.entities, entity)
	return ok
}

// All returns an iterator over the set in handle order.
func (s EntitySet) All() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for _, entity := range s.entities {
			if !yield(entity) {
				return
			}
		}
	}
}

// Slice returns a copy of the set's members.
func (s EntitySet) Slice() []Entity {
	return slices.Clone(s.entities)
}

// QueryResult is the frozen view of one query delivered to a system.
type QueryResult struct {
	// Results holds every entity currently matching the query.
	Results EntitySet
	// Added holds entities that started matching since the last tick drained.
	Added EntitySet
	// Removed holds entities that stopped matching, including entities removed
	// from the world, since the last tick drained.
	Removed EntitySet
}

// Queries maps the query names a system declared to their frozen results.
type Queries map[string]QueryResult

// Get returns the named query. Unknown names yield empty results.
func (q Queries) Get(name string) QueryResult {
	return q[name]
}
