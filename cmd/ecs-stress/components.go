package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/plus3/tickecs/ecs"
	"github.com/plus3/tickecs/schema"
)

type Counter struct {
	Value float64
}

type Lifetime struct {
	Remaining float64 // seconds
}

var lifetimeComponent = ecs.NewComponent[*Lifetime]("lifetime", schema.Object(schema.Shape{
	"Remaining": schema.Number(),
}))

func newCounterComponents(n int) []*ecs.Component[*Counter] {
	checker := schema.Object(schema.Shape{"Value": schema.Number()})
	counters := make([]*ecs.Component[*Counter], n)
	for i := range counters {
		counters[i] = ecs.NewComponent[*Counter](fmt.Sprintf("counter-%03d", i), checker)
	}
	return counters
}

// entityFactory produces randomized component sets. It is only used from the
// goroutine driving the world.
type entityFactory struct {
	rng      *rand.Rand
	counters []*ecs.Component[*Counter]
	lifetime time.Duration
}

func newEntityFactory(cfg RunConfig) *entityFactory {
	return &entityFactory{
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		counters: newCounterComponents(cfg.Components),
		lifetime: cfg.Lifetime,
	}
}

func (f *entityFactory) counter() *ecs.Component[*Counter] {
	return f.counters[f.rng.Intn(len(f.counters))]
}

func (f *entityFactory) newLifetime() *Lifetime {
	return &Lifetime{Remaining: f.lifetime.Seconds() * (0.5 + f.rng.Float64())}
}

// values returns n distinct counters, plus a lifetime when mortal is set.
func (f *entityFactory) values(n int, mortal bool) []ecs.ComponentValue {
	n = min(n, len(f.counters))
	values := make([]ecs.ComponentValue, 0, n+1)
	for _, i := range f.rng.Perm(len(f.counters))[:n] {
		values = append(values, f.counters[i].With(&Counter{Value: f.rng.Float64()}))
	}
	if mortal {
		values = append(values, lifetimeComponent.With(f.newLifetime()))
	}
	return values
}

func spawnEntity(world *ecs.World, values []ecs.ComponentValue) (ecs.Entity, error) {
	entity := world.CreateEntity()
	for _, v := range values {
		if _, err := world.AddComponent(entity, v.Type, v.Data); err != nil {
			return entity, err
		}
	}
	return entity, nil
}
