package main

import (
	"fmt"

	"github.com/plus3/tickecs/ecs"
	"github.com/plus3/tickecs/schema"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type accumulator struct {
	Joined int
	Left   int
}

// newAccumulateSystem moves value from source into target on every entity
// holding both.
func newAccumulateSystem(name string, source, target *ecs.Component[*Counter]) *ecs.System[*accumulator] {
	return ecs.NewSystem(name,
		schema.Object(schema.Shape{"Joined": schema.Number(), "Left": schema.Number()}),
		ecs.QuerySet{"pairs": {source, target}},
		func(frame *ecs.Frame, state *accumulator) error {
			q := frame.Queries.Get("pairs")
			state.Joined += q.Added.Len()
			state.Left += q.Removed.Len()

			for entity := range q.Results.All() {
				src, err := ecs.Read(frame.World, entity, source)
				if err != nil {
					return err
				}
				dst, err := ecs.Read(frame.World, entity, target)
				if err != nil {
					return err
				}
				dst.Value += src.Value * frame.Delta
			}
			return nil
		},
	)
}

type decay struct {
	Expired int
}

var decaySystem = ecs.NewSystem("decay", nil,
	ecs.QuerySet{"mortal": {lifetimeComponent}},
	func(frame *ecs.Frame, state *decay) error {
		for entity := range frame.Queries.Get("mortal").Results.All() {
			lt, err := ecs.Read(frame.World, entity, lifetimeComponent)
			if err != nil {
				return err
			}
			lt.Remaining -= frame.Delta
			if lt.Remaining <= 0 {
				frame.World.RemoveEntity(entity)
				state.Expired++
			}
		}
		return nil
	},
)

type spawner struct {
	Rate    float64
	Spawned int

	budget  float64
	factory *entityFactory
	log     *zap.Logger
}

// spawnerSystem queues mortal entities at Rate per second. They join the
// world after the tick, so every system first sees them in Added.
var spawnerSystem = ecs.NewSystem("spawner",
	schema.Object(schema.Shape{"Rate": schema.Number()}),
	nil,
	func(frame *ecs.Frame, state *spawner) error {
		state.budget += state.Rate * frame.Delta
		for ; state.budget >= 1; state.budget-- {
			frame.Commands.Spawn(state.factory.values(state.factory.rng.Intn(4)+1, true)...)
			state.Spawned++
		}
		return nil
	},
	func(state *spawner) func() {
		state.log.Debug("spawner started", zap.Float64("rate", state.Rate))
		return func() {
			state.log.Info("spawner stopped", zap.Int("spawned", state.Spawned))
		}
	},
)

type churn struct {
	Rate      float64
	Mutations int

	factory *entityFactory
}

// churnSystem randomly adds and removes counters, and replaces entities,
// through the package-level functions.
var churnSystem = ecs.NewSystem("churn",
	schema.Object(schema.Shape{"Rate": schema.Number()}),
	ecs.QuerySet{"all": nil},
	func(frame *ecs.Frame, state *churn) error {
		rng := state.factory.rng
		for entity := range frame.Queries.Get("all").Results.All() {
			if rng.Float64() >= state.Rate {
				continue
			}
			state.Mutations++

			switch rng.Intn(3) {
			case 0:
				if _, err := ecs.AddComponent(entity, state.factory.counter(), &Counter{Value: rng.Float64()}); err != nil {
					return err
				}
			case 1:
				ecs.RemoveComponent(entity, state.factory.counter())
			case 2:
				ecs.RemoveEntity(entity)
				replacement, err := ecs.CreateEntity()
				if err != nil {
					return err
				}
				if _, err := ecs.AddComponent(replacement, state.factory.counter(), &Counter{Value: rng.Float64()}); err != nil {
					return err
				}
			}
		}
		return nil
	},
)

type audit struct {
	Checked int
}

// auditSystem runs last and fails the tick if its snapshot breaks the
// added/removed bookkeeping.
var auditSystem = ecs.NewSystem("audit", nil,
	ecs.QuerySet{"all": nil},
	func(frame *ecs.Frame, state *audit) error {
		q := frame.Queries.Get("all")
		for entity := range q.Added.All() {
			if q.Removed.Contains(entity) {
				return eris.Errorf("%s is both added and removed", entity)
			}
			if !q.Results.Contains(entity) {
				return eris.Errorf("%s is added but not a result", entity)
			}
		}
		for entity := range q.Removed.All() {
			if q.Results.Contains(entity) {
				return eris.Errorf("%s is removed but still a result", entity)
			}
		}
		state.Checked += q.Results.Len()
		return nil
	},
)

// systemStates keeps the states handed to the world so the report can read
// their counters.
type systemStates struct {
	decay        *decay
	spawner      *spawner
	churn        *churn
	audit        *audit
	accumulators []*accumulator
}

func registerSystems(world *ecs.World, factory *entityFactory, cfg RunConfig, log *zap.Logger) (*systemStates, error) {
	states := &systemStates{
		decay:   &decay{},
		spawner: &spawner{Rate: cfg.SpawnRate, factory: factory, log: log},
		churn:   &churn{Rate: cfg.ChurnRate, factory: factory},
		audit:   &audit{},
	}

	if err := world.RegisterSystem(decaySystem, states.decay); err != nil {
		return nil, err
	}
	if err := world.RegisterSystem(spawnerSystem, states.spawner); err != nil {
		return nil, err
	}
	if err := world.RegisterSystem(churnSystem, states.churn); err != nil {
		return nil, err
	}

	for i := 0; i < cfg.Systems; i++ {
		source := factory.counters[i%len(factory.counters)]
		target := factory.counters[(i+1)%len(factory.counters)]
		state := &accumulator{}
		if err := world.RegisterSystem(newAccumulateSystem(fmt.Sprintf("accumulate-%03d", i), source, target), state); err != nil {
			return nil, err
		}
		states.accumulators = append(states.accumulators, state)
	}

	if err := world.RegisterSystem(auditSystem, states.audit); err != nil {
		return nil, err
	}
	return states, nil
}
