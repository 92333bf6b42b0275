package ecs_test

import (
	"github.com/plus3/tickecs/ecs"
	"github.com/plus3/tickecs/schema"
)

// Common test component types
type Vec2 struct {
	X, Y float64
}

type Health struct {
	Current int
	Max     int
}

var vec2Schema = schema.Object(schema.Shape{
	"X": schema.Number(),
	"Y": schema.Number(),
})

var (
	Position = ecs.NewComponent[*Vec2]("position", vec2Schema)
	Velocity = ecs.NewComponent[*Vec2]("velocity", vec2Schema)
	Hp       = ecs.NewComponent[Health]("health", schema.Object(schema.Shape{
		"Current": schema.Number(),
		"Max":     schema.Number(),
	}))
	Name   = ecs.NewComponent[string]("name", schema.String())
	Player = ecs.NewComponent[struct{}]("player", nil)
)

// recording captures every snapshot delivered to a system.
type recording struct {
	snapshots []ecs.Queries
}

func (r *recording) last() ecs.Queries {
	return r.snapshots[len(r.snapshots)-1]
}

func newRecorder(name string, queries ecs.QuerySet) *ecs.System[*recording] {
	return ecs.NewSystem(name, nil, queries, func(frame *ecs.Frame, state *recording) error {
		state.snapshots = append(state.snapshots, frame.Queries)
		return nil
	})
}

// hook runs an arbitrary function inside a system callback.
type hook struct {
	fn func(frame *ecs.Frame) error
}

var hookSystem = ecs.NewSystem("hook", nil, nil, func(frame *ecs.Frame, state *hook) error {
	if state.fn == nil {
		return nil
	}
	return state.fn(frame)
})

func spawn(w *ecs.World, values ...ecs.ComponentValue) ecs.Entity {
	entity := w.CreateEntity()
	for _, v := range values {
		if _, err := w.AddComponent(entity, v.Type, v.Data); err != nil {
			panic(err)
		}
	}
	return entity
}
