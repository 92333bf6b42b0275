package ecs_test

import (
	"fmt"

	"github.com/plus3/tickecs/ecs"
)

// ExampleCommands defers a spawn until the tick has finished, so the new
// entity first shows up in the following tick's Added set.
func ExampleCommands() {
	world := ecs.NewWorld()
	label := ecs.NewComponent[string]("label", nil)

	spawner := ecs.NewSystem("spawner", nil, ecs.QuerySet{"labelled": {label}},
		func(frame *ecs.Frame, _ *struct{}) error {
			for entity := range frame.Queries.Get("labelled").Added.All() {
				name, _ := ecs.GetComponent(entity, label)
				fmt.Println("saw", name)
			}
			if frame.Queries.Get("labelled").Results.Len() == 0 {
				frame.Commands.Spawn(label.With("first"))
				fmt.Println("queued spawn")
			}
			return nil
		},
	)
	if err := world.RegisterSystem(spawner, nil); err != nil {
		panic(err)
	}

	_ = world.Execute(1)
	_ = world.Execute(1)
	_ = world.Execute(1)
	// Output:
	// queued spawn
	// saw first
}
