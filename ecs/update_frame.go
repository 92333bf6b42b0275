package ecs

// Frame is handed to every system callback. Queries is a frozen snapshot
// taken just before the callback ran; World applies mutations immediately;
// Commands defers them until the tick has been cleaned up.
type Frame struct {
	Delta    float64
	World    *World
	Queries  Queries
	Commands *Commands
}

func newFrame(world *World, delta float64, queries Queries) *Frame {
	return &Frame{
		Delta:    delta,
		World:    world,
		Queries:  queries,
		Commands: world.commands,
	}
}
