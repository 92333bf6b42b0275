package ecs

import "go.uber.org/multierr"

// Commands buffers mutations that are applied after the tick has been
// cleaned up, so their effects first show up in the next tick's snapshots.
// Operations on entities that no longer resolve at flush time are dropped.
type Commands struct {
	spawns  []spawnCommand
	deletes []Entity
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []func()
}

func newCommands() *Commands {
	return &Commands{}
}

type spawnCommand struct {
	components []ComponentValue
	then       func(Entity)
}

type addComponentCommand struct {
	entity    Entity
	component ComponentValue
}

type removeComponentCommand struct {
	entity    Entity
	component ComponentType
}

// Defer queues a function to run once every other command has been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues the creation of an entity holding the given components.
func (c *Commands) Spawn(components ...ComponentValue) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// SpawnThen is Spawn with a callback receiving the created entity.
func (c *Commands) SpawnThen(then func(Entity), components ...ComponentValue) {
	c.spawns = append(c.spawns, spawnCommand{components: components, then: then})
}

// RemoveEntity queues an entity removal.
func (c *Commands) RemoveEntity(entity Entity) {
	c.deletes = append(c.deletes, entity)
}

// AddComponent queues a component addition.
func (c *Commands) AddComponent(entity Entity, component ComponentType, data any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: ComponentValue{Type: component, Data: data},
	})
}

// RemoveComponent queues a component removal.
func (c *Commands) RemoveComponent(entity Entity, component ComponentType) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:    entity,
		component: component,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.spawns) + len(c.deletes) + len(c.adds) + len(c.removes) + len(c.defers)
}

// Flush applies every queued command to the world and resets the buffer.
// Payloads rejected by their schema are skipped and reported together.
// Spawn and defer callbacks run with world as the current world, so they can
// use CreateEntity and the other package-level functions.
func (c *Commands) Flush(world *World) error {
	restore := enterWorld(world)
	defer restore()

	var err error

	for _, entity := range c.deletes {
		world.RemoveEntity(entity)
	}

	for _, cmd := range c.removes {
		world.RemoveComponent(cmd.entity, cmd.component)
	}

	for _, cmd := range c.adds {
		_, addErr := world.AddComponent(cmd.entity, cmd.component.Type, cmd.component.Data)
		err = multierr.Append(err, addErr)
	}

	for _, cmd := range c.spawns {
		entity := world.CreateEntity()
		for _, component := range cmd.components {
			_, addErr := world.AddComponent(entity, component.Type, component.Data)
			err = multierr.Append(err, addErr)
		}
		if cmd.then != nil {
			cmd.then(entity)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.reset()
	return err
}

func (c *Commands) reset() {
	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
