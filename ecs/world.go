package ecs

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// World owns the entity store, the registered systems and their query
// indices. A World is not safe for concurrent use: every mutation and every
// tick must happen on the goroutine driving Execute.
type World struct {
	id       uint32
	log      *zap.Logger
	store    *entityStore
	systems  []*systemInstance
	stats    []*systemStatsInternal
	pending  []Entity
	commands *Commands

	ticks   int64
	running bool
	stopped bool
}

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used for registration, teardown and failed ticks.
func WithLogger(log *zap.Logger) Option {
	return func(w *World) {
		if log != nil {
			w.log = log
		}
	}
}

// NewWorld creates an empty world and registers it so entity handles can
// be routed back to it. The registration is held until Stop; a world that is
// never stopped stays reachable for the life of the process. At most 65535
// worlds can be live at once.
func NewWorld(opts ...Option) *World {
	w := &World{
		log:      zap.NewNop(),
		commands: newCommands(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.id = registerWorld(w)
	w.store = newEntityStore(w.id)
	w.log = w.log.With(zap.Uint32("world", w.id))
	return w
}

// ID returns the id encoded in every entity of this world. It is unique
// among live worlds; see NewWorld for how ids are recycled.
func (w *World) ID() uint32 {
	return w.id
}

// CreateEntity allocates a new entity with no components.
func (w *World) CreateEntity() Entity {
	entity, record := w.store.create()
	w.notify(entity, record)
	return entity
}

// Alive reports whether the handle still resolves, including entities that
// are pending removal until the end of the tick.
func (w *World) Alive(entity Entity) bool {
	return w.store.lookup(entity) != nil
}

// Component returns the live payload of c on the entity.
func (w *World) Component(entity Entity, c ComponentType) (any, error) {
	record := w.store.lookup(entity)
	if record == nil {
		return nil, eris.Wrapf(ErrNotFound, "%s", entity)
	}
	data, ok := record.components.Get(c.ID())
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "%s has no component %s", entity, c.Name())
	}
	return data, nil
}

func (w *World) HasComponent(entity Entity, c ComponentType) bool {
	record := w.store.lookup(entity)
	return record != nil && record.holds(c.ID())
}

// RemovedComponent returns the payload of c as it was when it was removed
// during the current tick. If it was not removed, the live payload is
// returned instead.
func (w *World) RemovedComponent(entity Entity, c ComponentType) (any, error) {
	record := w.store.lookup(entity)
	if record == nil {
		return nil, eris.Wrapf(ErrNotFound, "%s", entity)
	}
	if data, ok := record.removed.Get(c.ID()); ok {
		return data, nil
	}
	if data, ok := record.components.Get(c.ID()); ok {
		return data, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "%s has no removed component %s", entity, c.Name())
}

func (w *World) HasRemovedComponent(entity Entity, c ComponentType) bool {
	record := w.store.lookup(entity)
	if record == nil {
		return false
	}
	return record.removed.Has(c.ID()) || record.holds(c.ID())
}

// AddComponent stores data under c, replacing any previous payload. Unknown
// entities and entities pending removal are left untouched and their payload
// is not checked. Otherwise a payload that fails the descriptor's schema is rejected with ErrContractViolation.
func (w *World) AddComponent(entity Entity, c ComponentType, data any) (Entity, error) {
	record := w.store.lookup(entity)
	if record == nil || record.pendingRemoval {
		return entity, nil
	}
	if err := c.Validate(data); err != nil {
		return entity, err
	}
	record.put(c.ID(), data)
	w.notify(entity, record)
	return entity, nil
}

// RemoveComponent moves c into the entity's removed history for the rest of
// the tick. It is a no-op if the entity is unknown or does not hold c.
func (w *World) RemoveComponent(entity Entity, c ComponentType) Entity {
	record := w.store.lookup(entity)
	if record == nil || !record.take(c.ID()) {
		return entity
	}
	w.notify(entity, record)
	return entity
}

// RemoveEntity marks the entity for deletion at the end of the tick. Its
// components move to the removed history and it leaves every query at once.
func (w *World) RemoveEntity(entity Entity) Entity {
	record := w.store.lookup(entity)
	if record == nil || record.pendingRemoval {
		return entity
	}
	record.pendingRemoval = true
	record.takeAll()
	w.pending = append(w.pending, entity)
	w.notify(entity, record)
	return entity
}

// notify re-evaluates one entity against every query of every system.
func (w *World) notify(entity Entity, record *entityRecord) {
	for _, system := range w.systems {
		for _, q := range system.queries {
			q.update(entity, record)
		}
	}
}

// RegisterSystem validates state, seeds the system's queries from the
// entities that already exist and runs its init callback. Registration
// order is execution order.
func (w *World) RegisterSystem(desc SystemDescriptor, state any) error {
	if w.stopped {
		return eris.Wrapf(ErrStopped, "register system %s", desc.Name())
	}

	instance, err := desc.instantiate(state)
	if err != nil {
		return err
	}

	w.store.each(func(entity Entity, record *entityRecord) {
		for _, q := range instance.queries {
			q.seed(entity, record)
		}
	})

	if instance.start != nil {
		instance.teardown = instance.start()
	}

	w.systems = append(w.systems, instance)
	w.stats = append(w.stats, &systemStatsInternal{
		name:        instance.name,
		minDuration: time.Duration(1<<63 - 1),
	})

	w.log.Debug("system registered",
		zap.String("system", instance.name),
		zap.Strings("queries", desc.QueryNames()),
		zap.Int("entities", w.store.count()),
	)
	return nil
}

// Execute runs one tick: every system in registration order, each with a
// snapshot of its queries taken right before it runs, then end-of-tick
// cleanup, then any commands queued during the tick.
//
// A system returning an error or panicking aborts the rest of the tick.
// Cleanup still runs and queued commands are discarded.
func (w *World) Execute(delta float64) (err error) {
	if w.stopped {
		return eris.Wrap(ErrStopped, "execute")
	}
	if w.running {
		return eris.Wrap(ErrTickInProgress, "execute")
	}
	w.running = true

	completed := false
	defer func() {
		w.cleanup()
		w.running = false
		w.ticks++
		if !completed {
			w.commands.reset()
			return
		}
		err = w.commands.Flush(w)
	}()

	for i := range w.systems {
		if err := w.runSystem(i, delta); err != nil {
			w.log.Error("tick aborted",
				zap.String("system", w.systems[i].name),
				zap.Int64("tick", w.ticks),
				zap.Error(err),
			)
			return eris.Wrapf(err, "system %s", w.systems[i].name)
		}
	}
	completed = true
	return nil
}

func (w *World) runSystem(i int, delta float64) error {
	system := w.systems[i]
	frame := newFrame(w, delta, system.snapshot())

	restore := enterWorld(w)
	defer restore()

	start := time.Now()
	err := system.run(frame)
	w.stats[i].record(time.Since(start))
	return err
}

// cleanup drains every query, forgets removed component history and
// deletes entities marked for removal.
func (w *World) cleanup() {
	w.store.each(func(_ Entity, record *entityRecord) {
		record.removed.Clear()
	})

	for _, system := range w.systems {
		for _, q := range system.queries {
			q.drain()
		}
	}

	for _, entity := range w.pending {
		for _, system := range w.systems {
			for _, q := range system.queries {
				q.evict(entity)
			}
		}
		w.store.destroy(entity)
	}
	w.pending = w.pending[:0]
}

// Stop runs every teardown callback in registration order. Later calls are
// no-ops. A stopped world no longer ticks or accepts systems, and its
// entities no longer resolve through the package-level functions. Stop also
// releases the world's id for reuse by a later NewWorld.
func (w *World) Stop() {
	if w.stopped {
		return
	}
	w.stopped = true

	for _, system := range w.systems {
		if system.teardown != nil {
			w.log.Debug("system teardown", zap.String("system", system.name))
			system.teardown()
		}
	}
	unregisterWorld(w.id)
	w.log.Debug("world stopped", zap.Int("systems", len(w.systems)))
}
