package ecs_test

import (
	"testing"

	"github.com/plus3/tickecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmbientContext(t *testing.T) {
	t.Run("create entity outside a tick", func(t *testing.T) {
		_, err := ecs.CreateEntity()
		assert.ErrorIs(t, err, ecs.ErrNoActiveContext)

		_, err = ecs.CurrentWorld()
		assert.ErrorIs(t, err, ecs.ErrNoActiveContext)
	})

	t.Run("create entity inside a system", func(t *testing.T) {
		w := ecs.NewWorld()
		var created ecs.Entity
		var current *ecs.World
		require.NoError(t, w.RegisterSystem(hookSystem, &hook{fn: func(*ecs.Frame) error {
			var err error
			current, err = ecs.CurrentWorld()
			if err != nil {
				return err
			}
			created, err = ecs.CreateEntity()
			if err != nil {
				return err
			}
			_, err = ecs.AddComponent(created, Name, "ambient")
			return err
		}}))

		require.NoError(t, w.Execute(1))
		assert.Same(t, w, current)
		assert.Equal(t, w.ID(), created.WorldID())

		name, err := ecs.GetComponent(created, Name)
		require.NoError(t, err)
		assert.Equal(t, "ambient", name)

		_, err = ecs.CreateEntity()
		assert.ErrorIs(t, err, ecs.ErrNoActiveContext, "context is cleared after the tick")
	})

	t.Run("nested worlds restore the outer world", func(t *testing.T) {
		outer := ecs.NewWorld()
		inner := ecs.NewWorld()
		var afterInner *ecs.World

		require.NoError(t, inner.RegisterSystem(hookSystem, &hook{}))
		require.NoError(t, outer.RegisterSystem(hookSystem, &hook{fn: func(*ecs.Frame) error {
			if err := inner.Execute(1); err != nil {
				return err
			}
			var err error
			afterInner, err = ecs.CurrentWorld()
			return err
		}}))

		require.NoError(t, outer.Execute(1))
		assert.Same(t, outer, afterInner)
	})

	t.Run("entity-routed functions", func(t *testing.T) {
		w := ecs.NewWorld()
		entity := w.CreateEntity()

		_, err := ecs.AddComponent(entity, Position, &Vec2{X: 1, Y: 1})
		require.NoError(t, err)
		assert.True(t, ecs.HasComponent(entity, Position))

		_, err = ecs.AddComponent(entity, Position, nil)
		assert.ErrorIs(t, err, ecs.ErrContractViolation)

		ecs.RemoveComponent(entity, Position)
		assert.False(t, ecs.HasComponent(entity, Position))
		assert.True(t, ecs.HasRemovedComponent(entity, Position))
		pos, err := ecs.GetRemovedComponent(entity, Position)
		require.NoError(t, err)
		assert.Equal(t, 1.0, pos.X)

		ecs.RemoveEntity(entity)
		require.NoError(t, w.Execute(1))
		assert.False(t, w.Alive(entity))
	})

	t.Run("entities without a world", func(t *testing.T) {
		orphan := ecs.Entity(1)

		_, err := ecs.WorldOf(orphan)
		assert.ErrorIs(t, err, ecs.ErrNotFound)
		_, err = ecs.GetComponent(orphan, Name)
		assert.ErrorIs(t, err, ecs.ErrNotFound)
		_, err = ecs.GetRemovedComponent(orphan, Name)
		assert.ErrorIs(t, err, ecs.ErrNotFound)
		assert.False(t, ecs.HasComponent(orphan, Name))
		assert.False(t, ecs.HasRemovedComponent(orphan, Name))

		got, err := ecs.AddComponent(orphan, Name, "x")
		assert.NoError(t, err)
		assert.Equal(t, orphan, got)
		assert.Equal(t, orphan, ecs.RemoveComponent(orphan, Name))
		assert.Equal(t, orphan, ecs.RemoveEntity(orphan))
	})

	t.Run("stopped worlds no longer resolve", func(t *testing.T) {
		w := ecs.NewWorld()
		entity := spawn(w, Name.With("gone"))
		w.Stop()

		_, err := ecs.GetComponent(entity, Name)
		assert.ErrorIs(t, err, ecs.ErrNotFound)
	})

	t.Run("stopped worlds release their id", func(t *testing.T) {
		seen := make(map[uint32]struct{})
		for i := 0; i < 1<<16+10; i++ {
			w := ecs.NewWorld()
			seen[w.ID()] = struct{}{}
			w.Stop()
		}
		assert.Greater(t, len(seen), 1<<16)
	})

	t.Run("reused ids do not resolve stale handles", func(t *testing.T) {
		first := ecs.NewWorld()
		stale := spawn(first, Name.With("first"))
		first.Stop()

		var reused *ecs.World
		for i := 0; i < 1<<18; i++ {
			w := ecs.NewWorld()
			if w.ID()&0xFFFF == first.ID()&0xFFFF {
				reused = w
				break
			}
			w.Stop()
		}
		require.NotNil(t, reused)
		defer reused.Stop()
		assert.NotEqual(t, first.ID(), reused.ID())

		fresh := spawn(reused, Name.With("second"))
		assert.Equal(t, stale.Index(), fresh.Index())
		assert.Equal(t, stale.Generation(), fresh.Generation())
		assert.NotEqual(t, stale, fresh)

		assert.False(t, reused.Alive(stale))
		_, err := ecs.GetComponent(stale, Name)
		assert.ErrorIs(t, err, ecs.ErrNotFound)
		name, err := ecs.GetComponent(fresh, Name)
		require.NoError(t, err)
		assert.Equal(t, "second", name)
	})
}
