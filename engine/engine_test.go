package engine

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/director"
	"github.com/Carmen-Shannon/oxy-creature/engine/draw_buffer"
	"github.com/Carmen-Shannon/oxy-creature/engine/fixture"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
)

func newLoadedCreature(t *testing.T) creature.Creature {
	t.Helper()
	src, err := fixture.Marshal(fixture.Quads("a", "b"))
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	cache := asset_cache.NewAssetCache(asset_cache.WithParser(fixture.NewParser()), asset_cache.WithLogger(logging.Discard()))
	c := creature.NewCreature(creature.WithCache(cache), creature.WithSource("quads.yaml", src), creature.WithLogger(logging.Discard()))
	if err := c.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return c
}

func TestRunStopsAtTickLimit(t *testing.T) {
	c := newLoadedCreature(t)
	d := director.NewDirector("main", director.WithInstances(c), director.WithLogger(logging.Discard()))
	defer d.Release()

	var ticks, frames atomic.Int32
	e := NewEngine(
		WithTickRate(500),
		WithRenderFrameLimit(500),
		WithMaxTicks(5),
		WithDirector(0, d),
		WithLogger(logging.Discard()),
	)
	e.SetTickCallback(func(float32) { ticks.Add(1) })
	e.SetRenderCallback(func(float32) {
		frames.Add(1)
		c.Snapshot().Read(func(v draw_buffer.View) {
			if len(v.Colors) != v.NumPoints {
				t.Errorf("colors = %d, points = %d", len(v.Colors), v.NumPoints)
			}
		})
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		e.Quit()
		t.Fatal("Run did not return at the tick limit")
	}

	if e.Ticks() != 5 || ticks.Load() != 5 {
		t.Fatalf("ticks = %d, callback ran %d times", e.Ticks(), ticks.Load())
	}
	if frames.Load() == 0 {
		t.Fatal("render callback never ran")
	}
	if c.State().RunTime <= 0 {
		t.Fatal("director did not advance the instance")
	}
}

func TestQuitIsIdempotent(t *testing.T) {
	e := NewEngine(WithLogger(logging.Discard()))
	e.SetRenderCallback(func(float32) { e.Quit() })

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	e.Quit()
}

func TestDirectorRegistry(t *testing.T) {
	d := director.NewDirector("a", director.WithLogger(logging.Discard()))
	defer d.Release()

	e := NewEngine(WithLogger(logging.Discard()))
	e.AddDirector(2, d)
	if e.Director(2) != d || len(e.Directors()) != 1 {
		t.Fatal("director not registered")
	}
	e.RemoveDirector(2)
	if e.Director(2) != nil {
		t.Fatal("director not removed")
	}
}
