package director_test

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/creature"
	"github.com/Carmen-Shannon/oxy-creature/engine/director"
	"github.com/Carmen-Shannon/oxy-creature/engine/fixture"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
	"github.com/google/uuid"
)

func newInstances(t *testing.T, n int) []creature.Creature {
	t.Helper()
	src, err := fixture.Marshal(fixture.Quads("a", "b", "c"))
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	cache := asset_cache.NewAssetCache(
		asset_cache.WithParser(fixture.NewParser()),
		asset_cache.WithLogger(logging.Discard()),
	)

	out := make([]creature.Creature, n)
	for i := range out {
		out[i] = creature.NewCreature(
			creature.WithCache(cache),
			creature.WithSource("quads.yaml", src),
			creature.WithLogger(logging.Discard()),
		)
		if err := out[i].Init(); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
	}
	return out
}

func TestTickAdvancesEveryInstanceOnce(t *testing.T) {
	instances := newInstances(t, 16)
	d := director.NewDirector("main",
		director.WithInstances(instances...),
		director.WithTickWorkers(4),
		director.WithLogger(logging.Discard()),
	)
	defer d.Release()

	if got := d.Tick(0.5); got != len(instances) {
		t.Fatalf("Tick = %d, want %d", got, len(instances))
	}
	for i, c := range instances {
		// 0.5s at 60 frames per second
		if rt := c.State().RunTime; rt != 30 {
			t.Errorf("instance %d run time = %v, want 30", i, rt)
		}
	}
}

func TestTickSkipsUnloadedAndInactive(t *testing.T) {
	instances := newInstances(t, 2)
	d := director.NewDirector("main", director.WithLogger(logging.Discard()))
	defer d.Release()

	for _, c := range instances {
		d.Add(c)
	}
	d.Add(creature.NewCreature(creature.WithLogger(logging.Discard())))

	if got := d.Tick(0.1); got != 2 {
		t.Fatalf("Tick = %d, want 2", got)
	}

	d.SetActive(false)
	if got := d.Tick(0.1); got != 0 {
		t.Fatalf("inactive Tick = %d", got)
	}
}

func TestRegistry(t *testing.T) {
	instances := newInstances(t, 3)
	d := director.NewDirector("main", director.WithLogger(logging.Discard()))
	defer d.Release()

	ids := make([]uuid.UUID, len(instances))
	for i, c := range instances {
		ids[i] = d.Add(c)
	}

	if d.Count() != 3 {
		t.Fatalf("Count = %d", d.Count())
	}
	if d.Get(ids[1]) != instances[1] {
		t.Fatal("Get returned the wrong instance")
	}
	if d.Get(uuid.New()) != nil {
		t.Fatal("Get of unknown id must be nil")
	}

	if !d.Remove(ids[1]) || d.Remove(ids[1]) {
		t.Fatal("Remove must succeed once")
	}
	got := d.IDs()
	if len(got) != 2 || got[0] != ids[0] || got[1] != ids[2] {
		t.Fatalf("IDs = %v", got)
	}

	want := map[uuid.UUID]creature.Creature{ids[0]: instances[0], ids[2]: instances[2]}
	var seen int
	d.Each(func(id uuid.UUID, c creature.Creature) {
		seen++
		if want[id] != c {
			t.Errorf("Each yielded a mismatched pair for %s", id)
		}
	})
	if seen != 2 {
		t.Fatalf("Each visited %d", seen)
	}

	d.Clear()
	if d.Count() != 0 || len(d.IDs()) != 0 {
		t.Fatal("Clear left instances behind")
	}
}

func TestRelease(t *testing.T) {
	d := director.NewDirector("main",
		director.WithInstances(newInstances(t, 1)...),
		director.WithLogger(logging.Discard()),
	)
	d.Release()
	d.Release()
	if got := d.Tick(0.1); got != 0 {
		t.Fatalf("Tick after Release = %d", got)
	}
}
