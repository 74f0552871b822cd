package asset_cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-creature/engine/asset_cache"
	"github.com/Carmen-Shannon/oxy-creature/engine/fixture"
	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
)

func TestWatcherReportsChangedAsset(t *testing.T) {
	c := newCache(fixture.NewParser())
	path := writeAsset(t, t.TempDir(), "hero.yaml")
	h, _, err := c.LoadAsset(path)
	if err != nil {
		t.Fatal(err)
	}

	w, err := asset_cache.NewWatcher(c, logging.Discard())
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()
	if err := w.Add(h.Key()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	changed := make(chan string, 8)
	go w.Run(ctx, func(key string) { changed <- key })

	if err := os.WriteFile(path, quadsSource(t), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case key := <-changed:
		if key != h.Key() {
			t.Fatalf("changed key = %q, want %q", key, h.Key())
		}
	case <-ctx.Done():
		t.Fatal("no change event delivered")
	}
}

func TestWatcherRejectsInlineAssets(t *testing.T) {
	c := newCache(fixture.NewParser())
	if _, _, err := c.LoadAssetSource("inline", quadsSource(t)); err != nil {
		t.Fatal(err)
	}
	w, err := asset_cache.NewWatcher(c, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Add("inline"); err == nil {
		t.Fatal("inline assets have no file to watch")
	}
	if err := w.Add("missing"); err == nil {
		t.Fatal("unloaded assets cannot be watched")
	}
}
