package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const fixturePath = "../../engine/fixture/testdata/two_regions.yaml"

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewCLI(&out, &errOut).Execute(append(args, "--log-level", "error", "--log-colors=false"))
	return out.String(), err
}

func TestRunFrames(t *testing.T) {
	out, err := execute(t, "run", fixturePath, "--frames", "3", "--instances", "2", "--animation", "wave")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "ticked 3 frames on 2 instances") {
		t.Fatalf("output = %q", out)
	}
	if n := strings.Count(out, "animation=wave"); n != 2 {
		t.Fatalf("summaries = %d in %q", n, out)
	}
	if !strings.Contains(out, "points=8 indices=12") {
		t.Fatalf("draw buffer summary missing in %q", out)
	}
}

func TestRunEngineLoop(t *testing.T) {
	out, err := execute(t, "run", fixturePath, "--max-ticks", "3", "--tick-rate", "500")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "on 1 instances") || !strings.Contains(out, "animation=idle") {
		t.Fatalf("output = %q", out)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := execute(t, "run", "missing.yaml", "--frames", "1"); err == nil {
		t.Fatal("missing asset must fail")
	}
	if _, err := execute(t, "run"); err == nil {
		t.Fatal("run without an asset must fail")
	}
	if _, err := execute(t, "run", fixturePath, "--config", filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Fatal("explicit missing config must fail")
	}
}

func TestRunReadsConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "oxy.yaml")
	if err := os.WriteFile(cfg, []byte("instances: 3\nstart_animation: wave\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	out, err := execute(t, "run", fixturePath, "--frames", "1", "--config", cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if strings.Count(out, "animation=wave") != 3 {
		t.Fatalf("output = %q", out)
	}
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", fixturePath, "--skin", "armless,ghost")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{
		"points=8 indices=12",
		"body", "arm",
		"forearm", "parent=root",
		"idle", "frames=0..100 fps=60",
		"wave",
		"regions=1 indices=6",
		"unknown",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	src, err := os.ReadFile(fixturePath)
	if err != nil {
		t.Fatalf("failed to read fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "hero.yaml")
	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatalf("failed to write asset: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out, errOut syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- NewCLI(&out, &errOut).ExecuteContext(ctx, []string{"watch", path, "--log-level", "error", "--timeout", "10s"})
	}()

	waitFor := func(cond func(string) bool) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for !cond(out.String()) {
			if time.Now().After(deadline) {
				t.Fatalf("timed out, output = %q", out.String())
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
	waitFor(func(s string) bool { return strings.Contains(s, "watching") })

	if err := os.WriteFile(path, src, 0o644); err != nil {
		t.Fatalf("failed to rewrite asset: %v", err)
	}
	waitFor(func(s string) bool { return strings.Count(s, "animation=idle") >= 2 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch failed: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestReloadNotifier(t *testing.T) {
	var sent []string
	n := newReloadNotifier(false, nil)
	n.notify = func(title, message, _ string) error {
		sent = append(sent, title+": "+message)
		return nil
	}
	n.reloaded("hero.yaml", 12)
	if len(sent) != 0 {
		t.Fatal("disabled notifier must stay quiet")
	}

	n.enabled = true
	n.reloaded("hero.yaml", 12)
	n.failed("hero.yaml", os.ErrNotExist)
	if len(sent) != 2 || sent[0] != "oxy-creature: hero.yaml reloaded, 12 indices" || !strings.Contains(sent[1], "reload failed") {
		t.Fatalf("sent = %q", sent)
	}
}
