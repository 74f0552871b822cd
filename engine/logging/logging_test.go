package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLoggerWritesComponentAndSortedFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", &buf, false).WithComponent("asset_cache")

	l.Warn("asset not loaded", WithField("op", "LoadClip"), WithField("asset", "hero.yaml"))

	line := buf.String()
	for _, want := range []string{"WARNING: ", "[asset_cache] asset not loaded", "{asset=hero.yaml, op=LoadClip}"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn", &buf, false)

	l.Info("dropped")
	l.Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
	l.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := New("chatty", &buf, false)
	l.Debug("dropped")
	l.Info("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestDefaultSwapIsConcurrent(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	replacement := Discard()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for range 100 {
				SetDefault(replacement)
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				if Default() == nil {
					t.Error("Default returned nil")
					return
				}
			}
		}()
	}
	wg.Wait()

	SetDefault(nil)
	if Default() != replacement {
		t.Fatal("SetDefault(nil) must keep the current logger")
	}
}
