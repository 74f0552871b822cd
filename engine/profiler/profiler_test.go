package profiler

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-creature/engine/logging"
)

func TestTickLogsAfterInterval(t *testing.T) {
	var out bytes.Buffer
	p := NewProfiler(logging.New("info", &out, false), "tick", WithInterval(time.Hour))

	if p.Tick() {
		t.Fatal("logged before the interval elapsed")
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output %q", out.String())
	}

	p.lastTime = time.Now().Add(-2 * time.Hour)
	if !p.Tick() {
		t.Fatal("did not log after the interval")
	}
	line := out.String()
	for _, want := range []string{"[profiler]", "tick", "rate=", "heap_mb="} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
	if p.frameCount != 0 {
		t.Fatalf("frame count not reset: %d", p.frameCount)
	}
}
