package profiler

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfilerReportsPerInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(WithInterval(10*time.Millisecond), WithLogger(log.New(&buf, "", 0)), withClock(clock.now))

	durations := []time.Duration{time.Millisecond, 3 * time.Millisecond, 2 * time.Millisecond}
	for i, d := range durations {
		p.Begin()
		clock.advance(d)
		if p.End() {
			t.Fatalf("update %d reported before the interval elapsed", i)
		}
	}

	p.Begin()
	clock.advance(4 * time.Millisecond)
	if !p.End() {
		t.Fatal("expected a report once the interval elapsed")
	}

	s := p.Last()
	if s.Updates != 4 {
		t.Errorf("Updates = %d, want 4", s.Updates)
	}
	if s.MaxUpdate != 4*time.Millisecond {
		t.Errorf("MaxUpdate = %s, want 4ms", s.MaxUpdate)
	}
	if s.AvgUpdate != 2500*time.Microsecond {
		t.Errorf("AvgUpdate = %s, want 2.5ms", s.AvgUpdate)
	}
	if !strings.Contains(buf.String(), "[Profiler] updates: 4") {
		t.Errorf("unexpected log output %q", buf.String())
	}

	p.Begin()
	clock.advance(time.Millisecond)
	if p.End() {
		t.Error("window should reset after a report")
	}
}

func TestProfilerIgnoresBadOptions(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithLogger(nil))
	if p.updateInterval != time.Second {
		t.Errorf("interval = %s, want 1s", p.updateInterval)
	}
	if p.logger == nil {
		t.Error("nil logger replaced the default")
	}
}
