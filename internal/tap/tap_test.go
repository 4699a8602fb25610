package tap

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"
)

// fakeClock returns the scripted instants in order, repeating the last
// one when exhausted.
func fakeClock(seconds ...float64) func() time.Time {
	base := time.Unix(1000, 0)
	i := 0
	return func() time.Time {
		idx := i
		if idx >= len(seconds) {
			idx = len(seconds) - 1
		}
		i++
		return base.Add(time.Duration(seconds[idx] * float64(time.Second)))
	}
}

func session(input string, clock func() time.Time) *Session {
	return &Session{
		In:  strings.NewReader(input),
		Out: &bytes.Buffer{},
		Now: clock,
	}
}

func TestRun_CapturesEachBlock(t *testing.T) {
	t.Parallel()

	// First read starts the clock at t=0; each following ENTER lands at
	// the scripted instants.
	s := session("\n\n\n\n", fakeClock(0, 1.5, 4.0, 7.25))
	events, err := s.Run([]string{"Line A", "Line B", "Line C"}, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	want := []float64{1.5, 4.0, 7.25}
	for i, w := range want {
		if math.Abs(events[i].Timestamp-w) > 1e-9 {
			t.Errorf("event %d at %.2f, want %.2f", i, events[i].Timestamp, w)
		}
		if events[i].Index != i {
			t.Errorf("event %d has index %d", i, events[i].Index)
		}
	}
	if events[1].Text != "Line B" {
		t.Errorf("event 1 text %q", events[1].Text)
	}
}

func TestRun_UndoRetimesBlock(t *testing.T) {
	t.Parallel()

	s := session("\n\nu\n\n\n", fakeClock(0, 1.0, 2.5, 3.0))
	events, err := s.Run([]string{"Line A", "Line B"}, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	// Line A was captured at 1.0, undone, then re-captured at 2.5.
	if math.Abs(events[0].Timestamp-2.5) > 1e-9 {
		t.Errorf("re-captured timestamp %.2f, want 2.5", events[0].Timestamp)
	}
	if math.Abs(events[1].Timestamp-3.0) > 1e-9 {
		t.Errorf("second timestamp %.2f, want 3.0", events[1].Timestamp)
	}
}

func TestRun_QuitKeepsPartialCapture(t *testing.T) {
	t.Parallel()

	s := session("\n\nq\n", fakeClock(0, 1.0))
	events, err := s.Run([]string{"Line A", "Line B", "Line C"}, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}

func TestRun_OffsetShiftsAndClamps(t *testing.T) {
	t.Parallel()

	s := session("\n\n\n", fakeClock(0, 0.5, 3.0))
	events, err := s.Run([]string{"A", "B"}, -1.0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if events[0].Timestamp != 0 {
		t.Errorf("expected clamp to 0, got %.2f", events[0].Timestamp)
	}
	if math.Abs(events[1].Timestamp-2.0) > 1e-9 {
		t.Errorf("expected 2.0, got %.2f", events[1].Timestamp)
	}
}

func TestRun_NoBlocks(t *testing.T) {
	t.Parallel()

	s := session("\n", fakeClock(0))
	if _, err := s.Run(nil, 0); err == nil {
		t.Fatalf("expected error for empty block list")
	}
}

func TestRun_InputClosedWithoutCaptures(t *testing.T) {
	t.Parallel()

	s := session("\n", fakeClock(0))
	if _, err := s.Run([]string{"A"}, 0); err == nil {
		t.Fatalf("expected error when input closes before any capture")
	}
}
