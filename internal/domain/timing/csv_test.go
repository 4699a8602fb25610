package timing

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

func TestReadEvents_TapLayout(t *testing.T) {
	t.Parallel()

	in := "timestamp,text\n0.000,Line A\n3.000,Line B\n6.200,Line C\n"
	events, err := ReadEvents(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[1].Timestamp != 3.0 || events[1].Text != "Line B" {
		t.Fatalf("unexpected event: %+v", events[1])
	}
	if events[2].Index != 2 {
		t.Fatalf("expected sequential indexes, got %d", events[2].Index)
	}
}

func TestReadEvents_SyncedLayoutNoHeader(t *testing.T) {
	t.Parallel()

	// start,end,text rows as written by the auto-sync aligner; the end
	// column is ignored because cue ends come from the next event.
	in := "12.5,14.2,Hello there\n15.0,17.9,Second line\n"
	events, err := ReadEvents(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Timestamp != 12.5 || events[0].Text != "Hello there" {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestReadEvents_SkipsEmptyText(t *testing.T) {
	t.Parallel()

	in := "timestamp,text\n1.0,first\n2.0,\n3.0,third\n"
	events, err := ReadEvents(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].Text != "third" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
}

func TestReadEvents_BadTimestamp(t *testing.T) {
	t.Parallel()

	in := "1.0,first\nnot-a-number,second\n"
	if _, err := ReadEvents(strings.NewReader(in)); err == nil {
		t.Fatalf("expected error for bad timestamp past the header row")
	}
}

func TestWriteEvents_RoundTrip(t *testing.T) {
	t.Parallel()

	events := []types.LyricEvent{
		{Index: 0, Text: "Line A", Timestamp: 0},
		{Index: 1, Text: "with, comma", Timestamp: 3.125},
	}
	var buf bytes.Buffer
	if err := WriteEvents(&buf, events); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ReadEvents(&buf)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(back) != len(events) {
		t.Fatalf("expected %d events, got %d", len(events), len(back))
	}
	for i := range events {
		if back[i].Text != events[i].Text || back[i].Timestamp != events[i].Timestamp {
			t.Fatalf("event %d mismatch: got %+v, want %+v", i, back[i], events[i])
		}
	}
}

func TestWriteEventsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "capture.csv")
	events := []types.LyricEvent{{Text: "only line", Timestamp: 1.5}}
	if err := WriteEventsFile(path, events); err != nil {
		t.Fatalf("write file: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if !strings.HasPrefix(string(b), "timestamp,text\n") {
		t.Fatalf("missing header, got %q", string(b))
	}
	back, err := ReadEventsFile(path)
	if err != nil {
		t.Fatalf("read events file: %v", err)
	}
	if len(back) != 1 || back[0].Timestamp != 1.5 {
		t.Fatalf("unexpected round trip: %+v", back)
	}
}
