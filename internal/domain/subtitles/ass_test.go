package subtitles

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

func testCues() []types.Cue {
	return []types.Cue{
		{Start: 0, End: 2.95, Text: "Line A", FadeOutMS: 300},
		{Start: 3.0, End: 6.15, Text: "Line B", FadeOutMS: 300},
		{Start: 6.2, End: 6.7, Text: "Line C", FadeOutMS: 300, Last: true},
	}
}

func TestRender_ContainsStyleAndEvents(t *testing.T) {
	t.Parallel()

	doc := Render(testCues(), DefaultStyle())
	for _, want := range []string{
		"[Script Info]",
		"[V4+ Styles]",
		"Style: Default,Helvetica Neue Bold,52,",
		"[Events]",
		"Dialogue: 0,0:00:00.00,0:00:02.95,Default,,0,0,0,,{\\fad(0,300)}Line A",
		"Dialogue: 0,0:00:06.20,0:00:06.70,Default,,0,0,0,,{\\fad(0,300)}Line C",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "\\fad(300,") {
		t.Errorf("unexpected fade-in in document")
	}
}

func TestRender_SanitizesText(t *testing.T) {
	t.Parallel()

	cues := []types.Cue{{Start: 0, End: 1, Text: "oh, {darling}"}}
	doc := Render(cues, DefaultStyle())
	if strings.Contains(doc, ",,0,0,0,,oh,") {
		t.Fatalf("comma survived sanitization:\n%s", doc)
	}
	if strings.Contains(doc, "{darling}") {
		t.Fatalf("braces survived sanitization:\n%s", doc)
	}
}

func TestRoundTrip_CentisecondPrecision(t *testing.T) {
	t.Parallel()

	doc := Render(testCues(), DefaultStyle())
	back, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	orig := testCues()
	if len(back) != len(orig) {
		t.Fatalf("expected %d cues, got %d", len(orig), len(back))
	}
	for i := range orig {
		if math.Abs(back[i].Start-orig[i].Start) > 0.005 {
			t.Errorf("cue %d start: got %.3f, want %.3f", i, back[i].Start, orig[i].Start)
		}
		if math.Abs(back[i].End-orig[i].End) > 0.005 {
			t.Errorf("cue %d end: got %.3f, want %.3f", i, back[i].End, orig[i].End)
		}
		if back[i].Text != orig[i].Text {
			t.Errorf("cue %d text: got %q, want %q", i, back[i].Text, orig[i].Text)
		}
		if back[i].FadeOutMS != orig[i].FadeOutMS {
			t.Errorf("cue %d fade: got %d, want %d", i, back[i].FadeOutMS, orig[i].FadeOutMS)
		}
	}
	if !back[len(back)-1].Last {
		t.Errorf("expected final parsed cue to be marked last")
	}
}

func TestTimestamp_Format(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{0, "0:00:00.00"},
		{61.234, "0:01:01.23"},
		{2.95, "0:00:02.95"},
		{3661.5, "1:01:01.50"},
		{-1, "0:00:00.00"},
	}
	for _, tc := range cases {
		if got := Timestamp(tc.in); got != tc.want {
			t.Errorf("Timestamp(%g) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got, err := ParseTimestamp("1:01:01.50")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if math.Abs(got-3661.5) > 1e-9 {
		t.Fatalf("got %.3f, want 3661.5", got)
	}
	if _, err := ParseTimestamp("12.5"); err == nil {
		t.Fatalf("expected error for missing components")
	}
}

func TestWriteFile_Atomic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "song.ass")
	if err := WriteFile(path, testCues(), DefaultStyle()); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := ParseFile(path)
	if err != nil {
		t.Fatalf("parse written file: %v", err)
	}
	if len(back) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(back))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the subtitle file in %s, found %d entries", dir, len(entries))
	}
}
