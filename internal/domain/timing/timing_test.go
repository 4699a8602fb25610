package timing

import (
	"errors"
	"math"
	"testing"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

func events(stamps ...float64) []types.LyricEvent {
	out := make([]types.LyricEvent, len(stamps))
	for i, ts := range stamps {
		out[i] = types.LyricEvent{Index: i, Text: testLines[i%len(testLines)], Timestamp: ts}
	}
	return out
}

var testLines = []string{"Line A", "Line B", "Line C", "Line D"}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBuild_Example(t *testing.T) {
	t.Parallel()

	res, err := Build(events(0, 3.0, 6.2), DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []struct{ start, end float64 }{
		{0.00, 2.95},
		{3.00, 6.15},
		{6.20, 6.70},
	}
	if len(res.Cues) != len(want) {
		t.Fatalf("expected %d cues, got %d", len(want), len(res.Cues))
	}
	for i, w := range want {
		c := res.Cues[i]
		if !approx(c.Start, w.start) || !approx(c.End, w.end) {
			t.Errorf("cue %d: got %.2f-%.2f, want %.2f-%.2f", i, c.Start, c.End, w.start, w.end)
		}
	}
	if !res.Cues[2].Last {
		t.Errorf("expected final cue to be marked last")
	}
	if res.NonMonotonic {
		t.Errorf("sorted input flagged as non-monotonic")
	}
}

func TestBuild_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Build(nil, DefaultOptions())
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestBuild_DegenerateOverlap(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.OverlapBuffer = 5.0
	_, err := Build(events(0, 3.0, 6.0), opts)
	if !errors.Is(err, ErrDegenerateCue) {
		t.Fatalf("expected ErrDegenerateCue, got %v", err)
	}
}

func TestBuild_SortsUnorderedInput(t *testing.T) {
	t.Parallel()

	in := []types.LyricEvent{
		{Index: 0, Text: "late", Timestamp: 6.2},
		{Index: 1, Text: "early", Timestamp: 0},
		{Index: 2, Text: "middle", Timestamp: 3.0},
	}
	res, err := Build(in, DefaultOptions())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !res.NonMonotonic {
		t.Fatalf("expected non-monotonic warning for unordered input")
	}
	got := []string{res.Cues[0].Text, res.Cues[1].Text, res.Cues[2].Text}
	want := []string{"early", "middle", "late"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cue order %v, want %v", got, want)
		}
	}
	for i := 1; i < len(res.Cues); i++ {
		if res.Cues[i].Start < res.Cues[i-1].Start {
			t.Fatalf("cues not in ascending start order: %v then %v", res.Cues[i-1].Start, res.Cues[i].Start)
		}
	}
}

func TestBuild_EqualTimestampsAreDegenerate(t *testing.T) {
	t.Parallel()

	in := []types.LyricEvent{
		{Index: 0, Text: "first", Timestamp: 2.0},
		{Index: 1, Text: "second", Timestamp: 2.0},
		{Index: 2, Text: "third", Timestamp: 8.0},
	}
	opts := DefaultOptions()
	opts.OverlapBuffer = 0 // a zero gap is degenerate with any positive overlap
	res, err := Build(in, opts)
	if err == nil {
		t.Fatalf("expected degenerate cue for zero gap, got cues %v", res.Cues)
	}
	if !errors.Is(err, ErrDegenerateCue) {
		t.Fatalf("expected ErrDegenerateCue, got %v", err)
	}
}

func TestBuild_OffsetShiftsAndClamps(t *testing.T) {
	t.Parallel()

	base, err := Build(events(1.0, 4.0, 7.2), DefaultOptions())
	if err != nil {
		t.Fatalf("build base: %v", err)
	}

	opts := DefaultOptions()
	opts.Offset = 2.5
	shifted, err := Build(events(1.0, 4.0, 7.2), opts)
	if err != nil {
		t.Fatalf("build shifted: %v", err)
	}
	for i := range base.Cues {
		if !approx(shifted.Cues[i].Start, base.Cues[i].Start+2.5) {
			t.Errorf("cue %d start: got %.3f, want %.3f", i, shifted.Cues[i].Start, base.Cues[i].Start+2.5)
		}
		if !approx(shifted.Cues[i].End, base.Cues[i].End+2.5) {
			t.Errorf("cue %d end: got %.3f, want %.3f", i, shifted.Cues[i].End, base.Cues[i].End+2.5)
		}
	}

	// Negative offsets clamp at zero rather than producing negative times.
	opts.Offset = -2.0
	clamped, err := Build(events(1.0, 4.0, 7.2), opts)
	if err != nil {
		t.Fatalf("build clamped: %v", err)
	}
	if !approx(clamped.Cues[0].Start, 0) {
		t.Errorf("expected first cue clamped to 0, got %.3f", clamped.Cues[0].Start)
	}
}

func TestBuild_LastCueDurationEqualsBuffer(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Buffer = 1.25
	res, err := Build(events(0, 5.0), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	last := res.Cues[len(res.Cues)-1]
	if !approx(last.Duration(), 1.25) {
		t.Fatalf("last cue duration %.3f, want 1.25", last.Duration())
	}
}

func TestBuild_OverlapBufferHolds(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.BlockSpacing = 0.1
	stamps := []float64{0, 2.4, 5.0, 9.9, 14.0}
	res, err := Build(events(stamps...), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(res.Cues) != len(stamps) {
		t.Fatalf("expected %d cues, got %d", len(stamps), len(res.Cues))
	}
	for i := 0; i < len(res.Cues)-1; i++ {
		if res.Cues[i].End+opts.OverlapBuffer > stamps[i+1]+1e-9 {
			t.Errorf("cue %d end %.3f violates overlap buffer before next start %.3f", i, res.Cues[i].End, stamps[i+1])
		}
	}
}

func TestBuild_BlockSpacingNeverPassesNextEvent(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.BlockSpacing = 10 // absurdly large on purpose
	_, err := Build(events(0, 3.0, 6.2), opts)
	// Start clamps to the next timestamp, which makes rawEnd precede it;
	// that must surface as a degenerate cue, not a negative duration.
	if !errors.Is(err, ErrDegenerateCue) {
		t.Fatalf("expected ErrDegenerateCue, got %v", err)
	}
}

func TestBuild_MinVisibleFloor(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.OverlapBuffer = 0.05
	opts.MinVisible = 0.30
	res, err := Build(events(0, 0.2, 5.0), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if res.Cues[0].Duration() < opts.MinVisible-1e-9 {
		t.Fatalf("cue duration %.3f below min visible %.3f", res.Cues[0].Duration(), opts.MinVisible)
	}
}

func TestBuild_FadeClampedToCueSpan(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.FadeOutMS = 5000
	res, err := Build(events(0, 3.0, 6.2), opts)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i, c := range res.Cues {
		if max := int(c.Duration() * 1000); c.FadeOutMS > max {
			t.Errorf("cue %d fade %dms exceeds span %dms", i, c.FadeOutMS, max)
		}
	}
}

func TestBuild_RejectsBadOptions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{"zero buffer", func(o *Options) { o.Buffer = 0 }},
		{"negative overlap", func(o *Options) { o.OverlapBuffer = -1 }},
		{"negative spacing", func(o *Options) { o.BlockSpacing = -0.5 }},
		{"negative fade", func(o *Options) { o.FadeOutMS = -1 }},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			tc.mutate(&opts)
			if _, err := Build(events(0, 3.0), opts); err == nil {
				t.Fatalf("expected option validation error")
			}
		})
	}
}
