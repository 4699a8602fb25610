// Package timing derives subtitle cues from timestamped lyric events.
// It is a pure transform: one validation pass, one derivation pass, no
// I/O. Callers decide what to do with the warnings it reports.
package timing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

var (
	// ErrEmptyInput is returned when no lyric events were given.
	ErrEmptyInput = errors.New("timing: no lyric events")

	// ErrDegenerateCue is returned when a cue would end at or before its
	// start, which signals misconfigured buffers (an overlap buffer larger
	// than the gap between consecutive timestamps).
	ErrDegenerateCue = errors.New("timing: degenerate cue")
)

const (
	// DefaultBuffer is how long the final cue stays on screen, since no
	// following event bounds it.
	DefaultBuffer = 0.5

	// DefaultOverlapBuffer is the minimum gap between the end of one cue
	// and the start of the next, so two cues never render simultaneously.
	DefaultOverlapBuffer = 0.05

	// DefaultMinVisible keeps every cue on screen long enough to read
	// even when events are packed tightly.
	DefaultMinVisible = 0.30

	// DefaultFadeOutMS is the exit fade. Karaoke lines appear instantly,
	// so there is deliberately no fade-in.
	DefaultFadeOutMS = 300
)

// Options control cue derivation. The zero value is not usable; call
// DefaultOptions and override from there.
type Options struct {
	// Offset is added to every event timestamp before derivation, to
	// correct audio/video sync drift. May be negative; results are
	// clamped at zero.
	Offset float64

	// BlockSpacing delays each cue's start relative to its raw timestamp
	// to give breathing room between blocks. Never pushes a start past
	// the next event's timestamp.
	BlockSpacing float64

	Buffer        float64
	OverlapBuffer float64
	MinVisible    float64
	FadeOutMS     int
}

// DefaultOptions returns the stock derivation parameters.
func DefaultOptions() Options {
	return Options{
		Buffer:        DefaultBuffer,
		OverlapBuffer: DefaultOverlapBuffer,
		MinVisible:    DefaultMinVisible,
		FadeOutMS:     DefaultFadeOutMS,
	}
}

func (o Options) validate() error {
	if o.Buffer <= 0 {
		return fmt.Errorf("timing: buffer must be > 0, got %g", o.Buffer)
	}
	if o.OverlapBuffer < 0 {
		return fmt.Errorf("timing: overlap buffer must be >= 0, got %g", o.OverlapBuffer)
	}
	if o.BlockSpacing < 0 {
		return fmt.Errorf("timing: block spacing must be >= 0, got %g", o.BlockSpacing)
	}
	if o.MinVisible < 0 {
		return fmt.Errorf("timing: min visible must be >= 0, got %g", o.MinVisible)
	}
	if o.FadeOutMS < 0 {
		return fmt.Errorf("timing: fade out must be >= 0, got %d", o.FadeOutMS)
	}
	return nil
}

// Result is the outcome of a Build call.
type Result struct {
	Cues []types.Cue

	// NonMonotonic reports that the input timestamps were not in
	// non-decreasing order. Events were sorted anyway; the flag exists so
	// the caller can log the data-quality warning.
	NonMonotonic bool
}

// Build derives a cue list from lyric events. Events do not need to be
// sorted; a stable sort keyed on timestamp preserves capture order for
// ties. Every cue except the last ends overlap-buffer seconds before the
// next event starts; the last cue runs for the trailing buffer.
func Build(events []types.LyricEvent, opts Options) (Result, error) {
	if len(events) == 0 {
		return Result{}, ErrEmptyInput
	}
	if err := opts.validate(); err != nil {
		return Result{}, err
	}

	shifted := make([]types.LyricEvent, len(events))
	copy(shifted, events)
	for i := range shifted {
		ts := shifted[i].Timestamp + opts.Offset
		if ts < 0 {
			// Subtitle times cannot precede the start of the video.
			ts = 0
		}
		shifted[i].Timestamp = ts
	}

	nonMonotonic := false
	for i := 1; i < len(shifted); i++ {
		if shifted[i].Timestamp < shifted[i-1].Timestamp {
			nonMonotonic = true
			break
		}
	}
	sort.SliceStable(shifted, func(i, j int) bool {
		return shifted[i].Timestamp < shifted[j].Timestamp
	})

	cues := make([]types.Cue, 0, len(shifted))
	for i, ev := range shifted {
		cue := types.Cue{Text: ev.Text, FadeOutMS: opts.FadeOutMS}
		if i == len(shifted)-1 {
			cue.Start = ev.Timestamp
			cue.End = cue.Start + opts.Buffer
			cue.Last = true
		} else {
			next := shifted[i+1].Timestamp
			cue.Start = ev.Timestamp + opts.BlockSpacing
			if cue.Start > next {
				cue.Start = next
			}
			rawEnd := next - opts.OverlapBuffer
			// The degenerate check runs on the raw bound, before the
			// minimum-visible floor, so the floor never masks a
			// misconfigured overlap buffer.
			if rawEnd <= cue.Start {
				return Result{}, fmt.Errorf(
					"%w: block %d (%.2fs) would end at %.2fs; overlap buffer %.2fs exceeds the gap to the next block",
					ErrDegenerateCue, i, cue.Start, rawEnd, opts.OverlapBuffer)
			}
			cue.End = rawEnd
			if min := cue.Start + opts.MinVisible; cue.End < min {
				cue.End = min
			}
		}
		if cue.End <= cue.Start {
			return Result{}, fmt.Errorf("%w: block %d spans %.2fs-%.2fs", ErrDegenerateCue, i, cue.Start, cue.End)
		}
		// The fade window must fit inside the cue.
		if maxFade := int(cue.Duration() * 1000); cue.FadeOutMS > maxFade {
			cue.FadeOutMS = maxFade
		}
		cues = append(cues, cue)
	}

	return Result{Cues: cues, NonMonotonic: nonMonotonic}, nil
}
