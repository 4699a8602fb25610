package ports

import (
	"context"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

// VideoRenderer produces the final karaoke MP4 from an audio file and a
// subtitle document. The implementation is an opaque external encoder;
// a nonzero exit surfaces as an error with the tool's output attached.
type VideoRenderer interface {
	RenderKaraoke(ctx context.Context, audioPath, assPath, outMP4 string) error
	ProbeDuration(ctx context.Context, mediaPath string) (float64, error)
}

// LyricsSource fetches raw lyric text for a song. Implementations
// return ErrNotFound-style errors when no lyrics exist; the caller only
// consumes the resulting text as lyric block candidates.
type LyricsSource interface {
	Fetch(ctx context.Context, artist, title string) (string, error)
}

// VocalSeparator splits a song into stems.
type VocalSeparator interface {
	Separate(ctx context.Context, audioPath string) (types.Stems, error)
}

// StemMixer recombines stems into a playable track. vocalsPercent of 0
// drops the vocal stem entirely; 100 restores its full level.
type StemMixer interface {
	MixInstrumental(ctx context.Context, stems types.Stems, vocalsPercent float64, outPath string) error
}

// MediaPauser pauses other audio-playing applications before playback
// so tap timing is not drowned out. Best-effort: failures are swallowed.
type MediaPauser interface {
	PauseAll(ctx context.Context)
}
