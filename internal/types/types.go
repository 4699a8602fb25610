package types

// LyricEvent is one timed lyric block, captured interactively or loaded
// from a timing CSV. Index preserves capture order so ties on Timestamp
// stay stable through sorting.
type LyricEvent struct {
	Index     int
	Text      string
	Timestamp float64
}

// Cue is a derived subtitle entry. End is bounded by the following
// event (minus the overlap buffer) except for the last cue, which runs
// for the configured trailing buffer.
type Cue struct {
	Start     float64
	End       float64
	Text      string
	FadeOutMS int
	Last      bool
}

// Duration returns the cue span in seconds.
func (c Cue) Duration() float64 { return c.End - c.Start }

// Stems holds the separated audio stem paths produced by Demucs.
type Stems struct {
	Vocals string
	Drums  string
	Bass   string
	Other  string
}

// Instrumental lists the non-vocal stems in mix order.
func (s Stems) Instrumental() []string {
	return []string{s.Drums, s.Bass, s.Other}
}

// Manifest summarizes one pipeline run.
type Manifest struct {
	RunID     string  `json:"run_id"`
	Artist    string  `json:"artist,omitempty"`
	Title     string  `json:"title,omitempty"`
	Audio     string  `json:"audio"`
	Lyrics    string  `json:"lyrics,omitempty"`
	TimingCSV string  `json:"timing_csv,omitempty"`
	Subtitles string  `json:"subtitles"`
	Video     string  `json:"video"`
	CueCount  int     `json:"cue_count"`
	Offset    float64 `json:"offset,omitempty"`
}
