// Package lyrics turns raw lyric text into display blocks. A block is
// one subtitle cue: consecutive non-empty lines joined with the ASS
// line-break marker, with blank lines as block boundaries.
package lyrics

import (
	"regexp"
	"strings"
)

// BreakMarker joins lines inside one block so the renderer shows them
// stacked in a single cue.
const BreakMarker = `\N`

// Blocks splits raw lyric text into cue-sized blocks.
func Blocks(raw string) []string {
	var blocks []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, BreakMarker))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

// Lines splits raw lyric text into individual non-empty lines, one cue
// per line, for songs where block grouping is unwanted.
func Lines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

var (
	rectangles = regexp.MustCompile(`[■□�]+`)
	// Genius page furniture that leaks into scraped lyrics.
	metadataLine = regexp.MustCompile(`(?i)\b(Contributors|Produced by|Embed|You might also like|Translations|Track Info|Written by)\b`)
	sectionTag   = regexp.MustCompile(`^\[[^\]]*\]$`)
	bareNumber   = regexp.MustCompile(`^\d+$`)
)

// Clean strips scraper artifacts from fetched lyric text: mojibake
// rectangles, Genius metadata lines, [Verse]/[Chorus] section tags, and
// bare trailing numbers. Blank-line structure is preserved so block
// boundaries survive.
func Clean(raw string) string {
	var out []string
	blankRun := 0
	for _, line := range strings.Split(raw, "\n") {
		line = rectangles.ReplaceAllString(line, "")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			blankRun++
			if blankRun == 1 && len(out) > 0 {
				out = append(out, "")
			}
			continue
		case metadataLine.MatchString(trimmed),
			sectionTag.MatchString(trimmed),
			bareNumber.MatchString(trimmed):
			continue
		}
		blankRun = 0
		out = append(out, trimmed)
	}
	// Drop a trailing blank.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}
