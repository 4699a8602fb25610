// Package subtitles serializes cue lists into ASS subtitle documents
// and parses them back. The style section mirrors the layout the ffmpeg
// subtitles filter renders over a plain background: one Default style,
// no fade-in, exit fade per dialogue line.
package subtitles

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

// Style controls the single ASS style emitted in the document header.
type Style struct {
	FontName  string
	FontSize  int
	PlayResX  int
	PlayResY  int
	Alignment int // ASS numpad alignment; 5 = middle-center
	MarginV   int
}

// DefaultStyle matches the renderer defaults: centered lyrics on a
// 1280x720 canvas.
func DefaultStyle() Style {
	return Style{
		FontName:  "Helvetica Neue Bold",
		FontSize:  52,
		PlayResX:  1280,
		PlayResY:  720,
		Alignment: 5,
		MarginV:   60,
	}
}

// Render produces the full ASS document for an ordered cue list.
func Render(cues []types.Cue, style Style) string {
	var b strings.Builder
	b.WriteString(header(style))
	for _, c := range cues {
		b.WriteString("Dialogue: 0,")
		b.WriteString(Timestamp(c.Start))
		b.WriteString(",")
		b.WriteString(Timestamp(c.End))
		b.WriteString(",Default,,0,0,0,,")
		if c.FadeOutMS > 0 {
			fmt.Fprintf(&b, "{\\fad(0,%d)}", c.FadeOutMS)
		}
		b.WriteString(sanitize(c.Text))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteFile writes the rendered document atomically: the content lands
// in a temp file in the target directory and is renamed into place, so
// a failed run never leaves a half-written subtitle file behind.
func WriteFile(path string, cues []types.Cue, style Style) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".karaoke-*.ass")
	if err != nil {
		return fmt.Errorf("subtitles: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.WriteString(tmp, Render(cues, style)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("subtitles: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("subtitles: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("subtitles: rename into place: %w", err)
	}
	return nil
}

var fadeTag = regexp.MustCompile(`^\{\\fad\(0,(\d+)\)\}`)

// Parse reads Dialogue events back out of an ASS document. Only the
// fields the cue model carries survive; style overrides other than the
// exit fade are dropped.
func Parse(r io.Reader) ([]types.Cue, error) {
	var cues []types.Cue
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Dialogue:") {
			continue
		}
		// Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
		fields := strings.SplitN(strings.TrimSpace(strings.TrimPrefix(line, "Dialogue:")), ",", 10)
		if len(fields) != 10 {
			return nil, fmt.Errorf("subtitles: malformed dialogue line %q", line)
		}
		start, err := ParseTimestamp(fields[1])
		if err != nil {
			return nil, fmt.Errorf("subtitles: dialogue start: %w", err)
		}
		end, err := ParseTimestamp(fields[2])
		if err != nil {
			return nil, fmt.Errorf("subtitles: dialogue end: %w", err)
		}
		cue := types.Cue{Start: start, End: end}
		text := fields[9]
		if m := fadeTag.FindStringSubmatch(text); m != nil {
			fade, _ := strconv.Atoi(m[1])
			cue.FadeOutMS = fade
			text = text[len(m[0]):]
		}
		cue.Text = text
		cues = append(cues, cue)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("subtitles: scan: %w", err)
	}
	if len(cues) > 0 {
		cues[len(cues)-1].Last = true
	}
	return cues, nil
}

// ParseFile is Parse over a file path.
func ParseFile(path string) ([]types.Cue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("subtitles: open: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Timestamp formats seconds as the ASS H:MM:SS.cc timestamp.
func Timestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	cs := int(seconds*100 + 0.5)
	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// ParseTimestamp reads an H:MM:SS.cc timestamp back into seconds.
func ParseTimestamp(value string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp %q", value)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad hours in %q", value)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad minutes in %q", value)
	}
	s, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("bad seconds in %q", value)
	}
	return float64(h)*3600 + float64(m)*60 + s, nil
}

func header(style Style) string {
	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("ScriptType: v4.00+\n")
	b.WriteString("Collisions: Normal\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", style.PlayResX)
	fmt.Fprintf(&b, "PlayResY: %d\n", style.PlayResY)
	b.WriteString("WrapStyle: 2\n")
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b,
		"Style: Default,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H64000000,0,0,0,0,100,100,0,0,1,3,0,%d,40,40,%d,1\n",
		style.FontName, style.FontSize, style.Alignment, style.MarginV)
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	return b.String()
}

// sanitize keeps lyric text from breaking the dialogue field layout.
// Commas become full-width commas (some players mis-split on them) and
// stray braces are flattened so they cannot open an override block.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "，")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return s
}
