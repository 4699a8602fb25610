// Package tap implements interactive tap-to-time capture: the song
// plays, the user presses ENTER as each lyric block begins, and the
// session records one LyricEvent per press. The clock and input stream
// are injected so a pre-recorded timestamp list can drive tests.
package tap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

// Session drives one capture run.
type Session struct {
	In    io.Reader
	Out   io.Writer
	Now   func() time.Time
	Color bool
}

// NewConsole builds a session on stdin/stdout with colors enabled only
// when stdout is a terminal.
func NewConsole() *Session {
	return &Session{
		In:    os.Stdin,
		Out:   os.Stdout,
		Now:   time.Now,
		Color: isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
	}
}

const (
	ansiGreen  = "\033[92m"
	ansiYellow = "\033[93m"
	ansiBlue   = "\033[94m"
	ansiRed    = "\033[91m"
	ansiReset  = "\033[0m"
)

func (s *Session) paint(text, color string) string {
	if !s.Color {
		return text
	}
	return color + text + ansiReset
}

func (s *Session) printf(color, format string, args ...any) {
	fmt.Fprintln(s.Out, s.paint(fmt.Sprintf(format, args...), color))
}

// Run captures timestamps for the given lyric blocks. ENTER marks the
// current block, "u" undoes the last mark, "q" stops early and keeps
// what was captured. offset shifts every recorded timestamp.
func (s *Session) Run(blocks []string, offset float64) ([]types.LyricEvent, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("tap: no lyric blocks to time")
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	s.printf(ansiYellow, "Press ENTER as each block begins. u+ENTER = undo, q+ENTER = save & quit.")
	s.printf(ansiYellow, "Press ENTER to start the clock...")
	scanner := bufio.NewScanner(s.In)
	if !scanner.Scan() {
		return nil, fmt.Errorf("tap: input closed before start")
	}
	start := s.Now()

	var events []types.LyricEvent
	i := 0
	for i < len(blocks) {
		preview := strings.ReplaceAll(blocks[i], `\N`, " / ")
		s.printf(ansiBlue, "[%d/%d] %s", i+1, len(blocks), preview)

		if !scanner.Scan() {
			break
		}
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "q":
			s.printf(ansiRed, "Stopped early; keeping %d timestamps.", len(events))
			i = len(blocks)
		case "u":
			if len(events) == 0 {
				s.printf(ansiRed, "Nothing to undo.")
				continue
			}
			undone := events[len(events)-1]
			events = events[:len(events)-1]
			i--
			s.printf(ansiRed, "Undid %.2fs.", undone.Timestamp)
		default:
			ts := s.Now().Sub(start).Seconds() + offset
			if ts < 0 {
				ts = 0
			}
			events = append(events, types.LyricEvent{
				Index:     len(events),
				Text:      blocks[i],
				Timestamp: ts,
			})
			s.printf(ansiGreen, "Captured %.2fs.", ts)
			i++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("tap: read input: %w", err)
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("tap: no timestamps captured")
	}
	return events, nil
}
