package timing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cazares/karaoke-time-by-miguel/internal/types"
)

// ReadEvents loads lyric events from a timing CSV. Two layouts are
// accepted: the tap-capture format (timestamp,text) and the auto-synced
// format (start,end,text) where the end column is ignored because cue
// ends are re-derived from the following event. A header row is
// optional; rows with empty text are skipped.
func ReadEvents(r io.Reader) ([]types.LyricEvent, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var events []types.LyricEvent
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("timing: read csv row %d: %w", row+1, err)
		}
		row++
		if len(record) < 2 {
			return nil, fmt.Errorf("timing: csv row %d has %d columns, want at least 2", row, len(record))
		}

		ts, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
		if err != nil {
			if row == 1 {
				// Header row.
				continue
			}
			return nil, fmt.Errorf("timing: csv row %d: bad timestamp %q", row, record[0])
		}
		if ts < 0 {
			return nil, fmt.Errorf("timing: csv row %d: negative timestamp %g", row, ts)
		}

		text := strings.TrimSpace(record[len(record)-1])
		if text == "" {
			continue
		}
		events = append(events, types.LyricEvent{
			Index:     len(events),
			Text:      text,
			Timestamp: ts,
		})
	}
	return events, nil
}

// ReadEventsFile is ReadEvents over a file path.
func ReadEventsFile(path string) ([]types.LyricEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("timing: open csv: %w", err)
	}
	defer f.Close()
	return ReadEvents(f)
}

// WriteEvents persists tap captures in the two-column timestamp,text
// layout with a header, timestamps at millisecond precision.
func WriteEvents(w io.Writer, events []types.LyricEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "text"}); err != nil {
		return fmt.Errorf("timing: write csv header: %w", err)
	}
	for _, ev := range events {
		record := []string{strconv.FormatFloat(ev.Timestamp, 'f', 3, 64), ev.Text}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("timing: write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEventsFile writes the capture CSV to path, creating or truncating it.
func WriteEventsFile(path string, events []types.LyricEvent) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("timing: create csv: %w", err)
	}
	if err := WriteEvents(f, events); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
