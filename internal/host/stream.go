package host

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/j-veylop/codetime-dashboard-tui/internal/driver"
	"github.com/j-veylop/codetime-dashboard-tui/internal/logger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/models"
)

const maxLineSize = 64 * 1024

// streamLine is one newline-delimited event from an editor plugin. Time is
// optional RFC3339; the driver clock is used when it is absent.
type streamLine struct {
	Type     string    `json:"type"`
	Category string    `json:"category"`
	Path     string    `json:"path"`
	Time     time.Time `json:"time"`
}

// Stream reads editor events as JSON lines.
type Stream struct {
	r    io.Reader
	sink Sink
}

// NewStream creates a stream that posts events read from r to sink.
func NewStream(r io.Reader, sink Sink) *Stream {
	return &Stream{r: r, sink: sink}
}

// Run reads until EOF or until ctx is cancelled between lines. Malformed
// lines are logged and skipped. When the input ends the host is gone, so an
// untrackable focus is posted to stop the live session.
func (s *Stream) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		lineNo++

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		ev, err := ParseLine(line)
		if err != nil {
			logger.Warn("skipping event line", "line", lineNo, "error", err)
			continue
		}
		s.sink.Post(ev)
	}
	if ctx.Err() != nil {
		return nil
	}
	s.sink.Post(driver.FocusEvent{})
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	return nil
}

// ParseLine decodes one event line. A focus line without a category or
// path is an untrackable focus. A path is mapped to its language when no
// category is given. A time that is not RFC3339 rejects the line.
func ParseLine(line []byte) (driver.Event, error) {
	var msg streamLine
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("invalid event: %w", err)
	}

	category := msg.Category
	if category == "" && msg.Path != "" {
		if id, ok := models.FromPath(msg.Path); ok {
			category = id
		}
	}

	switch msg.Type {
	case "focus":
		return driver.FocusEvent{Time: msg.Time, Category: category, Trackable: category != ""}, nil
	case "open":
		if category == "" {
			return nil, fmt.Errorf("open event without category")
		}
		return driver.DocumentEvent{Time: msg.Time, Category: category}, nil
	case "":
		return nil, fmt.Errorf("event type is required")
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
}
