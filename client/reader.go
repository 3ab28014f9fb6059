package client

import (
	"bufio"
	"io"
	"strings"
)

// maxLineSize fits the largest publishable payload plus its field name.
const maxLineSize = 1 << 20

// Payloads the hub emits on its own.
const (
	ControlConnected = "connected"
	ControlPing      = "ping"
)

// Event is a single server-sent event.
type Event struct {
	// Event is the type from an "event:" line. Empty for data-only events.
	Event string
	// Data is the payload. Multiple data lines are joined with newlines.
	Data string
	// ID is the value of the last "id:" line.
	ID string
}

// IsControl reports whether the event is a hub-generated connected or ping
// message rather than a published payload.
func (e Event) IsControl() bool {
	return e.Event == "" && (e.Data == ControlConnected || e.Data == ControlPing)
}

// Reader parses server-sent events from a stream.
type Reader struct {
	scanner *bufio.Scanner
	body    io.ReadCloser
}

// NewReader creates a Reader over body. Close closes body.
func NewReader(body io.ReadCloser) *Reader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &Reader{scanner: scanner, body: body}
}

// Next returns the next event, or io.EOF when the stream has ended.
func (r *Reader) Next() (Event, error) {
	var event Event
	var hasData bool

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			if hasData {
				return event, nil
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value := parseLine(line)
		switch field {
		case "data":
			if hasData {
				event.Data += "\n" + value
			} else {
				event.Data = value
				hasData = true
			}
		case "event":
			event.Event = value
		case "id":
			event.ID = value
		}
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	// A final event without its blank line still counts.
	if hasData {
		return event, nil
	}
	return Event{}, io.EOF
}

// Close releases the underlying stream.
func (r *Reader) Close() error {
	return r.body.Close()
}

// parseLine splits "field: value", dropping one space after the colon.
func parseLine(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
