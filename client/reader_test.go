package client

import (
	"io"
	"strings"
	"testing"
)

func newBody(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func TestReader_Events(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Event
	}{
		{"single", "data: hello world\n\n", []Event{{Data: "hello world"}}},
		{"multiple", "data: first\n\ndata: second\n\n", []Event{{Data: "first"}, {Data: "second"}}},
		{"typed", "event: message\ndata: hello\n\n", []Event{{Event: "message", Data: "hello"}}},
		{"with id", "id: 42\ndata: hello\n\n", []Event{{ID: "42", Data: "hello"}}},
		{"multi-line data", "data: line1\ndata: line2\ndata: line3\n\n", []Event{{Data: "line1\nline2\nline3"}}},
		{"comments skipped", ": keepalive\ndata: hello\n\n", []Event{{Data: "hello"}}},
		{"no space after colon", "data:no-space\n\n", []Event{{Data: "no-space"}}},
		{"trailing event without blank line", "data: trailing", []Event{{Data: "trailing"}}},
		{"empty stream", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(newBody(tt.input))
			defer r.Close()

			for i, want := range tt.want {
				got, err := r.Next()
				if err != nil {
					t.Fatalf("event %d: unexpected error: %v", i, err)
				}
				if got != want {
					t.Errorf("event %d = %+v, want %+v", i, got, want)
				}
			}
			if _, err := r.Next(); err != io.EOF {
				t.Errorf("expected io.EOF after last event, got %v", err)
			}
		})
	}
}

func TestReader_LargePayload(t *testing.T) {
	payload := strings.Repeat("x", 65536)
	r := NewReader(newBody("data: " + payload + "\n\n"))
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev.Data) != len(payload) {
		t.Errorf("expected %d bytes, got %d", len(payload), len(ev.Data))
	}
}

func TestEvent_IsControl(t *testing.T) {
	tests := []struct {
		ev   Event
		want bool
	}{
		{Event{Data: "connected"}, true},
		{Event{Data: "ping"}, true},
		{Event{Data: "hello"}, false},
		{Event{Event: "custom", Data: "ping"}, false},
	}
	for _, tt := range tests {
		if got := tt.ev.IsControl(); got != tt.want {
			t.Errorf("IsControl(%+v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line  string
		field string
		value string
	}{
		{"data: hello", "data", "hello"},
		{"data:hello", "data", "hello"},
		{"data:  two spaces", "data", " two spaces"},
		{"event: msg", "event", "msg"},
		{"id: 1", "id", "1"},
		{"retry: 3000", "retry", "3000"},
		{"fieldonly", "fieldonly", ""},
	}
	for _, tt := range tests {
		f, v := parseLine(tt.line)
		if f != tt.field || v != tt.value {
			t.Errorf("parseLine(%q) = (%q, %q), want (%q, %q)", tt.line, f, v, tt.field, tt.value)
		}
	}
}
