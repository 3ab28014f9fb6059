package sse

import "strings"

const (
	framePrefix = "data: "
	frameSuffix = "\n\n"
)

// Message is a framed event ready to be written to the wire. It is immutable.
type Message string

// Standard messages emitted by the hub itself.
const (
	// Connected is enqueued for every new subscriber.
	Connected Message = "data: connected\n\n"
	// Ping is enqueued for every subscriber on each sweep.
	Ping Message = "data: ping\n\n"
)

// Frame wraps a raw payload into the event-stream wire format.
func Frame(payload string) Message {
	return Message(framePrefix + payload + frameSuffix)
}

// Bytes returns the wire representation.
func (m Message) Bytes() []byte {
	return []byte(m)
}

// Payload returns the message without its framing.
func (m Message) Payload() string {
	s := strings.TrimPrefix(string(m), framePrefix)
	return strings.TrimSuffix(s, frameSuffix)
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return string(m)
}
