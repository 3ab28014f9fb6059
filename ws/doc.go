// Package ws streams a hub subscription over a WebSocket connection.
//
// Each connection becomes one sse.Subscriber. Messages are written as text
// frames carrying the unframed payload, so a client sees "connected", the
// published payloads and the periodic "ping" exactly as an event-stream
// client would. Incoming messages are read and discarded; the read side only
// exists to answer control frames and detect disconnects.
//
//	ws.RegisterRoutes(engine, hub, cfg)
package ws
