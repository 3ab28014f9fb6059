// Package sse provides a process-local Server-Sent Events broadcast hub.
//
// A Hub keeps the set of live subscribers and fans published messages out to
// all of them without ever blocking the publisher. Each Subscriber owns a
// bounded FIFO queue drained by exactly one consumer. A Sweeper periodically
// pings every subscriber and evicts those that cannot accept the ping.
//
// # Architecture
//
//   - Hub: owns the subscriber registry; Subscribe, Publish and Sweep
//   - Subscriber: bounded queue exposed as a pull-based message stream
//   - Sweeper: drives Hub.Sweep on a fixed interval
//   - ServeSSE / RegisterRoutes: HTTP adapters for the event stream and publishing
//
// # Usage
//
//	hub := sse.NewHub()
//	sweeper := sse.NewSweeper(hub, 10*time.Second)
//	_ = sweeper.Start(ctx)
//	sse.RegisterRoutes(engine, hub, "/events", srv.RateLimiter())
package sse
