// Package component defines the lifecycle contract shared by the hub, the
// HTTP server and the telemetry providers, and a Registry that starts them
// in registration order and stops them in reverse.
//
// Components may also implement Describable to appear in the startup
// summary, and RouteProvider to list their HTTP routes there.
package component
