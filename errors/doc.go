// Package errors provides the structured error type returned at the HTTP
// boundary: a machine-readable code, a client-safe message, the HTTP status
// to use, and whether retrying can help.
//
// The broadcast core never produces errors; these are raised by request
// handling and lifecycle code only.
package errors
