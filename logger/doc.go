// Package logger provides structured logging backed by zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers that carry structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("sse")
//	log.Info("Subscriber registered", logger.Fields("subscriber_id", 7))
package logger
