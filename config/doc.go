// Package config loads service configuration with Viper.
//
// Values come from a YAML file found in standard locations (or given
// explicitly), an optional .env file, and environment variables, in that
// order of increasing precedence. Nested keys are addressed from the
// environment with underscores, e.g. SSEHUB_SSE_QUEUE_CAPACITY=50 sets
// sse.queue_capacity when the loader uses the SSEHUB prefix.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("ssehub", &cfg, config.WithEnvPrefix("SSEHUB"))
package config
