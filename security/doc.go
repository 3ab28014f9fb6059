// Package security builds crypto/tls configurations from file-based settings.
//
// The same TLSConfig serves both ends: the HTTP server loads its certificate
// pair and, with a CA file, verifies client certificates; the hub client
// trusts the CA file and optionally presents a certificate of its own.
//
//	cfg := security.TLSConfig{CertFile: "cert.pem", KeyFile: "key.pem"}
//	serverTLS, err := cfg.ServerConfig()
package security
