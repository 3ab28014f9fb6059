package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/kbukum/ssehub/validation"
)

// Supported MinVersion values.
var tlsVersions = map[string]uint16{
	"1.2": tls.VersionTLS12,
	"1.3": tls.VersionTLS13,
}

// TLSConfig holds TLS settings for the server and the client.
type TLSConfig struct {
	// CertFile and KeyFile are the certificate pair presented to the peer.
	// The server needs both; for the client they enable mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file"`

	// CAFile verifies the peer: server certificates on the client side,
	// client certificates on the server side.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`

	// ServerName overrides the name checked against the server certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`

	// SkipVerify disables server certificate verification on the client.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify"`

	// MinVersion is "1.2" (default) or "1.3".
	MinVersion string `yaml:"min_version" mapstructure:"min_version"`
}

// Validate checks that the configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	v := validation.New().
		Custom((c.CertFile != "") == (c.KeyFile != ""), "tls.cert_file", "cert_file and key_file must be provided together")
	if c.MinVersion != "" {
		v.OneOf("tls.min_version", c.MinVersion, []string{"1.2", "1.3"})
	}
	return v.Err()
}

// IsEnabled reports whether any client-side TLS setting is configured.
func (c *TLSConfig) IsEnabled() bool {
	if c == nil {
		return false
	}
	return c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != ""
}

// ServerEnabled reports whether the server should terminate TLS.
func (c *TLSConfig) ServerEnabled() bool {
	return c != nil && c.CertFile != "" && c.KeyFile != ""
}

// ClientConfig builds a client-side *tls.Config. It returns nil when no TLS
// setting is configured.
func (c *TLSConfig) ClientConfig() (*tls.Config, error) {
	if !c.IsEnabled() {
		return nil, nil
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify,
		ServerName:         c.ServerName,
		MinVersion:         c.minVersion(),
	}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := c.loadKeyPair()
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// ServerConfig builds a server-side *tls.Config from the certificate pair.
// A CA file turns on mandatory client certificate verification. It returns
// nil when the certificate pair is not configured.
func (c *TLSConfig) ServerConfig() (*tls.Config, error) {
	if !c.ServerEnabled() {
		return nil, nil
	}

	cert, err := c.loadKeyPair()
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   c.minVersion(),
	}
	if c.CAFile != "" {
		pool, err := loadPool(c.CAFile)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return cfg, nil
}

func (c *TLSConfig) minVersion() uint16 {
	if v, ok := tlsVersions[c.MinVersion]; ok {
		return v
	}
	return tls.VersionTLS12
}

func (c *TLSConfig) loadKeyPair() (tls.Certificate, error) {
	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("security/tls: failed to load certificate: %w", err)
	}
	return cert, nil
}

func loadPool(path string) (*x509.CertPool, error) {
	ca, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("security/tls: failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("security/tls: failed to parse CA certificate")
	}
	return pool, nil
}
