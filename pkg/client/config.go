package client

import (
	"errors"
	"net/http"
	"time"
)

// Base URLs of the two Wise environments.
const (
	SandboxURL    = "https://api.sandbox.transferwise.tech"
	ProductionURL = "https://api.transferwise.com"
)

// Config holds the client credentials and environment selection.
// It is treated as immutable once passed to New.
type Config struct {
	// APIKey is the personal or application token sent as a Bearer token.
	APIKey string

	// SigningKey is the PEM (PKCS#1/PKCS#8) or OpenSSH encoded RSA private
	// key whose public half is registered with Wise. Only needed when the
	// account requires Strong Customer Authentication.
	SigningKey []byte

	// Production selects ProductionURL; otherwise SandboxURL is used.
	Production bool
}

// DefaultConfig returns a production configuration.
func DefaultConfig(apiKey string, signingKey []byte) Config {
	return Config{
		APIKey:     apiKey,
		SigningKey: signingKey,
		Production: true,
	}
}

// BaseURL returns the base URL selected by Production.
func (c Config) BaseURL() string {
	if !c.Production {
		return SandboxURL
	}
	return ProductionURL
}

// Validate checks the configuration for missing values.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("api key is required")
	}
	return nil
}

// HTTPDoer sends a single HTTP request. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const defaultTimeout = 30 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}
