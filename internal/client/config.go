package client

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Supported URL schemes.
const (
	schemeHTTP  = "http://"
	schemeHTTPS = "https://"
)

// Config holds what the client needs to reach a Code Dx server.
type Config struct {
	// BaseURL is the Code Dx root, e.g. "https://localhost/codedx". API paths are
	// appended below it.
	BaseURL string

	// APIKey selects key-based auth and takes precedence over Username/Password.
	APIKey string

	Username string
	Password string

	// Insecure disables all TLS certificate checks, chain and hostname alike.
	Insecure bool

	// Timeout is the maximum duration of a single HTTP exchange.
	Timeout time.Duration
}

// Validate validates the configuration and returns an error if any field is invalid.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("invalid configuration: base URL cannot be empty")
	}

	if !strings.HasPrefix(c.BaseURL, schemeHTTP) && !strings.HasPrefix(c.BaseURL, schemeHTTPS) {
		return fmt.Errorf("invalid configuration: base URL must have http:// or https:// scheme, got %q", c.BaseURL)
	}

	// An empty password is sent as is.
	if c.APIKey == "" && c.Username == "" {
		return errors.New("invalid configuration: an API key or a username is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid configuration: timeout must be positive, got %v", c.Timeout)
	}

	return nil
}

func (c Config) authenticator() Authenticator {
	if c.APIKey != "" {
		return APIKeyAuth{Key: c.APIKey}
	}
	return BasicAuth{Username: c.Username, Password: c.Password}
}
