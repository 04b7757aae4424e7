package client

import "net/http"

// apiKeyHeader carries the key for key-based authentication.
const apiKeyHeader = "API-Key"

// Authenticator adds credentials to an outgoing request.
type Authenticator interface {
	Apply(req *http.Request)
}

// BasicAuth authenticates with a username and password.
type BasicAuth struct {
	Username string
	Password string
}

// Apply sets the Authorization header.
func (a BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// APIKeyAuth authenticates with a Code Dx API key.
type APIKeyAuth struct {
	Key string
}

// Apply sets the API-Key header.
func (a APIKeyAuth) Apply(req *http.Request) {
	req.Header.Set(apiKeyHeader, a.Key)
}
