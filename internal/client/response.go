package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// response carries either an HTTP response or the APIError that ended the exchange.
// Each step of the chain is a no-op once err is set.
type response struct {
	resp *http.Response
	err  error
}

// expectSuccess turns a non-2xx response into a NonSuccess error. The body is read
// only on that path; a failed read is a LocalIO error.
func (r response) expectSuccess() response {
	if r.err != nil {
		return r
	}
	if r.resp.StatusCode >= 200 && r.resp.StatusCode < 300 {
		return r
	}
	defer r.resp.Body.Close()

	text, err := io.ReadAll(r.resp.Body)
	if err != nil {
		return response{err: NewLocalIOError(fmt.Errorf("failed to read error response: %w", err))}
	}
	return response{err: NewNonSuccessError(r.resp.StatusCode, ParseErrorBody(string(text)))}
}

// decodeJSON decodes the body into v. A body that does not match v is a Transport error.
func (r response) decodeJSON(v interface{}) error {
	if r.err != nil {
		return r.err
	}
	defer r.resp.Body.Close()

	if err := json.NewDecoder(r.resp.Body).Decode(v); err != nil {
		return NewTransportError(fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// discard drops the body of a successful response.
func (r response) discard() error {
	if r.err != nil {
		return r.err
	}
	defer r.resp.Body.Close()
	_, _ = io.Copy(io.Discard, r.resp.Body)
	return nil
}
