package apitest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Server runs a handler on a live httptest.Server and exposes the same
// request helpers executed over a real client round-trip, for code paths
// that need actual network framing rather than in-process dispatch. The
// Capture contract is identical to the package-level helpers.
type Server struct {
	inner  *httptest.Server
	client *http.Client
}

// NewServer starts app on a httptest.Server and registers shutdown via
// t.Cleanup so callers don't need to manually close the server.
func NewServer(t testing.TB, app http.Handler) *Server {
	t.Helper()

	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	return &Server{
		inner:  srv,
		client: srv.Client(),
	}
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	return s.inner.URL
}

// Do performs a single round-trip over the wire: it builds a request for
// path relative to the server's base URL, submits it with the server's
// client, and returns the captured status, headers, and body. A
// transport-level failure (the server mode's analogue of the framework
// failing before producing a response) fails the test immediately.
func (s *Server) Do(t testing.TB, method, path string, payload interface{}, opts ...Option) Capture {
	t.Helper()

	o := buildOptions(opts)
	body, contentType := encodePayload(t, payload, o)

	req, err := http.NewRequestWithContext(o.ctx, method, s.inner.URL+path, body)
	require.NoError(t, err, "Failed to build %s request for %s", method, path)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, h := range o.headers {
		req.Header.Add(h.key, h.value)
	}

	resp, err := s.client.Do(req)
	require.NoError(t, err, "Request %s %s failed", method, path)
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			t.Logf("Warning: failed to close response body: %v", cerr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "Failed to read response body")

	return newCapture(t, resp.StatusCode, resp.Header, raw)
}

// Get performs a GET round-trip over the wire.
func (s *Server) Get(t testing.TB, path string, opts ...Option) Capture {
	t.Helper()
	return s.Do(t, http.MethodGet, path, nil, opts...)
}

// Post performs a POST round-trip over the wire. The payload contract is
// identical to the package-level Post.
func (s *Server) Post(t testing.TB, path string, payload interface{}, opts ...Option) Capture {
	t.Helper()
	return s.Do(t, http.MethodPost, path, payload, opts...)
}

// Put performs a PUT round-trip over the wire.
func (s *Server) Put(t testing.TB, path string, payload interface{}, opts ...Option) Capture {
	t.Helper()
	return s.Do(t, http.MethodPut, path, payload, opts...)
}

// Delete performs a DELETE round-trip over the wire with no payload.
func (s *Server) Delete(t testing.TB, path string, opts ...Option) Capture {
	t.Helper()
	return s.Do(t, http.MethodDelete, path, nil, opts...)
}
