package apitest

import (
	"encoding/json"
	"net/http"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

// Capture is the observable result of a single request round-trip: the
// numeric status code, the response headers, and the body decoded as
// UTF-8 text. It is created once per helper call and never mutated
// afterwards. A non-2xx status is ordinary data for the caller's own
// assertions to judge, not an error.
type Capture struct {
	Status int
	Header http.Header
	Body   string
}

// newCapture builds a Capture from raw response data. A body that is not
// valid UTF-8 fails the test immediately; it is never decoded lossily.
func newCapture(t testing.TB, status int, header http.Header, raw []byte) Capture {
	t.Helper()

	require.True(t, utf8.Valid(raw), "Response body is not valid UTF-8: %q", raw)

	return Capture{
		Status: status,
		Header: header,
		Body:   string(raw),
	}
}

// RequireStatus fails the test immediately unless the captured status
// code equals want. It returns the capture so assertions can be chained.
func (c Capture) RequireStatus(t testing.TB, want int) Capture {
	t.Helper()
	require.Equal(t, want, c.Status,
		"Expected status code %d but got %d (body: %q)", want, c.Status, c.Body)
	return c
}

// RequireBody fails the test immediately unless the captured body equals
// want exactly, with no trimming or normalization.
func (c Capture) RequireBody(t testing.TB, want string) Capture {
	t.Helper()
	require.Equal(t, want, c.Body, "Response body mismatch")
	return c
}

// DecodeJSON unmarshals the captured body into target, failing the test
// if the body is not valid JSON for that type.
func (c Capture) DecodeJSON(t testing.TB, target interface{}) {
	t.Helper()
	err := json.Unmarshal([]byte(c.Body), target)
	require.NoError(t, err, "Failed to unmarshal response body: %s", c.Body)
}
