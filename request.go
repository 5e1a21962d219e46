package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

// Content types attached to serialized request payloads.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Global validator instance for reuse
var validate = validator.New()

// requestOptions holds configurable options for a single request.
type requestOptions struct {
	ctx         context.Context
	headers     []header
	contentType string
	validate    bool
}

type header struct {
	key, value string
}

// Option customizes a single request issued by Do or one of the method
// helpers.
type Option func(*requestOptions)

// WithHeader adds a header to the outgoing request. It may be supplied
// multiple times; repeated keys accumulate.
func WithHeader(key, value string) Option {
	return func(o *requestOptions) {
		o.headers = append(o.headers, header{key: key, value: value})
	}
}

// WithContentType overrides the Content-Type attached to the request
// payload. The default for serialized payloads is application/json.
func WithContentType(contentType string) Option {
	return func(o *requestOptions) {
		o.contentType = contentType
	}
}

// WithContext attaches ctx to the outgoing request in place of
// context.Background().
func WithContext(ctx context.Context) Option {
	return func(o *requestOptions) {
		o.ctx = ctx
	}
}

// WithValidation validates a struct payload with go-playground/validator
// before it is serialized, so a broken fixture fails at the call site
// rather than as a handler rejection. Payloads that implement
// Validate() error are validated through that method. Raw payloads
// (string, []byte, io.Reader) and non-struct payloads such as maps pass
// through unvalidated.
func WithValidation() Option {
	return func(o *requestOptions) {
		o.validate = true
	}
}

// Do performs a single in-process round-trip against app: it builds a
// request with the given method and path, attaches the serialized
// payload if one is provided, dispatches it through app.ServeHTTP, and
// returns the captured status, headers, and body.
//
// The path is forwarded to the handler unmodified, query string
// included. Any failure to build the request, serialize the payload, or
// decode the response body fails the test immediately; errors produced
// by the handler itself are not interpreted — whatever status it wrote
// comes back in the capture.
func Do(t testing.TB, app http.Handler, method, path string, payload interface{}, opts ...Option) Capture {
	t.Helper()

	o := buildOptions(opts)
	body, contentType := encodePayload(t, payload, o)

	// An empty path is not representable in an HTTP request line, so it
	// cannot be forwarded; fail here rather than panicking inside httptest.
	require.NotEmpty(t, path, "Request path must not be empty")

	req := httptest.NewRequest(method, path, body)
	req = req.WithContext(o.ctx)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, h := range o.headers {
		req.Header.Add(h.key, h.value)
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	return newCapture(t, rec.Code, rec.Header(), rec.Body.Bytes())
}

// Get performs a GET round-trip against app for path and returns the
// captured response.
func Get(t testing.TB, app http.Handler, path string, opts ...Option) Capture {
	t.Helper()
	return Do(t, app, http.MethodGet, path, nil, opts...)
}

// Post performs a POST round-trip against app for path, sending payload
// as the request body. Struct payloads are serialized as JSON with a
// matching Content-Type; string, []byte, and io.Reader payloads are sent
// verbatim.
func Post(t testing.TB, app http.Handler, path string, payload interface{}, opts ...Option) Capture {
	t.Helper()
	return Do(t, app, http.MethodPost, path, payload, opts...)
}

// Put performs a PUT round-trip against app for path. The payload
// contract is identical to Post.
func Put(t testing.TB, app http.Handler, path string, payload interface{}, opts ...Option) Capture {
	t.Helper()
	return Do(t, app, http.MethodPut, path, payload, opts...)
}

// Delete performs a DELETE round-trip against app for path with no
// payload.
func Delete(t testing.TB, app http.Handler, path string, opts ...Option) Capture {
	t.Helper()
	return Do(t, app, http.MethodDelete, path, nil, opts...)
}

// buildOptions applies the supplied options over the defaults.
func buildOptions(opts []Option) requestOptions {
	o := requestOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// encodePayload turns a payload value into a request body reader and the
// Content-Type to attach. Raw payloads (io.Reader, []byte, string) pass
// through untouched; anything else is serialized with encoding/json.
// A nil payload yields no body.
func encodePayload(t testing.TB, payload interface{}, o requestOptions) (io.Reader, string) {
	t.Helper()

	if payload == nil {
		return nil, o.contentType
	}

	switch p := payload.(type) {
	case io.Reader:
		return p, o.contentType
	case []byte:
		return bytes.NewReader(p), o.contentType
	case string:
		return strings.NewReader(p), o.contentType
	}

	if o.validate {
		require.NoError(t, validatePayload(payload), "Invalid request payload")
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err, "Failed to serialize request payload")

	contentType := o.contentType
	if contentType == "" {
		contentType = ContentTypeJSON
	}
	return bytes.NewReader(data), contentType
}

// validatePayload validates the given payload using the validator
// package, preferring the payload's own Validate method when it has one.
// validator.Struct only accepts structs, so other kinds are passed
// through untouched.
func validatePayload(v interface{}) error {
	if val, ok := v.(interface{ Validate() error }); ok {
		return val.Validate()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	return validate.Struct(v)
}
