package apitest_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/apitest"
)

func TestServerGet(t *testing.T) {
	s := apitest.NewServer(t, helloApp())

	s.Get(t, "/32/Filip").
		RequireStatus(t, http.StatusOK).
		RequireBody(t, "Hello Filip! id:32")
}

func TestServerURL(t *testing.T) {
	s := apitest.NewServer(t, helloApp())

	assert.True(t, strings.HasPrefix(s.URL(), "http://"), "Expected a live base URL, got %q", s.URL())
}

func TestServerUnregisteredPath(t *testing.T) {
	s := apitest.NewServer(t, helloApp())

	resp := s.Get(t, "/nope")

	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestServerPostEcho(t *testing.T) {
	s := apitest.NewServer(t, echoApp())

	resp := s.Post(t, "/echo", map[string]string{"text": "over the wire"})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"text": "over the wire"}`, resp.Body)
	assert.Equal(t, apitest.ContentTypeJSON, resp.Header.Get("Content-Type"))
}

func TestServerPut(t *testing.T) {
	s := apitest.NewServer(t, echoApp())

	resp := s.Put(t, "/echo", map[string]int{"count": 3})

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"count": 3}`, resp.Body)
}

func TestServerDelete(t *testing.T) {
	r := chi.NewRouter()
	r.Delete("/items/{id}", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s := apitest.NewServer(t, r)

	resp := s.Delete(t, "/items/42")

	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Empty(t, resp.Body)
}

func TestServerWithHeader(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithStatus(http.StatusOK),
	)
	s := apitest.NewServer(t, handler)

	s.Get(t, "/private", apitest.WithHeader("Authorization", "Bearer test-token"))

	require.Len(t, requestsCh, 1)
	info := <-requestsCh
	assert.Equal(t, "Bearer test-token", info.Request.Header.Get("Authorization"))
}
