// Package apitest issues single-shot HTTP requests against an in-process
// handler and captures the status code and decoded body text for
// assertions. It is a thin convenience layer over net/http/httptest:
// each call is one stateless round-trip, and the capture holds exactly
// what the handler produced, with no retries, caching, or rewriting.
package apitest
