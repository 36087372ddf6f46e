package bsky

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// Test harness: services talk to an in-process http.Handler through a
// custom RoundTripper, so request shape and response mapping are tested
// at the HTTP level without sockets.

type handlerRoundTripper struct {
	h http.Handler
}

func (rt handlerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := newResponseRecorder()
	rt.h.ServeHTTP(rec, req)
	return rec.response(req), nil
}

type responseRecorder struct {
	header http.Header
	body   strings.Builder
	code   int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), code: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header         { return r.header }
func (r *responseRecorder) Write(p []byte) (int, error) { return r.body.Write(p) }
func (r *responseRecorder) WriteHeader(statusCode int)  { r.code = statusCode }

func (r *responseRecorder) response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode: r.code,
		Header:     r.header.Clone(),
		Body:       io.NopCloser(strings.NewReader(r.body.String())),
		Request:    req,
	}
}

func newTestClient(h http.Handler) *Client {
	return &Client{
		baseURL: "http://appview.test",
		http:    &http.Client{Transport: handlerRoundTripper{h: h}},
	}
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestTimeline(h http.Handler, feedLimit int) *timelineService {
	client := newTestClient(h)
	return NewTimelineService(client, NewAccountService(client, discardLogger()), feedLimit, discardLogger())
}

// writeJSON encodes v into the response, failing the test on error. Uses
// Errorf because fake handlers may run on fetch goroutines.
func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encoding response: %v", err)
	}
}

func TestClient_Get_RequestShape(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	var gotMethod string

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotMethod = r.Method
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Fatalf("client must not send credentials, got %q", auth)
		}
		writeJSON(t, w, map[string]any{"ok": true})
	})

	client := newTestClient(h)
	params := url.Values{}
	params.Set("actor", "did:plc:abc")
	params.Set("limit", "10")
	if _, err := client.Get(context.Background(), "app.bsky.feed.getAuthorFeed", params); err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if gotMethod != http.MethodGet {
		t.Fatalf("expected GET, got %s", gotMethod)
	}
	if gotPath != "/xrpc/app.bsky.feed.getAuthorFeed" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotQuery.Get("actor") != "did:plc:abc" || gotQuery.Get("limit") != "10" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
}

func TestClient_Get_Non2xxIsError(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"UpstreamFailure"}`))
	})

	client := newTestClient(h)
	_, err := client.Get(context.Background(), "app.bsky.graph.getFollows", nil)
	if err == nil {
		t.Fatalf("expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("error should carry status code: %v", err)
	}
}
