package bsky

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"skyline/domain"
)

func makeAuthors(n int) []domain.Author {
	out := make([]domain.Author, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Author{
			DID:    fmt.Sprintf("did:plc:follow%03d", i),
			Handle: fmt.Sprintf("follow%03d.test", i),
		})
	}
	return out
}

const (
	rootDID = "did:plc:root"
	didA    = "did:plc:aaa"
	didB    = "did:plc:bbb"
)

func profileJSON(did, handle string, labels ...string) map[string]any {
	ls := make([]map[string]any, 0, len(labels))
	for _, v := range labels {
		ls = append(ls, map[string]any{"val": v})
	}
	return map[string]any{"did": did, "handle": handle, "labels": ls}
}

func postJSON(uri, authorDID, indexedAt string) map[string]any {
	return map[string]any{
		"post": map[string]any{
			"uri":       uri,
			"cid":       "cid-" + uri,
			"author":    profileJSON(authorDID, authorDID+".test"),
			"record":    map[string]any{"text": "post " + uri, "createdAt": indexedAt},
			"indexedAt": indexedAt,
		},
	}
}

func feedJSON(cursor string, entries ...map[string]any) map[string]any {
	if entries == nil {
		entries = []map[string]any{}
	}
	res := map[string]any{"feed": entries}
	if cursor != "" {
		res["cursor"] = cursor
	}
	return res
}

// appViewHandler fakes the three AppView endpoints the merge touches.
// feeds decides each getAuthorFeed response; returning a non-zero status
// fails that account's fetch. Feed handlers run on fetch goroutines, so
// they must report failures with t.Errorf, never t.Fatalf.
func appViewHandler(t *testing.T, follows []map[string]any, feeds func(actor, cursor string) (map[string]any, int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/xrpc/com.atproto.identity.resolveHandle":
			writeJSON(t, w, map[string]any{"did": rootDID})
		case "/xrpc/app.bsky.graph.getFollows":
			writeJSON(t, w, map[string]any{"follows": follows})
		case "/xrpc/app.bsky.feed.getAuthorFeed":
			q := r.URL.Query()
			body, code := feeds(q.Get("actor"), q.Get("cursor"))
			if code != 0 {
				w.WriteHeader(code)
				return
			}
			writeJSON(t, w, body)
		default:
			t.Errorf("unexpected request path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestMergedTimeline_MergesAndSortsNewestFirst(t *testing.T) {
	t1 := "2026-08-26T12:04:00Z"
	t2 := "2026-08-26T12:03:00Z"
	t3 := "2026-08-26T12:02:00Z"
	t4 := "2026-08-26T12:01:00Z"

	follows := []map[string]any{
		profileJSON(didA, "a.test"),
		profileJSON(didB, "b.test"),
	}
	h := appViewHandler(t, follows, func(actor, cursor string) (map[string]any, int) {
		switch actor {
		case didA:
			return feedJSON("cur-a", postJSON("at://"+didA+"/app.bsky.feed.post/1", didA, t1), postJSON("at://"+didA+"/app.bsky.feed.post/3", didA, t3)), 0
		case didB:
			return feedJSON("cur-b", postJSON("at://"+didB+"/app.bsky.feed.post/2", didB, t2), postJSON("at://"+didB+"/app.bsky.feed.post/4", didB, t4)), 0
		}
		return feedJSON(""), 0
	})

	tl, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "root.test", nil)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(tl.Posts) != 4 {
		t.Fatalf("expected 4 posts, got %d", len(tl.Posts))
	}
	for i, want := range []string{t1, t2, t3, t4} {
		ts, _ := time.Parse(time.RFC3339, want)
		if !tl.Posts[i].IndexedAt.Equal(ts) {
			t.Fatalf("post %d out of order: got %v want %v", i, tl.Posts[i].IndexedAt, ts)
		}
	}
	if tl.Cursors[didA] != "cur-a" || tl.Cursors[didB] != "cur-b" {
		t.Fatalf("unexpected cursor map: %v", tl.Cursors)
	}
}

func TestMergedTimeline_SortedNonIncreasing(t *testing.T) {
	// Deliberately shuffled timestamps across three accounts.
	didC := "did:plc:ccc"
	follows := []map[string]any{
		profileJSON(didA, "a.test"),
		profileJSON(didB, "b.test"),
		profileJSON(didC, "c.test"),
	}
	stamps := map[string][]string{
		didA: {"2026-08-26T09:00:00Z", "2026-08-26T11:30:00Z"},
		didB: {"2026-08-26T10:15:00Z"},
		didC: {"2026-08-26T11:45:00Z", "2026-08-26T08:05:00Z", "2026-08-26T10:15:00Z"},
	}
	h := appViewHandler(t, follows, func(actor, cursor string) (map[string]any, int) {
		entries := make([]map[string]any, 0, len(stamps[actor]))
		for i, ts := range stamps[actor] {
			entries = append(entries, postJSON("at://"+actor+"/app.bsky.feed.post/"+string(rune('a'+i)), actor, ts))
		}
		return feedJSON("", entries...), 0
	})

	tl, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "root.test", nil)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(tl.Posts) != 6 {
		t.Fatalf("expected 6 posts, got %d", len(tl.Posts))
	}
	for i := 1; i < len(tl.Posts); i++ {
		if tl.Posts[i].IndexedAt.After(tl.Posts[i-1].IndexedAt) {
			t.Fatalf("posts not sorted non-increasing at %d", i)
		}
	}
	if len(tl.Cursors) != 0 {
		t.Fatalf("no account returned a cursor, map must be empty: %v", tl.Cursors)
	}
}

func TestMergedTimeline_ExcludesRootPosts(t *testing.T) {
	follows := []map[string]any{profileJSON(didA, "a.test")}
	h := appViewHandler(t, follows, func(actor, cursor string) (map[string]any, int) {
		// A's feed carries one of A's posts and a repost of the root.
		return feedJSON("",
			postJSON("at://"+didA+"/app.bsky.feed.post/1", didA, "2026-08-26T12:00:00Z"),
			postJSON("at://"+rootDID+"/app.bsky.feed.post/9", rootDID, "2026-08-26T12:05:00Z"),
		), 0
	})

	tl, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "root.test", nil)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(tl.Posts) != 1 {
		t.Fatalf("expected root's post excluded, got %d posts", len(tl.Posts))
	}
	if tl.Posts[0].Author.DID != didA {
		t.Fatalf("surviving post must be A's: %+v", tl.Posts[0].Author)
	}
}

func TestMergedTimeline_PartialFailureKeepsGoing(t *testing.T) {
	follows := []map[string]any{
		profileJSON(didA, "a.test"),
		profileJSON(didB, "b.test"),
	}
	h := appViewHandler(t, follows, func(actor, cursor string) (map[string]any, int) {
		if actor == didB {
			return nil, http.StatusInternalServerError
		}
		return feedJSON("cur-a", postJSON("at://"+didA+"/app.bsky.feed.post/1", didA, "2026-08-26T12:00:00Z")), 0
	})

	tl, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "root.test", nil)
	if err != nil {
		t.Fatalf("one failing account must not fail the merge: %v", err)
	}
	if len(tl.Posts) != 1 || tl.Posts[0].Author.DID != didA {
		t.Fatalf("expected only A's posts, got %+v", tl.Posts)
	}
	if _, ok := tl.Cursors[didB]; ok {
		t.Fatalf("failed account must not appear in cursor map")
	}
	if tl.Cursors[didA] != "cur-a" {
		t.Fatalf("healthy account cursor missing: %v", tl.Cursors)
	}
}

func TestMergedTimeline_AllFeedsFailingStillResolves(t *testing.T) {
	follows := []map[string]any{
		profileJSON(didA, "a.test"),
		profileJSON(didB, "b.test"),
	}
	h := appViewHandler(t, follows, func(actor, cursor string) (map[string]any, int) {
		return nil, http.StatusServiceUnavailable
	})

	tl, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "root.test", nil)
	if err != nil {
		t.Fatalf("merge must resolve even when every feed fails: %v", err)
	}
	if len(tl.Posts) != 0 || len(tl.Cursors) != 0 {
		t.Fatalf("expected empty result, got %d posts, cursors %v", len(tl.Posts), tl.Cursors)
	}
}

func TestMergedTimeline_CursorPassthroughPerAccount(t *testing.T) {
	follows := []map[string]any{
		profileJSON(didA, "a.test"),
		profileJSON(didB, "b.test"),
	}

	var mu sync.Mutex
	sent := make(map[string]string)
	h := appViewHandler(t, follows, func(actor, cursor string) (map[string]any, int) {
		mu.Lock()
		sent[actor] = cursor
		mu.Unlock()
		return feedJSON("next-" + actor), 0
	})

	svc := newTestTimeline(h, 10)
	first, err := svc.MergedTimeline(context.Background(), "root.test", nil)
	if err != nil {
		t.Fatalf("first merge failed: %v", err)
	}
	if first.Cursors[didA] != "next-"+didA || first.Cursors[didB] != "next-"+didB {
		t.Fatalf("unexpected first cursors: %v", first.Cursors)
	}

	mu.Lock()
	sent = make(map[string]string)
	mu.Unlock()

	if _, err := svc.MergedTimeline(context.Background(), "root.test", first.Cursors); err != nil {
		t.Fatalf("second merge failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if sent[didA] != "next-"+didA || sent[didB] != "next-"+didB {
		t.Fatalf("each account must get back its own cursor, got %v", sent)
	}
}

func TestMergedTimeline_FiltersAuthOnlyFollowEntirely(t *testing.T) {
	didC := "did:plc:ccc"
	follows := []map[string]any{
		profileJSON(didA, "a.test"),
		profileJSON(didC, "c.test", noUnauthenticatedLabel),
	}

	var mu sync.Mutex
	queried := make(map[string]bool)
	h := appViewHandler(t, follows, func(actor, cursor string) (map[string]any, int) {
		mu.Lock()
		queried[actor] = true
		mu.Unlock()
		return feedJSON("cur-" + actor), 0
	})

	tl, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "root.test", nil)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if queried[didC] {
		t.Fatalf("auth-only account must never be queried")
	}
	if _, ok := tl.Cursors[didC]; ok {
		t.Fatalf("auth-only account must not appear in cursor map")
	}
	if tl.Cursors[didA] == "" {
		t.Fatalf("remaining follow must still be fetched: %v", tl.Cursors)
	}
}

func TestMergedTimeline_FollowGraphFailurePropagates(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/xrpc/com.atproto.identity.resolveHandle" {
			writeJSON(t, w, map[string]any{"did": rootDID})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "root.test", nil); err == nil {
		t.Fatalf("follow graph failure must surface to the caller")
	}
}

func TestMergedTimeline_ResolutionFailurePropagates(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"InvalidRequest","message":"Unable to resolve handle"}`))
	})

	if _, err := newTestTimeline(h, 10).MergedTimeline(context.Background(), "nosuch.test", nil); err == nil {
		t.Fatalf("resolution failure must surface to the caller")
	}
}

func TestFetchFeeds_BoundsConcurrencyToBatchSize(t *testing.T) {
	const followCount = 23

	var mu sync.Mutex
	inflight, maxInflight, total := 0, 0, 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		inflight++
		total++
		if inflight > maxInflight {
			maxInflight = inflight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
		writeJSON(t, w, feedJSON(""))
	})

	svc := newTestTimeline(h, 10)
	entries, cursors := svc.fetchFeeds(context.Background(), makeAuthors(followCount), nil)
	if len(entries) != 0 {
		t.Fatalf("expected no entries from empty feeds")
	}
	if len(cursors) != 0 {
		t.Fatalf("expected empty cursor map")
	}

	mu.Lock()
	defer mu.Unlock()
	if total != followCount {
		t.Fatalf("every account must be queried once, got %d", total)
	}
	if maxInflight > batchSize {
		t.Fatalf("in-flight requests exceeded batch size: %d", maxInflight)
	}
}

func TestFetchFeeds_DoesNotMutateInputCursors(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, feedJSON("fresh-cursor", postJSON("at://"+didA+"/app.bsky.feed.post/1", didA, "2026-08-26T12:00:00Z")))
	})

	svc := newTestTimeline(h, 10)
	in := domain.CursorMap{didA: "old-cursor"}
	snapshot := in.Clone()

	_, out := svc.fetchFeeds(context.Background(), []domain.Author{{DID: didA, Handle: "a.test"}}, in)

	if len(in) != len(snapshot) || in[didA] != snapshot[didA] {
		t.Fatalf("input cursor map was mutated: %v", in)
	}
	if out[didA] != "fresh-cursor" {
		t.Fatalf("output map must carry the fresh cursor: %v", out)
	}
}
