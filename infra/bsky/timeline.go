package bsky

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"skyline/app"
	"skyline/domain"
)

// batchSize bounds how many author-feed requests are in flight at once.
// Batches run strictly in sequence; the AppView rate-limits aggressively
// enough that a full fan-out over the follow list would get throttled.
const batchSize = 5

// timelineService implements app.TimelineService against the AppView.
type timelineService struct {
	client    *Client
	accounts  app.AccountService
	feedLimit int
	log       *logrus.Logger
}

// NewTimelineService creates a TimelineService backed by the AppView.
// feedLimit is the number of posts requested per followed account.
func NewTimelineService(client *Client, accounts app.AccountService, feedLimit int, log *logrus.Logger) *timelineService {
	return &timelineService{
		client:    client,
		accounts:  accounts,
		feedLimit: feedLimit,
		log:       log,
	}
}

func (s *timelineService) MergedTimeline(ctx context.Context, actor string, cursors domain.CursorMap) (domain.Timeline, error) {
	did, err := s.accounts.ResolveIdentity(ctx, actor)
	if err != nil {
		return domain.Timeline{}, err
	}

	follows, err := s.follows(ctx, did)
	if err != nil {
		return domain.Timeline{}, err
	}

	entries, next := s.fetchFeeds(ctx, follows, cursors)

	posts := make([]domain.Post, 0, len(entries))
	for _, e := range entries {
		// The root's own posts don't belong in their network feed. This
		// also drops the root's reposts surfaced via followed accounts.
		if e.Post.Author.DID == did {
			continue
		}
		posts = append(posts, mapFeedEntry(e))
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].IndexedAt.After(posts[j].IndexedAt)
	})

	return domain.Timeline{Posts: posts, Cursors: next}, nil
}

// fetchFeeds fetches recent posts for every account, batchSize accounts at
// a time. Fetches within a batch run concurrently; each goroutine writes
// only its own slot. Results are concatenated in input order regardless of
// completion order. A failing account is logged and contributes an empty
// page — one unreachable follow never sinks the merge.
//
// The returned cursor map is freshly built from accounts that returned a
// continuation token; the caller's map is never mutated. Accounts are
// distinct within the follow list, so batches can't collide on a key.
func (s *timelineService) fetchFeeds(ctx context.Context, accounts []domain.Author, cursors domain.CursorMap) ([]feedEntry, domain.CursorMap) {
	var entries []feedEntry
	next := make(domain.CursorMap)

	for start := 0; start < len(accounts); start += batchSize {
		end := min(start+batchSize, len(accounts))
		batch := accounts[start:end]
		pages := make([]feedPage, len(batch))

		var wg sync.WaitGroup
		for i, acct := range batch {
			wg.Add(1)
			go func(i int, did, cursor string) {
				defer wg.Done()
				page, err := s.authorFeed(ctx, did, s.feedLimit, cursor)
				if err != nil {
					s.log.WithError(err).WithField("did", did).Warn("author feed failed; skipping account this round")
					return
				}
				pages[i] = page
			}(i, acct.DID, cursors[acct.DID])
		}
		wg.Wait()

		for i, page := range pages {
			entries = append(entries, page.entries...)
			if page.cursor != "" {
				next[batch[i].DID] = page.cursor
			}
		}
	}

	return entries, next
}

func (s *timelineService) UserTimeline(ctx context.Context, did string, limit int, cursor string) ([]domain.Post, string, error) {
	if limit <= 0 {
		limit = s.feedLimit
	}
	page, err := s.authorFeed(ctx, did, limit, cursor)
	if err != nil {
		return nil, "", fmt.Errorf("fetching user timeline: %w", err)
	}
	// Upstream already returns newest-first; keep source order.
	return mapFeedEntries(page.entries), page.cursor, nil
}
