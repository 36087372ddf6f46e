package app

import (
	"context"

	"skyline/domain"
)

// TimelineService aggregates posts from a social backend.
type TimelineService interface {
	// MergedTimeline returns recent posts from the accounts the actor
	// follows, newest first, excluding the actor's own posts. Passing the
	// cursor map from a previous call resumes each followed account's feed
	// where it left off; passing nil starts every feed from the top.
	MergedTimeline(ctx context.Context, actor string, cursors domain.CursorMap) (domain.Timeline, error)

	// UserTimeline returns a single account's own feed, newest first, plus
	// a continuation cursor for the next page ("" when exhausted).
	UserTimeline(ctx context.Context, did string, limit int, cursor string) ([]domain.Post, string, error)
}
