package bsky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"skyline/domain"
)

// followsLimit caps how many followed accounts feed the merge. One page
// only; paginating the follow list itself is a deliberate non-goal.
const followsLimit = 30

// noUnauthenticatedLabel marks accounts that require a signed-in viewer.
// This client has no session, so those accounts are dropped before any
// feed fetch is attempted for them.
const noUnauthenticatedLabel = "!no-unauthenticated"

// follows returns the accounts did follows, in upstream order, minus those
// that cannot be viewed without authentication.
func (s *timelineService) follows(ctx context.Context, did string) ([]domain.Author, error) {
	params := url.Values{}
	params.Set("actor", did)
	params.Set("limit", strconv.Itoa(followsLimit))

	data, err := s.client.Get(ctx, "app.bsky.graph.getFollows", params)
	if err != nil {
		return nil, fmt.Errorf("fetching follows: %w", err)
	}

	var res followsResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("parsing follows: %w", err)
	}

	out := make([]domain.Author, 0, len(res.Follows))
	for _, f := range res.Follows {
		if requiresAuth(f.Labels) {
			s.log.WithField("did", f.DID).Debug("skipping auth-only account")
			continue
		}
		out = append(out, mapAuthor(f))
	}
	return out, nil
}

func requiresAuth(labels []label) bool {
	for _, l := range labels {
		if l.Val == noUnauthenticatedLabel {
			return true
		}
	}
	return false
}
