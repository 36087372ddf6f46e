package bsky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"skyline/app"
	"skyline/domain"
)

const didPrefix = "did:"

// accountService implements app.AccountService against the AppView.
type accountService struct {
	client *Client
	log    *logrus.Logger

	// DIDs are immutable, so resolved handles can be cached aggressively.
	// The TTL only bounds memory on long sessions.
	resolved *cache.Cache
}

// NewAccountService creates an AccountService backed by the AppView.
func NewAccountService(client *Client, log *logrus.Logger) *accountService {
	return &accountService{
		client:   client,
		log:      log,
		resolved: cache.New(time.Hour, 10*time.Minute),
	}
}

func (s *accountService) ResolveIdentity(ctx context.Context, actor string) (string, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return "", domain.ErrEmptyActor
	}

	// Already fully qualified: no network call.
	if strings.HasPrefix(actor, didPrefix) {
		return actor, nil
	}

	if did, ok := s.resolved.Get(actor); ok {
		return did.(string), nil
	}

	params := url.Values{}
	params.Set("handle", actor)
	data, err := s.client.Get(ctx, "com.atproto.identity.resolveHandle", params)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", actor, err)
	}

	var res struct {
		DID string `json:"did"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return "", fmt.Errorf("parsing resolved identity: %w", err)
	}
	if res.DID == "" {
		return "", fmt.Errorf("resolving %q: %w", actor, domain.ErrAccountNotFound)
	}

	s.resolved.Set(actor, res.DID, cache.DefaultExpiration)
	s.log.WithFields(logrus.Fields{"handle": actor, "did": res.DID}).Debug("resolved handle")
	return res.DID, nil
}

func (s *accountService) Profile(ctx context.Context, actor string) (app.Profile, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return app.Profile{}, domain.ErrEmptyActor
	}

	params := url.Values{}
	params.Set("actor", actor)
	data, err := s.client.Get(ctx, "app.bsky.actor.getProfile", params)
	if err != nil {
		return app.Profile{}, fmt.Errorf("fetching profile: %w", err)
	}

	var res struct {
		DID            string `json:"did"`
		Handle         string `json:"handle"`
		DisplayName    string `json:"displayName"`
		Description    string `json:"description"`
		PostsCount     int    `json:"postsCount"`
		FollowersCount int    `json:"followersCount"`
		FollowsCount   int    `json:"followsCount"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return app.Profile{}, fmt.Errorf("parsing profile: %w", err)
	}

	return app.Profile{
		DID:         res.DID,
		Handle:      sanitizeForTerminal(res.Handle),
		DisplayName: sanitizeForTerminal(res.DisplayName),
		Bio:         sanitizeForTerminal(res.Description),
		Posts:       res.PostsCount,
		Followers:   res.FollowersCount,
		Follows:     res.FollowsCount,
	}, nil
}
