package bsky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"skyline/domain"
)

// feedPage is one page of a single account's feed.
type feedPage struct {
	entries []feedEntry
	cursor  string
}

// authorFeed fetches one page of an account's recent feed entries,
// resuming after cursor when non-empty.
func (s *timelineService) authorFeed(ctx context.Context, did string, limit int, cursor string) (feedPage, error) {
	params := url.Values{}
	params.Set("actor", did)
	params.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}

	data, err := s.client.Get(ctx, "app.bsky.feed.getAuthorFeed", params)
	if err != nil {
		return feedPage{}, fmt.Errorf("fetching author feed: %w", err)
	}

	var res feedResponse
	if err := json.Unmarshal(data, &res); err != nil {
		return feedPage{}, fmt.Errorf("parsing author feed: %w", err)
	}
	return feedPage{entries: res.Feed, cursor: res.Cursor}, nil
}

// mapFeedEntry projects one raw feed entry into a domain.Post. This is the
// only place the dynamic wire payloads (embeds, facet features) are
// inspected; downstream code sees the resolved union.
func mapFeedEntry(e feedEntry) domain.Post {
	createdAt, _ := time.Parse(time.RFC3339, e.Post.Record.CreatedAt)
	indexedAt, _ := time.Parse(time.RFC3339, e.Post.IndexedAt)

	p := domain.Post{
		URI:         e.Post.URI,
		CID:         e.Post.CID,
		Author:      mapAuthor(e.Post.Author),
		Text:        sanitizeForTerminal(e.Post.Record.Text),
		Facets:      mapFacets(e.Post.Record.Facets),
		Embed:       mapEmbed(e.Post.Embed),
		CreatedAt:   createdAt,
		IndexedAt:   indexedAt,
		ReplyCount:  e.Post.ReplyCount,
		RepostCount: e.Post.RepostCount,
		LikeCount:   e.Post.LikeCount,
	}
	if e.Reason != nil && e.Reason.Type == reasonRepostType {
		by := mapAuthor(e.Reason.By)
		p.RepostedBy = &by
	}
	return p
}

func mapFeedEntries(entries []feedEntry) []domain.Post {
	posts := make([]domain.Post, 0, len(entries))
	for _, e := range entries {
		posts = append(posts, mapFeedEntry(e))
	}
	return posts
}

func mapAuthor(a actorProfile) domain.Author {
	labels := make([]string, 0, len(a.Labels))
	for _, l := range a.Labels {
		labels = append(labels, l.Val)
	}
	return domain.Author{
		DID:         a.DID,
		Handle:      sanitizeForTerminal(a.Handle),
		DisplayName: sanitizeForTerminal(a.DisplayName),
		Avatar:      a.Avatar,
		Labels:      labels,
	}
}

func mapFacets(in []wireFacet) []domain.Facet {
	var out []domain.Facet
	for _, f := range in {
		for _, feat := range f.Features {
			var kind domain.FacetKind
			var value string
			switch feat.Type {
			case "app.bsky.richtext.facet#link":
				kind, value = domain.FacetLink, feat.URI
			case "app.bsky.richtext.facet#mention":
				kind, value = domain.FacetMention, feat.DID
			case "app.bsky.richtext.facet#tag":
				kind, value = domain.FacetTag, feat.Tag
			default:
				continue
			}
			out = append(out, domain.Facet{
				Kind:      kind,
				ByteStart: f.Index.ByteStart,
				ByteEnd:   f.Index.ByteEnd,
				Value:     value,
			})
		}
	}
	return out
}

// mapEmbed resolves the duck-typed embed payload into the domain union.
// Unknown $types map to EmbedUnknown rather than being dropped, so the UI
// can at least say something is there.
func mapEmbed(raw json.RawMessage) domain.Embed {
	if len(raw) == 0 {
		return domain.Embed{Kind: domain.EmbedNone}
	}

	var head struct {
		Type string `json:"$type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return domain.Embed{Kind: domain.EmbedUnknown}
	}

	switch head.Type {
	case embedImagesType:
		var v embedImagesView
		if err := json.Unmarshal(raw, &v); err != nil {
			break
		}
		images := make([]domain.EmbedImage, 0, len(v.Images))
		for _, img := range v.Images {
			images = append(images, domain.EmbedImage{
				Thumb:    img.Thumb,
				Fullsize: img.Fullsize,
				Alt:      sanitizeForTerminal(img.Alt),
			})
		}
		return domain.Embed{Kind: domain.EmbedImages, Images: images}

	case embedExternalType:
		var v embedExternalView
		if err := json.Unmarshal(raw, &v); err != nil {
			break
		}
		return domain.Embed{Kind: domain.EmbedExternal, External: domain.EmbedLink{
			URI:         v.External.URI,
			Title:       sanitizeForTerminal(v.External.Title),
			Description: sanitizeForTerminal(v.External.Description),
			Thumb:       v.External.Thumb,
		}}

	case embedVideoType:
		var v embedVideoView
		if err := json.Unmarshal(raw, &v); err != nil {
			break
		}
		return domain.Embed{Kind: domain.EmbedVideo, Video: domain.EmbedVideoView{
			Playlist:  v.Playlist,
			Thumbnail: v.Thumbnail,
			Alt:       sanitizeForTerminal(v.Alt),
		}}
	}

	return domain.Embed{Kind: domain.EmbedUnknown, RawType: head.Type}
}
