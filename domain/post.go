package domain

import (
	"strings"
	"time"
)

// Author is a snapshot of an account as it appeared when a post was
// fetched, not a live reference. Handles are mutable; DID is the
// durable key.
type Author struct {
	DID         string
	Handle      string
	DisplayName string
	Avatar      string   // Avatar image URL
	Labels      []string // Moderation/visibility label values
}

// Name returns the best available display string for the author.
func (a Author) Name() string {
	if strings.TrimSpace(a.DisplayName) != "" {
		return a.DisplayName
	}
	return a.Handle
}

// FacetKind identifies the rich-text feature a facet annotates.
type FacetKind int

const (
	FacetLink FacetKind = iota
	FacetMention
	FacetTag
)

// Facet is a byte-range annotation on post text (link, mention, or tag).
// Offsets index into the UTF-8 bytes of the post text.
type Facet struct {
	Kind      FacetKind
	ByteStart int
	ByteEnd   int
	Value     string // Link URI, mentioned DID, or tag text
}

// EmbedKind discriminates the Embed union.
type EmbedKind int

const (
	EmbedNone EmbedKind = iota
	EmbedImages
	EmbedExternal
	EmbedVideo
	EmbedUnknown
)

// EmbedImage is one image in an image embed.
type EmbedImage struct {
	Thumb    string
	Fullsize string
	Alt      string
}

// EmbedLink is an external link card.
type EmbedLink struct {
	URI         string
	Title       string
	Description string
	Thumb       string
}

// EmbedVideoView is a video embed.
type EmbedVideoView struct {
	Playlist  string // HLS playlist URL
	Thumbnail string
	Alt       string
}

// Embed is a tagged union over the known post embed kinds. Exactly one
// payload field is meaningful, selected by Kind. Upstream embed types we
// don't recognize map to EmbedUnknown with RawType carrying the wire type,
// so the rest of the code never re-inspects dynamic payloads.
type Embed struct {
	Kind     EmbedKind
	Images   []EmbedImage
	External EmbedLink
	Video    EmbedVideoView
	RawType  string // Wire $type for EmbedUnknown
}

// Post represents a single post from a feed.
type Post struct {
	URI         string // AT-URI, the post's identity key
	CID         string // Content identifier of the record
	Author      Author
	Text        string
	Facets      []Facet
	Embed       Embed
	CreatedAt   time.Time // Authoring time, display only
	IndexedAt   time.Time // Indexing time, used for ordering
	RepostedBy  *Author   // Set when the feed entry was a repost
	ReplyCount  int
	RepostCount int
	LikeCount   int
}

// WebURL converts the post's AT-URI into a public web URL, or returns ""
// if the URI doesn't have the expected at://<did>/<collection>/<rkey> shape.
func (p Post) WebURL() string {
	rest, ok := strings.CutPrefix(p.URI, "at://")
	if !ok {
		return ""
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return ""
	}
	return "https://bsky.app/profile/" + parts[0] + "/post/" + parts[2]
}
