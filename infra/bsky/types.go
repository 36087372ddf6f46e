package bsky

import "encoding/json"

// Wire types: the subset of the AppView's lexicon responses we care about.
// Kept private to this package; everything crossing into domain goes
// through the mapping in feed.go.

type actorProfile struct {
	DID         string  `json:"did"`
	Handle      string  `json:"handle"`
	DisplayName string  `json:"displayName"`
	Avatar      string  `json:"avatar"`
	Description string  `json:"description"`
	Labels      []label `json:"labels"`
}

type label struct {
	Val string `json:"val"`
}

type followsResponse struct {
	Follows []actorProfile `json:"follows"`
	Cursor  string         `json:"cursor"`
}

type feedResponse struct {
	Feed   []feedEntry `json:"feed"`
	Cursor string      `json:"cursor"`
}

// feedEntry is one raw entry from getAuthorFeed: the post itself plus an
// optional reason tag carrying repost provenance.
type feedEntry struct {
	Post   postView    `json:"post"`
	Reason *feedReason `json:"reason"`
}

type feedReason struct {
	Type string       `json:"$type"`
	By   actorProfile `json:"by"`
}

const reasonRepostType = "app.bsky.feed.defs#reasonRepost"

type postView struct {
	URI         string          `json:"uri"`
	CID         string          `json:"cid"`
	Author      actorProfile    `json:"author"`
	Record      postRecord      `json:"record"`
	Embed       json.RawMessage `json:"embed"`
	ReplyCount  int             `json:"replyCount"`
	RepostCount int             `json:"repostCount"`
	LikeCount   int             `json:"likeCount"`
	IndexedAt   string          `json:"indexedAt"`
}

type postRecord struct {
	Text      string      `json:"text"`
	CreatedAt string      `json:"createdAt"`
	Facets    []wireFacet `json:"facets"`
}

type wireFacet struct {
	Index    byteRange      `json:"index"`
	Features []facetFeature `json:"features"`
}

type byteRange struct {
	ByteStart int `json:"byteStart"`
	ByteEnd   int `json:"byteEnd"`
}

type facetFeature struct {
	Type string `json:"$type"`
	URI  string `json:"uri"`
	DID  string `json:"did"`
	Tag  string `json:"tag"`
}

// Embed views, discriminated by $type on the wire.

const (
	embedImagesType   = "app.bsky.embed.images#view"
	embedExternalType = "app.bsky.embed.external#view"
	embedVideoType    = "app.bsky.embed.video#view"
)

type embedImagesView struct {
	Images []embedImage `json:"images"`
}

type embedImage struct {
	Thumb    string `json:"thumb"`
	Fullsize string `json:"fullsize"`
	Alt      string `json:"alt"`
}

type embedExternalView struct {
	External embedExternal `json:"external"`
}

type embedExternal struct {
	URI         string `json:"uri"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumb       string `json:"thumb"`
}

type embedVideoView struct {
	Playlist  string `json:"playlist"`
	Thumbnail string `json:"thumbnail"`
	Alt       string `json:"alt"`
}
