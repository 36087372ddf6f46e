package domain

// CursorMap holds one opaque continuation token per followed account,
// keyed by DID. An absent entry means "start from the newest post".
// The merge code treats cursor maps as immutable values: it reads the
// caller's map and always returns a freshly built one.
type CursorMap map[string]string

// Clone returns an independent copy. A nil map clones to nil.
func (c CursorMap) Clone() CursorMap {
	if c == nil {
		return nil
	}
	out := make(CursorMap, len(c))
	for did, cur := range c {
		out[did] = cur
	}
	return out
}

// Timeline is the result of one merged fetch: posts newest-first plus the
// cursor map snapshot produced by that fetch. Returned as one unit so the
// caller's pagination state always matches the posts it is showing.
type Timeline struct {
	Posts   []Post
	Cursors CursorMap
}
