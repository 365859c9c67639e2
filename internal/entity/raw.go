package entity

import "encoding/json"

// SourceKind tells the normalizer which rules apply to a raw post.
type SourceKind string

const (
	SourceFeed    SourceKind = "feed"
	SourceListing SourceKind = "listing"
	SourceJobs    SourceKind = "jobs"
)

// AuthorLink is an author anchor as found on a listing page.
type AuthorLink struct {
	Name string
	URL  string
}

// RawPost is a blog post as returned by a post provider, before normalization.
type RawPost struct {
	Kind  SourceKind
	GUID  string
	Title string
	Link  string
	// Unparsed publish date exactly as the source shows it.
	Published  string
	Categories []string
	// Plain text excerpt, not yet truncated.
	Content string

	// Structured authors, set by the feed provider.
	Authors []Author

	// Author anchors and avatar URLs in document order, set by the listing provider.
	// They are paired by position during normalization.
	AuthorLinks []AuthorLink
	Avatars     []string
}

// RawJob is a single posting from the job board search response.
type RawJob struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// Either a plain string or an object with city/region/country/remote.
	Location json.RawMessage `json:"location"`
}
