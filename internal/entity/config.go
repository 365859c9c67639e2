package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	StrategyFeed            = "feed"
	StrategyListing         = "listing"
	StrategyFeedWithListing = "feed+listing"
)

type Config struct {
	Site         SiteConfig      `json:"site"`
	Posts        PostsConfig     `json:"posts"`
	Jobs         JobsConfig      `json:"jobs"`
	DatasetsPath string          `json:"datasetsPath"`
	Thumbnails   ThumbnailConfig `json:"thumbnails"`
	Bounds       Bounds          `json:"bounds"`
	Snippet      SnippetConfig   `json:"snippet"`
	// Upper limit for a single provider call. Zero means the default.
	FetchTimeout Duration    `json:"fetchTimeout"`
	Retry        RetryConfig `json:"retry"`
	UserAgent    string      `json:"userAgent"`
}

type SiteConfig struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type PostsConfig struct {
	// One of StrategyFeed, StrategyListing or StrategyFeedWithListing.
	Strategy   string           `json:"strategy"`
	FeedURL    string           `json:"feedUrl"`
	ListingURL string           `json:"listingUrl"`
	Selectors  ListingSelectors `json:"selectors"`
	// A required source aborts the build when it fails.
	Required bool `json:"required"`
}

// ListingSelectors are CSS selectors used to scrape the blog listing page.
// Every selector except Item is evaluated inside an article block.
type ListingSelectors struct {
	Item     string `json:"item"`
	Title    string `json:"title"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
	Category string `json:"category"`
	Avatar   string `json:"avatar"`
	Author   string `json:"author"`
}

type JobsConfig struct {
	URL   string `json:"url"`
	Query string `json:"query"`
	Limit int    `json:"limit"`
	// Extra query parameters, e.g. custom field filters of the job board.
	Params   map[string]string `json:"params"`
	Required bool              `json:"required"`
}

type ThumbnailConfig struct {
	// Directory scanned for category images.
	Dir string `json:"dir"`
	// Prefix under which Dir is served.
	PublicPath string `json:"publicPath"`
	Default    string `json:"default"`
}

// Bounds are the maximum sizes of the page collections.
type Bounds struct {
	Posts      int `json:"posts"`
	Jobs       int `json:"jobs"`
	Papers     int `json:"papers"`
	Talks      int `json:"talks"`
	MoreTalks  int `json:"moreTalks"`
	OpenSource int `json:"openSource"`
	Teams      int `json:"teams"`
}

type SnippetConfig struct {
	MaxWords int `json:"maxWords"`
	MaxChars int `json:"maxChars"`
}

type RetryConfig struct {
	// 1 disables retries.
	MaxAttempts  int      `json:"maxAttempts"`
	InitialDelay Duration `json:"initialDelay"`
	MaxDelay     Duration `json:"maxDelay"`
}

// Duration is a time.Duration read from strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string

	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}

	if s == "" {
		*d = 0
		return nil
	}

	v, err := time.ParseDuration(s)

	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
