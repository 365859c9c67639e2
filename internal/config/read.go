package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nDmitry/homepage/internal/entity"
)

const (
	defaultFetchTimeout = 30 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (compatible; HomepageBuilder/1.0)"
	defaultThumbnail    = "images/post-headers/default.jpg"
)

// Read loads a JSON config file, fills in defaults and validates the result.
func Read(configPath string) (*entity.Config, error) {
	contents, err := os.ReadFile(configPath)

	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	return Parse(contents)
}

// Parse is Read without the file access.
func Parse(contents []byte) (*entity.Config, error) {
	config := Default()

	if err := json.Unmarshal(contents, config); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	applyEnv(config)

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// Default returns the configuration the original homepage was built with.
func Default() *entity.Config {
	return &entity.Config{
		Posts: entity.PostsConfig{
			Strategy: entity.StrategyFeed,
			Selectors: entity.ListingSelectors{
				Item:     "article",
				Title:    "h2 a",
				Date:     `span[aria-label="date"], time`,
				Snippet:  "p",
				Category: `a[rel="tag"]`,
				Avatar:   "img.avatar",
				Author:   "a.author",
			},
		},
		Jobs: entity.JobsConfig{
			Limit: 5,
		},
		DatasetsPath: "data",
		Thumbnails: entity.ThumbnailConfig{
			Dir:        "public/images/post-headers",
			PublicPath: "images/post-headers",
			Default:    defaultThumbnail,
		},
		// Team areas are shown in full; 12 is above the current dataset
		// size and keeps the section bounded like every other one.
		Bounds: entity.Bounds{
			Posts:      4,
			Jobs:       5,
			Papers:     10,
			Talks:      4,
			MoreTalks:  4,
			OpenSource: 4,
			Teams:      12,
		},
		Snippet: entity.SnippetConfig{
			MaxWords: 25,
			MaxChars: 300,
		},
		FetchTimeout: entity.Duration(defaultFetchTimeout),
		Retry: entity.RetryConfig{
			MaxAttempts:  1,
			InitialDelay: entity.Duration(time.Second),
			MaxDelay:     entity.Duration(10 * time.Second),
		},
		UserAgent: defaultUserAgent,
	}
}

func applyEnv(config *entity.Config) {
	config.FetchTimeout = entity.Duration(GetEnvDuration("FETCH_TIMEOUT", time.Duration(config.FetchTimeout)))
	config.DatasetsPath = GetEnvString("DATASETS_PATH", config.DatasetsPath)
	config.Thumbnails.Dir = GetEnvString("THUMBNAILS_DIR", config.Thumbnails.Dir)
	config.Retry.MaxAttempts = GetEnvInt("RETRY_MAX_ATTEMPTS", config.Retry.MaxAttempts)
}

// Validate checks the invariants the rest of the program relies on.
// nolint: cyclop
func Validate(config *entity.Config) error {
	var errs []error

	switch config.Posts.Strategy {
	case entity.StrategyFeed:
		if config.Posts.FeedURL == "" {
			errs = append(errs, errors.New("posts.feedUrl is required for the feed strategy"))
		}
	case entity.StrategyListing:
		if config.Posts.ListingURL == "" {
			errs = append(errs, errors.New("posts.listingUrl is required for the listing strategy"))
		}
	case entity.StrategyFeedWithListing:
		if config.Posts.FeedURL == "" || config.Posts.ListingURL == "" {
			errs = append(errs, errors.New("posts.feedUrl and posts.listingUrl are required for the feed+listing strategy"))
		}
	default:
		errs = append(errs, fmt.Errorf("posts.strategy must be %s, %s or %s",
			entity.StrategyFeed, entity.StrategyListing, entity.StrategyFeedWithListing))
	}

	if config.Posts.Strategy != entity.StrategyFeed && config.Posts.Selectors.Item == "" {
		errs = append(errs, errors.New("posts.selectors.item is required for scraping"))
	}

	if config.Jobs.URL == "" {
		errs = append(errs, errors.New("jobs.url is required"))
	}

	if config.Jobs.Limit <= 0 {
		errs = append(errs, errors.New("jobs.limit must be positive"))
	}

	bounds := map[string]int{
		"posts":      config.Bounds.Posts,
		"jobs":       config.Bounds.Jobs,
		"papers":     config.Bounds.Papers,
		"talks":      config.Bounds.Talks,
		"moreTalks":  config.Bounds.MoreTalks,
		"openSource": config.Bounds.OpenSource,
		"teams":      config.Bounds.Teams,
	}

	for _, name := range []string{"posts", "jobs", "papers", "talks", "moreTalks", "openSource", "teams"} {
		if bounds[name] < 0 {
			errs = append(errs, fmt.Errorf("bounds.%s must be non-negative", name))
		}
	}

	if config.Snippet.MaxWords <= 0 || config.Snippet.MaxChars <= 0 {
		errs = append(errs, errors.New("snippet.maxWords and snippet.maxChars must be positive"))
	}

	if config.FetchTimeout <= 0 {
		errs = append(errs, errors.New("fetchTimeout must be positive"))
	}

	if config.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry.maxAttempts must be at least 1"))
	}

	if config.Thumbnails.Default == "" {
		errs = append(errs, errors.New("thumbnails.default is required"))
	}

	return errors.Join(errs...)
}
