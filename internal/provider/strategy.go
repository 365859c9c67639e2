package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/nDmitry/homepage/internal/resilience/retry"
)

// NewPostProvider builds the post source selected by cfg.Strategy.
func NewPostProvider(cfg entity.PostsConfig, client *http.Client, userAgent string) (PostProvider, error) {
	feed := &FeedProvider{URL: cfg.FeedURL, Client: client, UserAgent: userAgent}
	listing := &ListingProvider{URL: cfg.ListingURL, Selectors: cfg.Selectors, Client: client, UserAgent: userAgent}

	switch cfg.Strategy {
	case entity.StrategyFeed:
		return feed, nil
	case entity.StrategyListing:
		return listing, nil
	case entity.StrategyFeedWithListing:
		return &FallbackProvider{Primary: feed, Secondary: listing}, nil
	default:
		return nil, fmt.Errorf("unknown posts strategy %q", cfg.Strategy)
	}
}

func NewJobProvider(cfg entity.JobsConfig, client *http.Client, userAgent string) JobProvider {
	return &JobListingProvider{
		URL:       cfg.URL,
		Query:     cfg.Query,
		Limit:     cfg.Limit,
		Params:    cfg.Params,
		Client:    client,
		UserAgent: userAgent,
	}
}

// FallbackProvider asks Secondary when Primary fails to fetch or parse.
// Data shape errors are returned as is since the other source would
// describe the same posts.
type FallbackProvider struct {
	Primary   PostProvider
	Secondary PostProvider
}

func (p *FallbackProvider) Name() string {
	return p.Primary.Name() + "+" + p.Secondary.Name()
}

func (p *FallbackProvider) FetchPosts(ctx context.Context) ([]entity.RawPost, error) {
	posts, err := p.Primary.FetchPosts(ctx)

	if err == nil || !(entity.IsFetchError(err) || entity.IsParseError(err)) || ctx.Err() != nil {
		return posts, err
	}

	app.Logger().Warn("primary post source failed, falling back",
		slog.String("primary", p.Primary.Name()),
		slog.String("secondary", p.Secondary.Name()),
		slog.Any("error", err))

	return p.Secondary.FetchPosts(ctx)
}

// WithRetry retries transient fetch failures of p.
func WithRetry(p PostProvider, cfg retry.Config) PostProvider {
	return &retryingPosts{next: p, cfg: cfg}
}

// WithJobsRetry is WithRetry for job providers.
func WithJobsRetry(p JobProvider, cfg retry.Config) JobProvider {
	return &retryingJobs{next: p, cfg: cfg}
}

type retryingPosts struct {
	next PostProvider
	cfg  retry.Config
}

func (r *retryingPosts) Name() string {
	return r.next.Name()
}

func (r *retryingPosts) FetchPosts(ctx context.Context) ([]entity.RawPost, error) {
	var posts []entity.RawPost

	err := retry.WithBackoff(ctx, r.cfg, func() error {
		var err error
		posts, err = r.next.FetchPosts(ctx)

		return err
	})

	return posts, err
}

type retryingJobs struct {
	next JobProvider
	cfg  retry.Config
}

func (r *retryingJobs) Name() string {
	return r.next.Name()
}

func (r *retryingJobs) FetchJobs(ctx context.Context) ([]entity.RawJob, error) {
	var jobs []entity.RawJob

	err := retry.WithBackoff(ctx, r.cfg, func() error {
		var err error
		jobs, err = r.next.FetchJobs(ctx)

		return err
	})

	return jobs, err
}
