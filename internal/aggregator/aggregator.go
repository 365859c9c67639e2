// Package aggregator builds the page model from all sources of a single run.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/dataset"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/nDmitry/homepage/internal/metrics"
	"github.com/nDmitry/homepage/internal/normalize"
	"github.com/nDmitry/homepage/internal/provider"
	"github.com/nDmitry/homepage/internal/thumbnail"
	"golang.org/x/sync/errgroup"
)

// Policy says which enrichment sources may not be skipped on failure.
type Policy struct {
	PostsRequired bool
	JobsRequired  bool
}

type Options struct {
	Posts      provider.PostProvider
	Jobs       provider.JobProvider
	Datasets   dataset.Loader
	Thumbnails *thumbnail.Resolver
	Normalizer *normalize.Normalizer
	Bounds     entity.Bounds
	Policy     Policy
	// Upper limit for each provider call, zero for none.
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// Warning is a skipped source of a successful build.
type Warning struct {
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Report struct {
	Page     *entity.Page
	Warnings []Warning
}

type Aggregator struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Aggregator {
	logger := opts.Logger

	if logger == nil {
		logger = app.Logger()
	}

	return &Aggregator{opts: opts, logger: logger}
}

type postsResult struct {
	raws []entity.RawPost
	err  error
}

type jobsResult struct {
	raws []entity.RawJob
	err  error
}

type datasetsResult struct {
	datasets *entity.Datasets
	err      error
}

// Build fetches every source concurrently and waits for all of them, then
// applies the failure policy and assembles a bounded page. It returns either
// a complete page or an error, never a partial page.
func (a *Aggregator) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	report, err := a.build(ctx)

	metrics.RecordBuild(err == nil, time.Since(start))

	if err != nil {
		a.logger.Error("page build aborted",
			slog.Any("error", err),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))

		return nil, err
	}

	a.logger.Info("page built",
		slog.Int("posts", len(report.Page.Posts)),
		slog.Int("jobs", len(report.Page.Jobs)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	return report, nil
}

func (a *Aggregator) build(ctx context.Context) (*Report, error) {
	var (
		g        errgroup.Group
		posts    postsResult
		jobs     jobsResult
		datasets datasetsResult
	)

	// Every slot records its own outcome and returns nil, so one failing
	// source does not cancel the others.
	g.Go(func() error {
		posts.raws, posts.err = timed(ctx, a, a.opts.Posts.Name(), a.opts.Posts.FetchPosts)
		return nil
	})

	g.Go(func() error {
		jobs.raws, jobs.err = timed(ctx, a, a.opts.Jobs.Name(), a.opts.Jobs.FetchJobs)
		return nil
	})

	g.Go(func() error {
		datasets.datasets, datasets.err = a.opts.Datasets.Load(ctx)
		return nil
	})

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build canceled: %w", err)
	}

	if datasets.err != nil {
		return nil, fmt.Errorf("could not load datasets: %w", datasets.err)
	}

	report := &Report{Warnings: []Warning{}}
	b := a.opts.Bounds

	rawPosts, err := a.applyPolicy(report, a.opts.Posts.Name(), a.opts.Policy.PostsRequired, posts.err)

	if err != nil {
		return nil, err
	}

	var pagePosts []entity.Post

	if rawPosts {
		pagePosts, err = a.posts(window(posts.raws, 0, b.Posts))

		if err != nil {
			metrics.RecordProviderFailure(a.opts.Posts.Name(), errorKind(err))
			return nil, err
		}
	}

	rawJobs, err := a.applyPolicy(report, a.opts.Jobs.Name(), a.opts.Policy.JobsRequired, jobs.err)

	if err != nil {
		return nil, err
	}

	var pageJobs []entity.Job

	if rawJobs {
		pageJobs, err = a.opts.Normalizer.Jobs(window(jobs.raws, 0, b.Jobs))

		if err != nil {
			metrics.RecordProviderFailure(a.opts.Jobs.Name(), errorKind(err))
			return nil, err
		}
	}

	ds := datasets.datasets

	report.Page = &entity.Page{
		Posts:      window(pagePosts, 0, b.Posts),
		Jobs:       window(pageJobs, 0, b.Jobs),
		Papers:     window(ds.Papers, 0, b.Papers),
		Talks:      window(ds.Talks, 0, b.Talks),
		MoreTalks:  window(ds.Talks, b.Talks, b.Talks+b.MoreTalks),
		OpenSource: window(ds.OpenSource, 0, b.OpenSource),
		Teams:      window(ds.Teams, 0, b.Teams),
	}

	recordSections(report.Page)

	return report, nil
}

// applyPolicy reports whether the source result can be used. A skipped
// optional source adds a warning; everything else aborts the build.
func (a *Aggregator) applyPolicy(report *Report, source string, required bool, err error) (bool, error) {
	if err == nil {
		return true, nil
	}

	kind := errorKind(err)
	metrics.RecordProviderFailure(source, kind)

	soft := entity.IsFetchError(err) || entity.IsParseError(err)

	if entity.IsDataShapeError(err) || !soft || required {
		return false, fmt.Errorf("source %s failed: %w", source, err)
	}

	a.logger.Warn("optional source failed, section left empty",
		slog.String("source", source),
		slog.String("kind", kind),
		slog.Any("error", err))

	report.Warnings = append(report.Warnings, Warning{Source: source, Kind: kind, Message: err.Error()})

	return false, nil
}

// posts normalizes raws and attaches a thumbnail to each of them.
func (a *Aggregator) posts(raws []entity.RawPost) ([]entity.Post, error) {
	posts, err := a.opts.Normalizer.Posts(raws)

	if err != nil {
		return nil, err
	}

	for i := range posts {
		posts[i].Thumbnail = a.opts.Thumbnails.Resolve(raws[i].Categories)
	}

	return posts, nil
}

func timed[T any](ctx context.Context, a *Aggregator, source string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if a.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, a.opts.FetchTimeout)
		defer cancel()
	}

	start := time.Now()
	items, err := fetch(ctx)

	metrics.RecordProviderCall(source, time.Since(start))

	a.logger.Debug("source fetched",
		slog.String("source", source),
		slog.Int("items", len(items)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		slog.Any("error", err))

	return items, err
}

// window returns a copy of s[lo:hi] clamped to the length of s.
// The result is never nil so empty sections encode as [].
func window[T any](s []T, lo, hi int) []T {
	lo = max(0, min(lo, len(s)))
	hi = max(lo, min(hi, len(s)))

	out := make([]T, 0, hi-lo)

	return append(out, s[lo:hi]...)
}

func errorKind(err error) string {
	switch {
	case entity.IsDataShapeError(err):
		return "data_shape"
	case entity.IsParseError(err):
		return "parse"
	case entity.IsFetchError(err):
		return "fetch"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}

func recordSections(page *entity.Page) {
	metrics.RecordSection("posts", len(page.Posts))
	metrics.RecordSection("jobs", len(page.Jobs))
	metrics.RecordSection("papers", len(page.Papers))
	metrics.RecordSection("talks", len(page.Talks))
	metrics.RecordSection("moreTalks", len(page.MoreTalks))
	metrics.RecordSection("openSource", len(page.OpenSource))
	metrics.RecordSection("teams", len(page.Teams))
}
