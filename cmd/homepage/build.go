package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/nDmitry/homepage/internal/aggregator"
	"github.com/nDmitry/homepage/internal/api/rest"
	"github.com/nDmitry/homepage/internal/dataset"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/nDmitry/homepage/internal/normalize"
	"github.com/nDmitry/homepage/internal/provider"
	"github.com/nDmitry/homepage/internal/resilience/retry"
	"github.com/nDmitry/homepage/internal/thumbnail"
)

// newAggregator wires the providers, datasets and thumbnails described by cfg.
func newAggregator(cfg *entity.Config, logger *slog.Logger) (*aggregator.Aggregator, error) {
	fetchTimeout := time.Duration(cfg.FetchTimeout)
	client := provider.NewHTTPClient(fetchTimeout)
	retryCfg := retry.FromEntity(cfg.Retry)

	posts, err := provider.NewPostProvider(cfg.Posts, client, cfg.UserAgent)

	if err != nil {
		return nil, err
	}

	jobs := provider.NewJobProvider(cfg.Jobs, client, cfg.UserAgent)

	assets, err := thumbnail.LoadAssets(cfg.Thumbnails.Dir)

	if err != nil {
		return nil, err
	}

	logger.Debug("Loaded thumbnails", "tags", assets.Keys())

	return aggregator.New(aggregator.Options{
		Posts:      provider.WithRetry(posts, retryCfg),
		Jobs:       provider.WithJobsRetry(jobs, retryCfg),
		Datasets:   &dataset.FileLoader{Dir: cfg.DatasetsPath},
		Thumbnails: thumbnail.NewResolver(assets, cfg.Thumbnails.PublicPath, cfg.Thumbnails.Default),
		Normalizer: normalize.New(cfg.Snippet),
		Bounds:     cfg.Bounds,
		Policy: aggregator.Policy{
			PostsRequired: cfg.Posts.Required,
			JobsRequired:  cfg.Jobs.Required,
		},
		FetchTimeout: fetchTimeout,
		Logger:       logger,
	}), nil
}

// runBuild runs a single aggregation and writes the page model to outputPath,
// or to stdout when it is empty.
func runBuild(ctx context.Context, cfg *entity.Config, outputPath string, logger *slog.Logger) error {
	agg, err := newAggregator(cfg, logger)

	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout

	if outputPath != "" {
		f, err := os.Create(outputPath)

		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}

		defer f.Close()

		out = f
	}

	return build(ctx, agg, cfg.Site, out, logger)
}

func build(ctx context.Context, builder aggregator.Builder, site entity.SiteConfig, out io.Writer, logger *slog.Logger) error {
	report, err := builder.Build(ctx)

	if err != nil {
		return fmt.Errorf("build aborted: %w", err)
	}

	for _, w := range report.Warnings {
		logger.Warn("Section degraded", "source", w.Source, "kind", w.Kind, "message", w.Message)
	}

	content, err := rest.Render(report.Page, site, entity.FormatJSON)

	if err != nil {
		return err
	}

	if _, err := out.Write(append(content, '\n')); err != nil {
		return fmt.Errorf("could not write the page: %w", err)
	}

	return nil
}
