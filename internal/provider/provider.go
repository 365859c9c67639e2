// Package provider fetches raw posts and job postings from the external sources.
package provider

import (
	"context"

	"github.com/nDmitry/homepage/internal/entity"
)

// PostProvider returns the blog posts of one source in source order.
type PostProvider interface {
	Name() string
	FetchPosts(ctx context.Context) ([]entity.RawPost, error)
}

// JobProvider returns open job postings in source order.
type JobProvider interface {
	Name() string
	FetchJobs(ctx context.Context) ([]entity.RawJob, error)
}
