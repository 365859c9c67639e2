package aggregator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nDmitry/homepage/internal/aggregator"
	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockBuilder is a mock implementation of the Builder interface
type MockBuilder struct {
	BuildFunc func(ctx context.Context) (*aggregator.Report, error)
}

func (m *MockBuilder) Build(ctx context.Context) (*aggregator.Report, error) {
	return m.BuildFunc(ctx)
}

func TestStore(t *testing.T) {
	builds := 0
	fail := false

	store := aggregator.NewStore(&MockBuilder{BuildFunc: func(_ context.Context) (*aggregator.Report, error) {
		builds++

		if fail {
			return nil, errors.New("datasets missing")
		}

		return &aggregator.Report{
			Page:     &entity.Page{Teams: []entity.TeamArea{{Name: "NLP"}}},
			Warnings: []aggregator.Warning{{Source: "jobs", Kind: "fetch", Message: "status 502"}},
		}, nil
	}}, app.Logger())

	assert.False(t, store.Status().Ready)

	page, err := store.Page(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "NLP", page.Teams[0].Name)
	assert.Equal(t, 1, builds)

	// Served from memory
	_, err = store.Page(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, builds)

	fail = true

	_, err = store.Page(context.Background(), true)
	require.Error(t, err)
	assert.Equal(t, 2, builds)

	// A failed rebuild keeps the previous page
	page, err = store.Page(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "NLP", page.Teams[0].Name)

	status := store.Status()
	assert.True(t, status.Ready)
	assert.Equal(t, 2, status.Builds)
	assert.Equal(t, "datasets missing", status.LastError)
	assert.Len(t, status.Warnings, 1)
	assert.False(t, status.BuiltAt.IsZero())
}

func TestStore_NoPageOnFirstFailure(t *testing.T) {
	store := aggregator.NewStore(&MockBuilder{BuildFunc: func(_ context.Context) (*aggregator.Report, error) {
		return nil, &entity.DataShapeError{Source: "listing", Item: "a", Field: "authors", Message: "mismatch"}
	}}, app.Logger())

	page, err := store.Page(context.Background(), false)

	require.Error(t, err)
	assert.Nil(t, page)
	assert.True(t, entity.IsDataShapeError(err))
	assert.False(t, store.Status().Ready)
}
