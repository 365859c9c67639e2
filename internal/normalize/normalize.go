// Package normalize turns raw source items into the canonical page entities.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nDmitry/homepage/internal/entity"
)

type Normalizer struct {
	MaxWords int
	MaxChars int
}

func New(cfg entity.SnippetConfig) *Normalizer {
	return &Normalizer{MaxWords: cfg.MaxWords, MaxChars: cfg.MaxChars}
}

// Post converts a raw post. Every failure is a *entity.DataShapeError.
func (n *Normalizer) Post(raw entity.RawPost) (entity.Post, error) {
	source := string(raw.Kind)
	title := collapseSpaces(raw.Title)
	link := strings.TrimSpace(raw.Link)

	item := link

	if item == "" {
		item = firstNonEmpty(raw.GUID, title)
	}

	if title == "" {
		return entity.Post{}, &entity.DataShapeError{Source: source, Item: item, Field: "title", Message: "title is empty"}
	}

	if link == "" {
		return entity.Post{}, &entity.DataShapeError{Source: source, Item: item, Field: "link", Message: "link is empty"}
	}

	publishedAt, err := ParseDate(raw.Published)

	if err != nil {
		return entity.Post{}, &entity.DataShapeError{
			Source:  source,
			Item:    item,
			Field:   "date",
			Message: fmt.Sprintf("could not parse %q: %v", raw.Published, err),
		}
	}

	var authors []entity.Author

	if raw.Kind == entity.SourceListing {
		authors, err = ZipAuthors(raw.AuthorLinks, raw.Avatars)

		if err != nil {
			return entity.Post{}, &entity.DataShapeError{Source: source, Item: item, Field: "authors", Message: err.Error()}
		}
	} else {
		authors = make([]entity.Author, 0, len(raw.Authors))

		for _, a := range raw.Authors {
			authors = append(authors, entity.Author{
				Name:  strings.TrimSpace(a.Name),
				URL:   strings.TrimSpace(a.URL),
				Photo: strings.TrimSpace(a.Photo),
			})
		}
	}

	return entity.Post{
		ID:          firstNonEmpty(strings.TrimSpace(raw.GUID), link),
		Title:       title,
		Link:        link,
		PublishedAt: publishedAt,
		Snippet:     Snippet(raw.Content, n.MaxWords, n.MaxChars),
		Authors:     authors,
	}, nil
}

// Posts converts raws in order and stops at the first invalid one.
func (n *Normalizer) Posts(raws []entity.RawPost) ([]entity.Post, error) {
	posts := make([]entity.Post, 0, len(raws))

	for _, raw := range raws {
		post, err := n.Post(raw)

		if err != nil {
			return nil, err
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// ZipAuthors pairs author links with avatars by position. The lists come
// from two independent queries of the same article block, so they are only
// trusted when their lengths agree.
func ZipAuthors(links []entity.AuthorLink, avatars []string) ([]entity.Author, error) {
	if len(links) != len(avatars) {
		return nil, fmt.Errorf("found %d author links but %d avatars", len(links), len(avatars))
	}

	if len(links) == 0 {
		return nil, errors.New("no authors found")
	}

	authors := make([]entity.Author, len(links))

	for i := range links {
		if links[i].URL == "" {
			return nil, fmt.Errorf("author link %d has no href", i+1)
		}

		if avatars[i] == "" {
			return nil, fmt.Errorf("avatar %d has no src", i+1)
		}

		authors[i] = entity.Author{
			Name:  strings.TrimSpace(links[i].Name),
			URL:   links[i].URL,
			Photo: avatars[i],
		}
	}

	return authors, nil
}

// Job converts a raw job posting.
func (n *Normalizer) Job(raw entity.RawJob) (entity.Job, error) {
	id := strings.TrimSpace(raw.ID)
	name := collapseSpaces(raw.Name)
	item := firstNonEmpty(id, name)

	if id == "" {
		return entity.Job{}, &entity.DataShapeError{Source: string(entity.SourceJobs), Item: item, Field: "id", Message: "id is empty"}
	}

	if name == "" {
		return entity.Job{}, &entity.DataShapeError{Source: string(entity.SourceJobs), Item: item, Field: "name", Message: "name is empty"}
	}

	location, err := decodeLocation(raw.Location)

	if err != nil {
		return entity.Job{}, &entity.DataShapeError{Source: string(entity.SourceJobs), Item: item, Field: "location", Message: err.Error()}
	}

	return entity.Job{ID: id, Name: name, Location: location}, nil
}

func (n *Normalizer) Jobs(raws []entity.RawJob) ([]entity.Job, error) {
	jobs := make([]entity.Job, 0, len(raws))

	for _, raw := range raws {
		job, err := n.Job(raw)

		if err != nil {
			return nil, err
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// decodeLocation accepts either a plain string, kept as the city, or an
// object with city/region/country/remote.
func decodeLocation(raw json.RawMessage) (entity.JobLocation, error) {
	raw = bytes.TrimSpace(raw)

	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return entity.JobLocation{}, nil
	}

	if raw[0] == '"' {
		var city string

		if err := json.Unmarshal(raw, &city); err != nil {
			return entity.JobLocation{}, fmt.Errorf("could not decode location: %w", err)
		}

		return entity.JobLocation{City: strings.TrimSpace(city)}, nil
	}

	var location entity.JobLocation

	if err := json.Unmarshal(raw, &location); err != nil {
		return entity.JobLocation{}, fmt.Errorf("could not decode location: %w", err)
	}

	return location, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
