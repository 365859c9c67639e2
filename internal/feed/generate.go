// Package feed renders the aggregated blog posts as an RSS or Atom feed.
package feed

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/feeds"
	"github.com/nDmitry/homepage/internal/entity"
)

// Generate renders page.Posts in the given format (rss or atom).
func Generate(page *entity.Page, site entity.SiteConfig, format string) ([]byte, error) {
	feed := &feeds.Feed{
		Title:       site.Title,
		Link:        &feeds.Link{Href: site.URL},
		Description: site.Description,
		Id:          site.URL,
	}

	for _, p := range page.Posts {
		item := &feeds.Item{
			Id:          p.ID,
			Title:       p.Title,
			Link:        &feeds.Link{Href: p.Link},
			Description: p.Snippet,
			Created:     p.PublishedAt,
		}

		if len(p.Authors) > 0 {
			item.Author = &feeds.Author{Name: authorNames(p.Authors)}
		}

		if p.Thumbnail != "" {
			item.Enclosure = &feeds.Enclosure{
				Url:    absoluteURL(site.URL, p.Thumbnail),
				Type:   imageType(p.Thumbnail),
				Length: "0",
			}
		}

		feed.Items = append(feed.Items, item)

		if feed.Created.IsZero() || p.PublishedAt.After(feed.Created) {
			feed.Created = p.PublishedAt
		}
	}

	var content string
	var err error

	switch format {
	case entity.FormatRSS:
		content, err = feed.ToRss()
	case entity.FormatAtom:
		content, err = feed.ToAtom()
	default:
		return nil, fmt.Errorf("unsupported feed format: %s", format)
	}

	if err != nil {
		return nil, fmt.Errorf("could not marshal posts to %s: %w", format, err)
	}

	return []byte(content), nil
}

// authorNames mirrors the post card: one name, or the first one followed by an ellipsis.
func authorNames(authors []entity.Author) string {
	if len(authors) > 1 {
		return authors[0].Name + "…"
	}

	return authors[0].Name
}

func absoluteURL(siteURL, p string) string {
	base, err := url.Parse(siteURL)

	if err != nil || base.Host == "" {
		return p
	}

	base.Path = path.Join("/", base.Path, p)

	return base.String()
}

func imageType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".svg":
		return "image/svg+xml"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
