package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/nDmitry/homepage/internal/app"
	"github.com/nDmitry/homepage/internal/entity"
	"golang.org/x/net/html/charset"
)

const feedAccept = "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8"

// FeedProvider reads posts from an RSS or Atom feed.
type FeedProvider struct {
	URL       string
	Client    *http.Client
	UserAgent string
}

func (p *FeedProvider) Name() string {
	return "feed"
}

func (p *FeedProvider) FetchPosts(ctx context.Context) ([]entity.RawPost, error) {
	body, err := get(ctx, p.Client, p.Name(), p.URL, feedAccept, p.UserAgent)

	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))

	if err != nil {
		return nil, &entity.ParseError{Source: p.Name(), Err: fmt.Errorf("could not parse the feed %s: %w", p.URL, err)}
	}

	customAuthors, err := extractAuthors(body)

	switch {
	case err != nil:
		app.Logger().Warn("could not read the authors extension, using standard authors",
			slog.String("url", p.URL),
			slog.Any("error", err))

		customAuthors = nil
	case customAuthors != nil && len(customAuthors) != len(feed.Items):
		app.Logger().Warn("authors extension does not line up with the feed items, using standard authors",
			slog.String("url", p.URL),
			slog.Int("items", len(feed.Items)),
			slog.Int("extensions", len(customAuthors)))

		customAuthors = nil
	}

	posts := make([]entity.RawPost, 0, len(feed.Items))

	for i, item := range feed.Items {
		post := entity.RawPost{
			Kind:       entity.SourceFeed,
			GUID:       item.GUID,
			Title:      item.Title,
			Link:       item.Link,
			Published:  item.Published,
			Categories: item.Categories,
			Content:    htmlToText(item.Content),
		}

		if post.GUID == "" {
			post.GUID = item.Link
		}

		if post.Published == "" {
			post.Published = item.Updated
		}

		if post.Content == "" {
			post.Content = htmlToText(item.Description)
		}

		if customAuthors != nil && customAuthors[i] != nil {
			post.Authors, err = customAuthors[i].decode()

			if err != nil {
				return nil, &entity.ParseError{Source: p.Name(), Err: fmt.Errorf("could not parse authors of %s: %w", item.Link, err)}
			}
		} else {
			for _, a := range item.Authors {
				if a != nil && a.Name != "" {
					post.Authors = append(post.Authors, entity.Author{Name: a.Name})
				}
			}
		}

		posts = append(posts, post)
	}

	return posts, nil
}

type xmlAuthor struct {
	Name  string `xml:"name"`
	URL   string `xml:"url"`
	Photo string `xml:"photo"`
}

// xmlAuthors is the non-standard <authors> element of an item. It either
// nests <author> elements or holds a JSON array as text.
type xmlAuthors struct {
	List []xmlAuthor `xml:"author"`
	Text string      `xml:",chardata"`
}

func (a *xmlAuthors) decode() ([]entity.Author, error) {
	if len(a.List) > 0 {
		authors := make([]entity.Author, 0, len(a.List))

		for _, x := range a.List {
			authors = append(authors, entity.Author{
				Name:  strings.TrimSpace(x.Name),
				URL:   strings.TrimSpace(x.URL),
				Photo: strings.TrimSpace(x.Photo),
			})
		}

		return authors, nil
	}

	text := strings.TrimSpace(a.Text)

	if text == "" {
		return nil, nil
	}

	var authors []entity.Author

	if err := json.Unmarshal([]byte(text), &authors); err != nil {
		return nil, err
	}

	return authors, nil
}

// extractAuthors returns the <authors> element of every item or entry in
// document order, nil for items without one. gofeed only keeps the text of
// unknown elements, so the nested form needs a pass of its own.
func extractAuthors(body []byte) ([]*xmlAuthors, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.Entity = xml.HTMLEntity
	dec.CharsetReader = charset.NewReaderLabel

	var result []*xmlAuthors

	found := false

	for {
		tok, err := dec.Token()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)

		if !ok || (start.Name.Local != "item" && start.Name.Local != "entry") {
			continue
		}

		var item struct {
			Authors *xmlAuthors `xml:"authors"`
		}

		if err := dec.DecodeElement(&item, &start); err != nil {
			return nil, err
		}

		if item.Authors != nil {
			found = true
		}

		result = append(result, item.Authors)
	}

	if !found {
		return nil, nil
	}

	return result, nil
}

func htmlToText(s string) string {
	if s == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))

	if err != nil {
		return s
	}

	return strings.TrimSpace(doc.Text())
}
