package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/nDmitry/homepage/internal/entity"
)

// ListingProvider scrapes posts from the blog index page.
type ListingProvider struct {
	URL       string
	Selectors entity.ListingSelectors
	Client    *http.Client
	UserAgent string
}

func (p *ListingProvider) Name() string {
	return "listing"
}

func (p *ListingProvider) FetchPosts(ctx context.Context) ([]entity.RawPost, error) {
	var (
		posts    []entity.RawPost
		fetchErr error
		parseErr error
	)

	c := colly.NewCollector(
		colly.UserAgent(p.UserAgent),
		colly.StdlibContext(ctx),
	)

	if p.Client != nil {
		c.SetClient(p.Client)
	}

	c.OnHTML(p.Selectors.Item, func(e *colly.HTMLElement) {
		if parseErr != nil {
			return
		}

		post, err := p.extract(e)

		if err != nil {
			parseErr = err
			return
		}

		posts = append(posts, post)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = &entity.FetchError{
			Source:     p.Name(),
			URL:        p.URL,
			StatusCode: r.StatusCode,
			Err:        err,
		}
	})

	if err := c.Visit(p.URL); err != nil && fetchErr == nil {
		fetchErr = &entity.FetchError{Source: p.Name(), URL: p.URL, Err: err}
	}

	if fetchErr != nil {
		return nil, fetchErr
	}

	if parseErr != nil {
		return nil, parseErr
	}

	if len(posts) == 0 {
		return nil, &entity.ParseError{
			Source: p.Name(),
			Err:    fmt.Errorf("no article blocks matching %q on %s", p.Selectors.Item, p.URL),
		}
	}

	return posts, nil
}

// extract reads one article block. Avatars and author links are kept as two
// separate sequences in document order; pairing them is up to the normalizer.
func (p *ListingProvider) extract(e *colly.HTMLElement) (entity.RawPost, error) {
	sel := p.Selectors
	heading := e.DOM.Find(sel.Title).First()
	href, ok := heading.Attr("href")

	if !ok || strings.TrimSpace(href) == "" {
		return entity.RawPost{}, &entity.ParseError{
			Source: p.Name(),
			Err:    errors.New("article block without a heading link"),
		}
	}

	link := e.Request.AbsoluteURL(strings.TrimSpace(href))

	post := entity.RawPost{
		Kind:  entity.SourceListing,
		GUID:  link,
		Title: strings.TrimSpace(heading.Text()),
		Link:  link,
	}

	if sel.Date != "" {
		date := e.DOM.Find(sel.Date).First()

		if dt, ok := date.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			post.Published = strings.TrimSpace(dt)
		} else {
			post.Published = strings.TrimSpace(date.Text())
		}
	}

	if sel.Snippet != "" {
		post.Content = strings.TrimSpace(e.DOM.Find(sel.Snippet).First().Text())
	}

	if sel.Category != "" {
		e.DOM.Find(sel.Category).Each(func(_ int, s *goquery.Selection) {
			if c := strings.TrimSpace(s.Text()); c != "" {
				post.Categories = append(post.Categories, c)
			}
		})
	}

	if sel.Avatar != "" {
		e.DOM.Find(sel.Avatar).Each(func(_ int, s *goquery.Selection) {
			src, _ := s.Attr("src")
			post.Avatars = append(post.Avatars, absoluteURL(e, src))
		})
	}

	if sel.Author != "" {
		e.DOM.Find(sel.Author).Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			post.AuthorLinks = append(post.AuthorLinks, entity.AuthorLink{
				Name: strings.TrimSpace(s.Text()),
				URL:  absoluteURL(e, href),
			})
		})
	}

	return post, nil
}

// absoluteURL resolves ref against the page URL. A missing or blank ref stays
// empty instead of resolving to the page itself, so an avatar without src
// cannot pass for a photo.
func absoluteURL(e *colly.HTMLElement, ref string) string {
	ref = strings.TrimSpace(ref)

	if ref == "" {
		return ""
	}

	return e.Request.AbsoluteURL(ref)
}
