package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nDmitry/homepage/internal/entity"
)

// JobListingProvider queries a job board search API.
type JobListingProvider struct {
	URL   string
	Query string
	Limit int
	// Extra query parameters, e.g. custom field filters.
	Params    map[string]string
	Client    *http.Client
	UserAgent string
}

type jobSearchResponse struct {
	Content *[]entity.RawJob `json:"content"`
}

func (p *JobListingProvider) Name() string {
	return "jobs"
}

func (p *JobListingProvider) FetchJobs(ctx context.Context) ([]entity.RawJob, error) {
	reqURL, err := p.requestURL()

	if err != nil {
		return nil, &entity.FetchError{Source: p.Name(), URL: p.URL, Err: err}
	}

	body, err := get(ctx, p.Client, p.Name(), reqURL, "application/json", p.UserAgent)

	if err != nil {
		return nil, err
	}

	var res jobSearchResponse

	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &entity.ParseError{Source: p.Name(), Err: fmt.Errorf("could not decode the job search response: %w", err)}
	}

	if res.Content == nil {
		return nil, &entity.ParseError{Source: p.Name(), Err: errors.New("job search response has no content field")}
	}

	return *res.Content, nil
}

func (p *JobListingProvider) requestURL() (string, error) {
	u, err := url.Parse(p.URL)

	if err != nil {
		return "", fmt.Errorf("invalid jobs URL: %w", err)
	}

	params := u.Query()

	if p.Query != "" {
		params.Set("q", p.Query)
	}

	if p.Limit > 0 {
		params.Set("limit", strconv.Itoa(p.Limit))
	}

	for k, v := range p.Params {
		params.Set(k, v)
	}

	u.RawQuery = params.Encode()

	return u.String(), nil
}
