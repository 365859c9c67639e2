package provider

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/nDmitry/homepage/internal/entity"
)

// Response bodies larger than this are cut off.
const maxBodySize = 10 * 1024 * 1024

var httpTransport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}).DialContext,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
	DisableCompression:  false,
}

// NewHTTPClient returns a client sharing one transport between all providers.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: httpTransport,
		Timeout:   timeout,
	}
}

// get downloads rawURL and classifies every failure as a FetchError.
func get(ctx context.Context, client *http.Client, source, rawURL, accept, userAgent string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)

	if err != nil {
		return nil, &entity.FetchError{Source: source, URL: rawURL, Err: fmt.Errorf("could not create a request: %w", err)}
	}

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	res, err := client.Do(req)

	if err != nil {
		return nil, &entity.FetchError{Source: source, URL: rawURL, Err: err}
	}

	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &entity.FetchError{
			Source:     source,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", res.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))

	if err != nil {
		return nil, &entity.FetchError{Source: source, URL: rawURL, Err: fmt.Errorf("could not read the body: %w", err)}
	}

	return body, nil
}
