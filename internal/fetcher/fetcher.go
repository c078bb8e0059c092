// Package fetcher submits form requests to store-locator endpoints with
// per-host rate limiting and retry on transient failures.
package fetcher

import (
	"context"
	"net/http"
	"net/url"
)

// Fetcher defines the interface for posting search forms.
type Fetcher interface {
	// PostForm submits form as application/x-www-form-urlencoded and returns
	// the 2xx response. The caller must close the response body.
	PostForm(ctx context.Context, rawURL string, form url.Values, header http.Header) (*http.Response, error)
}
