package browser

import (
	"context"
	"net/url"
)

/*
Responsibilities
- Start and stop a browser
- Load one page
- Evaluate scripts in the loaded page

The browser package is an opaque page-control driver. It knows nothing
about accessibility rules, reports or the crawl.
*/

// Driver hands out isolated browser sessions.
type Driver interface {
	Open(ctx context.Context) (Session, error)
}

// Session controls a single page. Close must always be called.
type Session interface {
	Navigate(ctx context.Context, target url.URL) error
	// Evaluate runs script in the page and decodes its JSON-serializable
	// result into out. With awaitPromise the returned promise is resolved first.
	Evaluate(ctx context.Context, script string, out any, awaitPromise bool) error
	Close() error
}

// Options configures the browser process.
type Options struct {
	// ExecPath is the browser executable. Empty lets chromedp search the usual locations.
	ExecPath         string
	Headless         bool
	ProxyURL         *url.URL
	UserAgent        string
	IgnoreCertErrors bool
}
