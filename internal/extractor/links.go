package extractor

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/pkg/urlutil"
	"golang.org/x/net/html"
)

/*
Responsibilities
- Parse HTML into a DOM tree
- Collect every a[href]
- Resolve each href against the page URL (or its <base href>)
- Keep only links inside the scope prefix

The extractor never touches the frontier. Deduplication across pages
is the frontier's job; here it only happens within one document.
Malformed documents and hrefs yield fewer links, never an error.
*/
type LinkExtractor struct {
	metadataSink metadata.MetadataSink
	scopePrefix  string
}

func NewLinkExtractor(
	metadataSink metadata.MetadataSink,
	scopePrefix string,
) LinkExtractor {
	return LinkExtractor{
		metadataSink: metadataSink,
		scopePrefix:  scopePrefix,
	}
}

// Extract returns in-scope links of content in document order, without repeats.
func (l *LinkExtractor) Extract(pageURL url.URL, content []byte) []url.URL {
	root, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		l.recordError(pageURL, &ExtractionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnparseable,
		})
		return []url.URL{}
	}
	doc := goquery.NewDocumentFromNode(root)

	resolveBase := documentBase(doc, pageURL)

	seen := make(map[string]struct{})
	links := []url.URL{}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}

		resolved, err := urlutil.Resolve(resolveBase, href)
		if err != nil {
			l.recordError(pageURL, &ExtractionError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseMalformedHref,
			})
			return
		}
		if !urlutil.InScope(resolved, l.scopePrefix) {
			return
		}

		key := resolved.String()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links = append(links, resolved)
	})

	return links
}

// documentBase honors the first <base href>, itself resolved against the page URL.
func documentBase(doc *goquery.Document, pageURL url.URL) url.URL {
	baseHref, ok := doc.Find("base[href]").First().Attr("href")
	if !ok || strings.TrimSpace(baseHref) == "" {
		return pageURL
	}
	base, err := urlutil.Resolve(pageURL, baseHref)
	if err != nil {
		return pageURL
	}
	return base
}

func (l *LinkExtractor) recordError(pageURL url.URL, err *ExtractionError) {
	l.metadataSink.RecordError(
		time.Now(),
		"extractor",
		"LinkExtractor.Extract",
		mapExtractionErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, pageURL.String()),
		},
	)
}
