package frontier_test

import (
	"fmt"
	"net/url"
	"sync"
	"testing"

	"github.com/rohmanhakim/a11y-crawler/internal/frontier"
	"github.com/rohmanhakim/a11y-crawler/pkg/urlutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to must-parse URLs in tests
func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func drain(f *frontier.Frontier) []string {
	var out []string
	for {
		u, ok := f.Next()
		if !ok {
			return out
		}
		out = append(out, u.String())
	}
}

func TestFrontier_SeedThenNext(t *testing.T) {
	f := frontier.NewFrontier("https://example.test/de", urlutil.PolicyExact)
	f.Seed(mustURL(t, "https://example.test/de"))

	assert.Equal(t, 1, f.VisitedCount())
	u, ok := f.Next()
	require.True(t, ok)
	assert.Equal(t, "https://example.test/de", u.String())

	_, ok = f.Next()
	assert.False(t, ok)
	assert.Equal(t, 1, f.VisitedCount(), "popping does not forget visited URLs")
}

func TestFrontier_Offer(t *testing.T) {
	f := frontier.NewFrontier("https://example.test/de", urlutil.PolicyExact)
	f.Seed(mustURL(t, "https://example.test/de"))

	tests := []struct {
		name string
		url  string
		want frontier.AdmissionOutcome
	}{
		{name: "new in-scope", url: "https://example.test/de/kontakt", want: frontier.Admitted},
		{name: "repeat", url: "https://example.test/de/kontakt", want: frontier.Duplicate},
		{name: "seed again", url: "https://example.test/de", want: frontier.Duplicate},
		{name: "other language", url: "https://example.test/en/contact", want: frontier.ScopeRejected},
		{name: "other host", url: "https://other.test/de", want: frontier.ScopeRejected},
		{name: "other scheme", url: "http://example.test/de/x", want: frontier.ScopeRejected},
		{name: "fragment is distinct under exact", url: "https://example.test/de/kontakt#form", want: frontier.Admitted},
		{name: "trailing slash is distinct under exact", url: "https://example.test/de/kontakt/", want: frontier.Admitted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Offer(mustURL(t, tt.url)))
		})
	}

	assert.Equal(t, 4, f.VisitedCount())
}

func TestFrontier_StripFragmentPolicy(t *testing.T) {
	f := frontier.NewFrontier("https://example.test/", urlutil.PolicyStripFragment)
	f.Seed(mustURL(t, "https://example.test/"))

	assert.Equal(t, frontier.Admitted, f.Offer(mustURL(t, "https://example.test/a#one")))
	assert.Equal(t, frontier.Duplicate, f.Offer(mustURL(t, "https://example.test/a#two")))
	assert.Equal(t, frontier.Duplicate, f.Offer(mustURL(t, "https://example.test/a")))

	visited := f.Visited()
	require.Len(t, visited, 2)
	assert.Equal(t, "https://example.test/a", visited[1].String())
}

func TestFrontier_FIFOOrder(t *testing.T) {
	f := frontier.NewFrontier("https://example.test/", urlutil.PolicyExact)
	f.Seed(mustURL(t, "https://example.test/"))
	f.Next()

	f.Offer(mustURL(t, "https://example.test/b"))
	f.Offer(mustURL(t, "https://example.test/a"))
	f.Offer(mustURL(t, "https://example.test/c"))

	assert.Equal(t, []string{
		"https://example.test/b",
		"https://example.test/a",
		"https://example.test/c",
	}, drain(f))
}

// A links to B, B links back to A: the crawl must terminate after two pages.
func TestFrontier_CycleTerminates(t *testing.T) {
	a := mustURL(t, "https://example.test/a")
	b := mustURL(t, "https://example.test/b")
	links := map[string][]url.URL{
		a.String(): {b},
		b.String(): {a},
	}

	f := frontier.NewFrontier("https://example.test/", urlutil.PolicyExact)
	f.Seed(a)

	var audited []string
	for {
		next, ok := f.Next()
		if !ok {
			break
		}
		audited = append(audited, next.String())
		for _, link := range links[next.String()] {
			f.Offer(link)
		}
	}

	assert.Equal(t, []string{a.String(), b.String()}, audited)
	assert.Equal(t, 2, f.VisitedCount())
}

func TestFrontier_VisitedReturnsCopy(t *testing.T) {
	f := frontier.NewFrontier("https://example.test/", urlutil.PolicyExact)
	f.Seed(mustURL(t, "https://example.test/"))

	visited := f.Visited()
	visited[0].Path = "/mutated"

	assert.Equal(t, "/", f.Visited()[0].Path)
}

func TestFrontier_ConcurrentOfferAdmitsOnce(t *testing.T) {
	f := frontier.NewFrontier("https://example.test/", urlutil.PolicyExact)

	const workers = 16
	const urls = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := map[string]int{}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < urls; i++ {
				u := url.URL{Scheme: "https", Host: "example.test", Path: fmt.Sprintf("/p%d", i)}
				if f.Offer(u) == frontier.Admitted {
					mu.Lock()
					admitted[u.String()]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, admitted, urls)
	for u, n := range admitted {
		assert.Equal(t, 1, n, "url %s admitted more than once", u)
	}
	assert.Equal(t, urls, f.VisitedCount())
	assert.Equal(t, urls, f.Pending())
}

func TestAdmissionOutcome_String(t *testing.T) {
	assert.Equal(t, "admitted", frontier.Admitted.String())
	assert.Equal(t, "scope_rejected", frontier.ScopeRejected.String())
	assert.Equal(t, "duplicate", frontier.Duplicate.String())
}
