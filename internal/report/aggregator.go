package report

import (
	"net/url"
	"sync"
	"time"
)

// Aggregator folds PageResults into running totals.
// It keeps its own copy of every recorded result and never deduplicates:
// the frontier guarantees each URL is audited once.
type Aggregator struct {
	mu              sync.Mutex
	baseURL         string
	results         []PageResult
	stats           Statistics
	violationCounts map[string]int
	startedAt       time.Time
}

func NewAggregator(baseURL url.URL) *Aggregator {
	return &Aggregator{
		baseURL:         baseURL.String(),
		results:         []PageResult{},
		violationCounts: map[string]int{},
		startedAt:       time.Now().UTC(),
	}
}

// MarkStarted sets the crawl start time the final report is stamped with.
// Without it the report carries the time the aggregator was created.
func (a *Aggregator) MarkStarted(at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startedAt = at.UTC()
}

// Record adds pr to the totals.
func (a *Aggregator) Record(pr PageResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.results = append(a.results, clonePageResult(pr))

	a.stats.PagesAttempted++
	switch pr.Status {
	case StatusPageLoadError:
		a.stats.PageLoadErrors++
	case StatusAuditError:
		a.stats.AuditErrors++
	}

	a.stats.Violations += pr.Summary.TotalViolations
	a.stats.NodeViolations += pr.Summary.TotalNodeViolations
	a.stats.Passes += pr.Summary.TotalPasses
	for ruleID, count := range pr.Summary.ViolationCounts {
		a.violationCounts[ruleID] += count
	}
}

// Stats returns the running totals.
func (a *Aggregator) Stats() Statistics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Finalize snapshots the aggregate. visited is the frontier's visited list
// and becomes totalUrls/crawledUrls. The snapshot shares no memory with the aggregator.
func (a *Aggregator) Finalize(visited []url.URL) Report {
	a.mu.Lock()
	defer a.mu.Unlock()

	crawled := make([]string, len(visited))
	for i, u := range visited {
		crawled[i] = u.String()
	}

	results := make([]PageResult, len(a.results))
	for i, pr := range a.results {
		results[i] = clonePageResult(pr)
	}

	return Report{
		Timestamp:       a.startedAt,
		BaseURL:         a.baseURL,
		TotalURLs:       len(visited),
		Statistics:      a.stats,
		ViolationCounts: cloneCounts(a.violationCounts),
		CrawledURLs:     crawled,
		URLResults:      results,
	}
}
