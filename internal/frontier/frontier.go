package frontier

import (
	"net/url"
	"sync"

	"github.com/rohmanhakim/a11y-crawler/pkg/urlutil"
)

/*
Frontier Responsibilities
- Maintain discovery (FIFO) ordering
- Deduplicate URLs
- Enforce the scope prefix
- Guarantee at-most-once visitation, which also terminates cycles
- Knows nothing about:
	- fetching
	- auditing
	- robots.txt
	- storage

It is a data structure + policy module, not a pipeline executor.
*/
type Frontier struct {
	mu          sync.Mutex
	scopePrefix string
	policy      urlutil.NormalizePolicy
	visited     *OrderedSet[string]
	order       []url.URL
	queue       *Queue[url.URL]
}

func NewFrontier(scopePrefix string, policy urlutil.NormalizePolicy) *Frontier {
	return &Frontier{
		scopePrefix: scopePrefix,
		policy:      policy,
		visited:     NewOrderedSet[string](),
		order:       []url.URL{},
		queue:       NewQueue[url.URL](),
	}
}

// Seed inserts the start URL unconditionally, bypassing the scope check.
// Seeding an URL that is already known is a no-op.
func (f *Frontier) Seed(seedURL url.URL) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.admit(urlutil.Normalize(seedURL, f.policy))
}

// Offer decides whether candidate joins the frontier.
// The membership check and the enqueue happen under one lock.
func (f *Frontier) Offer(candidate url.URL) AdmissionOutcome {
	normalized := urlutil.Normalize(candidate, f.policy)
	if !urlutil.InScope(normalized, f.scopePrefix) {
		return ScopeRejected
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.admit(normalized) {
		return Duplicate
	}
	return Admitted
}

// Next pops the oldest admitted URL. It returns false when the queue is empty.
func (f *Frontier) Next() (url.URL, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Pop()
}

// Visited lists every admitted URL in admission order.
func (f *Frontier) Visited() []url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()

	visited := make([]url.URL, len(f.order))
	copy(visited, f.order)
	return visited
}

func (f *Frontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Len()
}

// Pending is the number of admitted URLs not yet handed out by Next.
func (f *Frontier) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// admit records u as visited and queues it, unless its string form is
// already known. It reports whether u was new.
func (f *Frontier) admit(u url.URL) bool {
	if !f.visited.Add(u.String()) {
		return false
	}
	f.order = append(f.order, u)
	f.queue.Push(u)
	return true
}
