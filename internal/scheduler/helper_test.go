package scheduler_test

import (
	"bytes"
	"context"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/config"
	"github.com/rohmanhakim/a11y-crawler/internal/fetcher"
	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/internal/robots"
	"github.com/rohmanhakim/a11y-crawler/internal/scheduler"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/retry"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func strPtr(s string) *string {
	return &s
}

// rule builds a violation or pass with n nodes.
func rule(id string, n int) report.Rule {
	r := report.Rule{ID: id, Impact: strPtr("serious")}
	for i := 0; i < n; i++ {
		r.Nodes = append(r.Nodes, report.Node{HTML: "<div>", Target: report.Target{"div"}})
	}
	return r
}

// page is one page of a fake site: what the fetcher serves and what the audit finds.
type page struct {
	body       string
	fetchErr   failure.ClassifiedError
	raw        report.RawResults
	auditErr   failure.ClassifiedError
	failStatus report.PageStatus
}

// fakeSite serves pages keyed by URL string. Unknown URLs fail to fetch
// and audit cleanly with no findings.
type fakeSite struct {
	mu      sync.Mutex
	pages   map[string]page
	audited []string
	fetched []string
	onAudit func(u url.URL)
}

func newFakeSite(pages map[string]page) *fakeSite {
	return &fakeSite{pages: pages}
}

func (f *fakeSite) Fetch(
	ctx context.Context,
	fetchParam fetcher.FetchParam,
	retryParam retry.RetryParam,
) (fetcher.FetchResult, failure.ClassifiedError) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := fetchParam.URL()
	f.fetched = append(f.fetched, u.String())
	p, ok := f.pages[u.String()]
	if !ok {
		return fetcher.FetchResult{}, &fetcher.FetchError{
			Message:    "not found",
			Retryable:  false,
			Cause:      fetcher.ErrCauseRequestNotFound,
			StatusCode: 404,
		}
	}
	if p.fetchErr != nil {
		return fetcher.FetchResult{}, p.fetchErr
	}
	return fetcher.NewFetchResultForTest(u, []byte(p.body), 200, map[string]string{
		"Content-Type": "text/html",
	}), nil
}

func (f *fakeSite) Audit(ctx context.Context, pageURL url.URL) (report.PageResult, failure.ClassifiedError) {
	f.mu.Lock()
	f.audited = append(f.audited, pageURL.String())
	p := f.pages[pageURL.String()]
	onAudit := f.onAudit
	f.mu.Unlock()

	if onAudit != nil {
		onAudit(pageURL)
	}

	observedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if p.auditErr != nil {
		if p.failStatus == "" {
			return report.PageResult{}, p.auditErr
		}
		return report.NewFailedPageResult(pageURL, observedAt, p.failStatus, p.auditErr.Error()), p.auditErr
	}
	return report.NewPageResult(pageURL, observedAt, p.raw), nil
}

func (f *fakeSite) auditedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.audited))
	copy(out, f.audited)
	return out
}

// rateLimiterMock is a testify mock for the RateLimiter
type rateLimiterMock struct {
	mock.Mock
}

// newRateLimiterMockForTest creates a rate limiter mock that never delays
func newRateLimiterMockForTest(t *testing.T) *rateLimiterMock {
	t.Helper()
	m := new(rateLimiterMock)
	m.On("SetBaseDelay", mock.Anything).Return()
	m.On("SetJitter", mock.Anything).Return()
	m.On("SetRandomSeed", mock.Anything).Return()
	m.On("SetCrawlDelay", mock.Anything, mock.Anything).Return()
	m.On("Backoff", mock.Anything).Return()
	m.On("ResetBackoff", mock.Anything).Return()
	m.On("MarkLastFetchAsNow", mock.Anything).Return()
	m.On("ResolveDelay", mock.Anything).Return(time.Duration(0))
	return m
}

func (m *rateLimiterMock) SetBaseDelay(baseDelay time.Duration) {
	m.Called(baseDelay)
}

func (m *rateLimiterMock) SetJitter(jitter time.Duration) {
	m.Called(jitter)
}

func (m *rateLimiterMock) SetRandomSeed(randomSeed int64) {
	m.Called(randomSeed)
}

func (m *rateLimiterMock) SetCrawlDelay(host string, delay time.Duration) {
	m.Called(host, delay)
}

func (m *rateLimiterMock) Backoff(host string) {
	m.Called(host)
}

func (m *rateLimiterMock) ResetBackoff(host string) {
	m.Called(host)
}

func (m *rateLimiterMock) MarkLastFetchAsNow(host string) {
	m.Called(host)
}

func (m *rateLimiterMock) ResolveDelay(host string) time.Duration {
	args := m.Called(host)
	return args.Get(0).(time.Duration)
}

// storageMock is a testify mock for storage.Sink
type storageMock struct {
	mock.Mock
}

func newStorageMockForTest(t *testing.T) *storageMock {
	t.Helper()
	m := new(storageMock)
	m.On("Write", mock.Anything, mock.Anything).
		Return(storage.NewWriteResult("out/accessibility-results.json", []string{"out/accessibility-results.json"}), nil)
	return m
}

func (s *storageMock) Write(ctx context.Context, r report.Report) (storage.WriteResult, failure.ClassifiedError) {
	args := s.Called(ctx, r)
	result := args.Get(0).(storage.WriteResult)
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return result, err
}

// robotsMock is a testify mock for robots.Decider
type robotsMock struct {
	mock.Mock
}

func (r *robotsMock) Decide(ctx context.Context, u url.URL) (robots.Decision, failure.ClassifiedError) {
	args := r.Called(ctx, u.String())
	decision := args.Get(0).(robots.Decision)
	decision.Url = u
	var err failure.ClassifiedError
	if args.Get(1) != nil {
		err = args.Get(1).(failure.ClassifiedError)
	}
	return decision, err
}

// mockFinalizer is a test double that captures final crawl statistics
type mockFinalizer struct {
	recordedStats *capturedStats
	calls         int
}

type capturedStats struct {
	totalPages      int
	totalErrors     int
	totalViolations int
	duration        time.Duration
}

func (m *mockFinalizer) RecordFinalCrawlStats(
	totalPages int,
	totalErrors int,
	totalViolations int,
	duration time.Duration,
) {
	m.calls++
	m.recordedStats = &capturedStats{
		totalPages:      totalPages,
		totalErrors:     totalErrors,
		totalViolations: totalViolations,
		duration:        duration,
	}
}

// admissionRecordingSink keeps admission outcomes by URL.
type admissionRecordingSink struct {
	metadata.NoopSink
	mu         sync.Mutex
	admissions map[string][]metadata.AdmissionOutcome
}

func newAdmissionRecordingSink() *admissionRecordingSink {
	return &admissionRecordingSink{admissions: map[string][]metadata.AdmissionOutcome{}}
}

func (a *admissionRecordingSink) RecordAdmission(candidateUrl string, outcome metadata.AdmissionOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.admissions[candidateUrl] = append(a.admissions[candidateUrl], outcome)
}

// harness bundles a scheduler with its doubles.
type harness struct {
	scheduler *scheduler.Scheduler
	site      *fakeSite
	limiter   *rateLimiterMock
	storage   *storageMock
	finalizer *mockFinalizer
	sink      *admissionRecordingSink
	out       *bytes.Buffer
}

type harnessOption func(*config.Config)

func newHarness(t *testing.T, baseURL string, site *fakeSite, robot robots.Decider, opts ...harnessOption) *harness {
	t.Helper()
	builder := config.WithDefault(mustURL(t, baseURL))
	for _, opt := range opts {
		opt(builder)
	}
	cfg, err := builder.Build()
	require.NoError(t, err)

	h := &harness{
		site:      site,
		limiter:   newRateLimiterMockForTest(t),
		storage:   newStorageMockForTest(t),
		finalizer: &mockFinalizer{},
		sink:      newAdmissionRecordingSink(),
		out:       &bytes.Buffer{},
	}
	h.scheduler = scheduler.NewSchedulerWithDeps(
		cfg,
		h.finalizer,
		h.sink,
		h.limiter,
		robot,
		site,
		site,
		h.storage,
		h.out,
	)
	return h
}

// writtenReport returns the report handed to storage.
func (h *harness) writtenReport(t *testing.T) report.Report {
	t.Helper()
	for _, call := range h.storage.Calls {
		if call.Method == "Write" {
			return call.Arguments.Get(1).(report.Report)
		}
	}
	require.FailNow(t, "storage was never written")
	return report.Report{}
}
