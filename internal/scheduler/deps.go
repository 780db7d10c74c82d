package scheduler

import (
	"context"
	"net/url"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
)

// RateLimiter is the politeness surface the scheduler drives.
// pkg/limiter.ConcurrentRateLimiter satisfies it.
type RateLimiter interface {
	SetBaseDelay(baseDelay time.Duration)
	SetJitter(jitter time.Duration)
	SetRandomSeed(randomSeed int64)
	SetCrawlDelay(host string, delay time.Duration)
	Backoff(host string)
	ResetBackoff(host string)
	MarkLastFetchAsNow(host string)
	ResolveDelay(host string) time.Duration
}

// Auditor turns one URL into one PageResult. audit.Runner satisfies it.
type Auditor interface {
	Audit(ctx context.Context, pageURL url.URL) (report.PageResult, failure.ClassifiedError)
}
