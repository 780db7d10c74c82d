package scheduler

import (
	"context"
	"errors"
	"io"
	"net/url"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/audit"
	"github.com/rohmanhakim/a11y-crawler/internal/config"
	"github.com/rohmanhakim/a11y-crawler/internal/extractor"
	"github.com/rohmanhakim/a11y-crawler/internal/fetcher"
	"github.com/rohmanhakim/a11y-crawler/internal/frontier"
	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/internal/robots"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/retry"
	"github.com/rohmanhakim/a11y-crawler/pkg/timeutil"
)

/*
 Scheduler is the sole control-plane authority of the crawl.

 Determinism and admission guarantees:
 - Scheduler is the ONLY component allowed to decide whether a URL
   may enter the crawl frontier.
 - Robots and page-limit checks MUST be completed before offering a URL
   to the frontier. Scope and deduplication belong to the frontier.
 - Pages are audited strictly one at a time, in discovery order.
 - Pipeline stages may detect and classify failure, but must never decide
   retry, continuation, or abortion.

 Metadata emission is observational only and MUST NOT influence
 scheduling, retries, or crawl termination.

 Scheduler Responsibilities:
 - Coordinate crawl lifecycle
 - Enforce global limits (pages)
 - Apply politeness delays, including robots crawl-delay
 - Stop between pages when the context is cancelled
 - Hand the final report to storage exactly once
 - The sole authority on:
	- continue
	- abort
*/

type Scheduler struct {
	cfg            config.Config
	metadataSink   metadata.MetadataSink
	crawlFinalizer metadata.CrawlFinalizer
	rateLimiter    RateLimiter
	frontier       *frontier.Frontier
	robot          robots.Decider
	htmlFetcher    fetcher.Fetcher
	linkExtractor  extractor.LinkExtractor
	auditor        Auditor
	aggregator     *report.Aggregator
	storageSink    storage.Sink
	summaryOut     io.Writer
	totalErrors    int
}

// NewSchedulerWithDeps creates a Scheduler around the given components.
// The frontier, extractor and aggregator are owned by the scheduler and
// built from cfg.
func NewSchedulerWithDeps(
	cfg config.Config,
	crawlFinalizer metadata.CrawlFinalizer,
	metadataSink metadata.MetadataSink,
	rateLimiter RateLimiter,
	robot robots.Decider,
	htmlFetcher fetcher.Fetcher,
	auditor Auditor,
	storageSink storage.Sink,
	summaryOut io.Writer,
) *Scheduler {
	rateLimiter.SetBaseDelay(cfg.BaseDelay())
	rateLimiter.SetJitter(cfg.Jitter())
	rateLimiter.SetRandomSeed(cfg.RandomSeed())

	if robot == nil {
		robot = robots.AllowAll{}
	}
	if summaryOut == nil {
		summaryOut = io.Discard
	}

	return &Scheduler{
		cfg:            cfg,
		metadataSink:   metadataSink,
		crawlFinalizer: crawlFinalizer,
		rateLimiter:    rateLimiter,
		frontier:       frontier.NewFrontier(cfg.ScopePrefix(), cfg.NormalizePolicy()),
		robot:          robot,
		htmlFetcher:    htmlFetcher,
		linkExtractor:  extractor.NewLinkExtractor(metadataSink, cfg.ScopePrefix()),
		auditor:        auditor,
		aggregator:     report.NewAggregator(cfg.BaseURL()),
		storageSink:    storageSink,
		summaryOut:     summaryOut,
	}
}

// ExecuteCrawling runs the crawl to completion:
// seed, then audit and discover page by page until the frontier drains,
// then finalize, persist and print the summary.
//
// A cancelled context stops the crawl between pages and returns ctx.Err();
// nothing is persisted in that case.
func (s *Scheduler) ExecuteCrawling(ctx context.Context) (CrawlingExecution, error) {
	crawlStartTime := time.Now()

	defer func() {
		s.crawlFinalizer.RecordFinalCrawlStats(
			s.frontier.VisitedCount(),
			s.totalErrors,
			s.aggregator.Stats().Violations,
			time.Since(crawlStartTime),
		)
	}()

	s.aggregator.MarkStarted(crawlStartTime)
	s.frontier.Seed(s.cfg.BaseURL())

	for {
		if err := ctx.Err(); err != nil {
			return CrawlingExecution{}, err
		}

		pageURL, ok := s.frontier.Next()
		if !ok {
			break
		}

		if err := timeutil.SleepContext(ctx, s.rateLimiter.ResolveDelay(pageURL.Host)); err != nil {
			return CrawlingExecution{}, err
		}

		pageResult, err := s.auditor.Audit(ctx, pageURL)
		s.rateLimiter.MarkLastFetchAsNow(pageURL.Host)
		if err != nil {
			// a page interrupted by cancellation is not a page-load error
			if ctxErr := ctx.Err(); ctxErr != nil {
				return CrawlingExecution{}, ctxErr
			}
			if failure.IsFatal(err) {
				s.totalErrors++
				return CrawlingExecution{}, err
			}
			// recoverable → metadata already emitted → the failed result is still recorded
			s.totalErrors++
			if pageResult.URL == "" {
				pageResult = report.NewFailedPageResult(pageURL, time.Now(), failedStatusOf(err), err.Error())
			}
		}
		s.aggregator.Record(pageResult)

		for _, discovered := range s.discoverLinks(ctx, pageURL) {
			s.SubmitUrlForAdmission(ctx, discovered)
		}
	}

	finalReport := s.aggregator.Finalize(s.frontier.Visited())

	writeResult, err := s.storageSink.Write(ctx, finalReport)
	if err != nil {
		s.totalErrors++
		return CrawlingExecution{}, err
	}

	if err := report.PrintSummary(s.summaryOut, finalReport, writeResult.Location()); err != nil {
		s.metadataSink.RecordError(
			time.Now(),
			"scheduler",
			"report.PrintSummary",
			metadata.CauseUnknown,
			err.Error(),
			nil,
		)
	}

	return CrawlingExecution{
		Report:      finalReport,
		WriteResult: writeResult,
	}, nil
}

// discoverLinks fetches the raw page and extracts in-scope links from it.
// Fetch failures are never fatal here: the page simply contributes no links.
func (s *Scheduler) discoverLinks(ctx context.Context, pageURL url.URL) []url.URL {
	fetchParam := fetcher.NewFetchParam(pageURL, s.cfg.UserAgent())
	if s.cfg.AuthEnabled() {
		fetchParam = fetchParam.WithBasicAuth(s.cfg.Username(), s.cfg.Password())
	}

	fetchResult, err := s.htmlFetcher.Fetch(ctx, fetchParam, s.retryParam())
	if err != nil {
		s.rateLimiter.Backoff(pageURL.Host)
		s.totalErrors++
		return nil
	}
	s.rateLimiter.ResetBackoff(pageURL.Host)

	// relative links resolve against where the content actually came from
	return s.linkExtractor.Extract(fetchResult.URL(), fetchResult.Body())
}

// SubmitUrlForAdmission applies robots and the page limit, then offers the
// URL to the frontier. It is the single admission choke point of the crawl.
func (s *Scheduler) SubmitUrlForAdmission(ctx context.Context, candidate url.URL) metadata.AdmissionOutcome {
	outcome := s.admit(ctx, candidate)
	s.metadataSink.RecordAdmission(candidate.String(), outcome)
	return outcome
}

func (s *Scheduler) admit(ctx context.Context, candidate url.URL) metadata.AdmissionOutcome {
	decision, robotsErr := s.robot.Decide(ctx, candidate)
	if robotsErr != nil {
		// robots infrastructure failure is recorded by robots and fails open
		s.totalErrors++
	}
	if decision.CrawlDelay != nil && *decision.CrawlDelay > 0 {
		s.rateLimiter.SetCrawlDelay(candidate.Host, *decision.CrawlDelay)
	}
	if !decision.Allowed {
		return metadata.AdmissionRobotsBlocked
	}

	if maxPages := s.cfg.MaxPages(); maxPages > 0 && s.frontier.VisitedCount() >= maxPages {
		return metadata.AdmissionLimitReached
	}

	switch s.frontier.Offer(candidate) {
	case frontier.Admitted:
		return metadata.AdmissionAdmitted
	case frontier.ScopeRejected:
		return metadata.AdmissionScopeRejected
	default:
		return metadata.AdmissionDuplicate
	}
}

// failedStatusOf picks the page status for an auditor error that came
// without a page result.
func failedStatusOf(err error) report.PageStatus {
	var loadErr *audit.PageLoadError
	if errors.As(err, &loadErr) {
		return report.StatusPageLoadError
	}
	return report.StatusAuditError
}

func (s *Scheduler) retryParam() retry.RetryParam {
	return retry.NewRetryParam(
		s.cfg.BaseDelay(),
		s.cfg.Jitter(),
		s.cfg.RandomSeed(),
		s.cfg.MaxAttempt(),
		timeutil.NewBackoffParam(
			s.cfg.BackoffInitialDuration(),
			s.cfg.BackoffMultiplier(),
			s.cfg.BackoffMaxDuration(),
		),
	)
}

// FrontierVisitedCount returns the number of URLs admitted so far.
func (s *Scheduler) FrontierVisitedCount() int {
	return s.frontier.VisitedCount()
}
