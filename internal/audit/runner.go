package audit

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/browser"
	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/urlutil"
)

/*
Responsibilities
- Open a fresh browser session per page and always close it
- Navigate, with credentials embedded when basic auth is enabled
- Invoke the audit oracle
- Normalize the oracle output into a PageResult

Page-level failures never escape as a missing result: the runner returns a
zero-count PageResult with a non-ok status next to the recoverable error.
*/

type RunnerOptions struct {
	NavigationTimeout time.Duration
	Username          string
	Password          string
}

type Runner struct {
	metadataSink metadata.MetadataSink
	driver       browser.Driver
	oracle       Oracle
	profile      Profile
	opts         RunnerOptions
	now          func() time.Time
}

func NewRunner(
	metadataSink metadata.MetadataSink,
	driver browser.Driver,
	oracle Oracle,
	profile Profile,
	opts RunnerOptions,
) *Runner {
	return &Runner{
		metadataSink: metadataSink,
		driver:       driver,
		oracle:       oracle,
		profile:      profile,
		opts:         opts,
		now:          time.Now,
	}
}

// Audit loads pageURL and evaluates it.
// A *SessionError is fatal and comes with an empty PageResult; every other
// error is recoverable and comes with a zero-count PageResult.
func (r *Runner) Audit(ctx context.Context, pageURL url.URL) (report.PageResult, failure.ClassifiedError) {
	startTime := time.Now()

	session, err := r.driver.Open(ctx)
	if err != nil {
		sessionErr := &SessionError{Message: err.Error()}
		r.recordError(pageURL, sessionErr)
		return report.PageResult{}, sessionErr
	}
	defer session.Close()

	pageCtx := ctx
	if r.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, r.opts.NavigationTimeout)
		defer cancel()
	}

	navigationURL := urlutil.WithCredentials(pageURL, r.opts.Username, r.opts.Password)
	if err := session.Navigate(pageCtx, navigationURL); err != nil {
		loadErr := &PageLoadError{
			Message: err.Error(),
			URL:     pageURL.String(),
		}
		return r.failed(pageURL, startTime, report.StatusPageLoadError, loadErr)
	}

	raw, err := r.oracle.Evaluate(pageCtx, session, r.profile)
	if err != nil {
		oracleErr := &AuditOracleError{
			Message: err.Error(),
			URL:     pageURL.String(),
			Cause:   ErrCauseEngineRun,
		}
		var typed *AuditOracleError
		if errors.As(err, &typed) {
			oracleErr.Message = typed.Message
			oracleErr.Cause = typed.Cause
		}
		return r.failed(pageURL, startTime, report.StatusAuditError, oracleErr)
	}

	result := report.NewPageResult(pageURL, r.now(), raw)
	r.metadataSink.RecordAudit(
		result.URL,
		string(result.Status),
		result.Summary.TotalViolations,
		result.Summary.TotalNodeViolations,
		result.Summary.TotalPasses,
		time.Since(startTime),
	)
	return result, nil
}

func (r *Runner) failed(
	pageURL url.URL,
	startTime time.Time,
	status report.PageStatus,
	err failure.ClassifiedError,
) (report.PageResult, failure.ClassifiedError) {
	r.recordError(pageURL, err)
	result := report.NewFailedPageResult(pageURL, r.now(), status, err.Error())
	r.metadataSink.RecordAudit(result.URL, string(status), 0, 0, 0, time.Since(startTime))
	return result, err
}

func (r *Runner) recordError(pageURL url.URL, err failure.ClassifiedError) {
	r.metadataSink.RecordError(
		time.Now(),
		"audit",
		"Runner.Audit",
		mapAuditErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, pageURL.String()),
		},
	)
}

// SetClockForTest replaces the clock used to stamp page results.
func (r *Runner) SetClockForTest(now func() time.Time) {
	r.now = now
}
