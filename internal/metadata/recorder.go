package metadata

import (
	"time"

	"github.com/sirupsen/logrus"
)

/*
Metadata Collected
- Fetch timestamps and HTTP status codes
- Audit outcomes per page
- Admission decisions
- Written artifacts

Metadata is write-only.
No component may read metadata to influence crawl decisions.
*/

/*
Recorder captures structured crawl events and emits them through logrus.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are recorded synchronously in the order they are received.
*/
type Recorder struct {
	workerId string
	entry    *logrus.Entry
}

func NewRecorder(logger *logrus.Logger, workerId string) *Recorder {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Recorder{
		workerId: workerId,
		entry:    logger.WithField("worker_id", workerId),
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	r.entry.
		WithTime(observedAt).
		WithFields(fieldsOf(attrs)).
		WithFields(logrus.Fields{
			"package": packageName,
			"action":  action,
			"cause":   cause.String(),
		}).
		Warn(errorString)
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
	r.entry.WithFields(logrus.Fields{
		"url":          fetchUrl,
		"http_status":  httpStatus,
		"duration_ms":  duration.Milliseconds(),
		"content_type": contentType,
		"retry_count":  retryCount,
	}).Debug("fetched page")
}

func (r *Recorder) RecordAudit(
	pageUrl string,
	status string,
	violations int,
	nodeViolations int,
	passes int,
	duration time.Duration,
) {
	r.entry.WithFields(logrus.Fields{
		"url":             pageUrl,
		"status":          status,
		"violations":      violations,
		"node_violations": nodeViolations,
		"passes":          passes,
		"duration_ms":     duration.Milliseconds(),
	}).Info("audited page")
}

func (r *Recorder) RecordAdmission(candidateUrl string, outcome AdmissionOutcome) {
	r.entry.WithFields(logrus.Fields{
		"url":     candidateUrl,
		"outcome": string(outcome),
	}).Trace("admission decision")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	r.entry.
		WithFields(fieldsOf(attrs)).
		WithFields(logrus.Fields{
			"kind": string(kind),
			"path": path,
		}).
		Info("wrote artifact")
}

/*
RecordFinalCrawlStats records a terminal, derived summary of a completed crawl.

Contract:
  - MUST be called exactly once per crawl execution.
  - MUST be called only after crawl termination
    (frontier exhausted or scheduler abort).
  - The provided stats MUST be derived from scheduler state,
    not accumulated incrementally via the recorder.
*/
func (r *Recorder) RecordFinalCrawlStats(
	totalPages int,
	totalErrors int,
	totalViolations int,
	duration time.Duration,
) {
	stats := crawlStats{
		totalPages:      totalPages,
		totalErrors:     totalErrors,
		totalViolations: totalViolations,
		durationMs:      duration.Milliseconds(),
	}

	r.append(stats)
}

func (r *Recorder) append(stats crawlStats) {
	r.entry.WithFields(logrus.Fields{
		"total_pages":      stats.totalPages,
		"total_errors":     stats.totalErrors,
		"total_violations": stats.totalViolations,
		"duration_ms":      stats.durationMs,
	}).Info("crawl finished")
}

func fieldsOf(attrs []Attribute) logrus.Fields {
	fields := make(logrus.Fields, len(attrs))
	for _, attr := range attrs {
		fields[string(attr.Key)] = attr.Value
	}
	return fields
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
	)
	RecordAudit(
		pageUrl string,
		status string,
		violations int,
		nodeViolations int,
		passes int,
		duration time.Duration,
	)
	RecordAdmission(candidateUrl string, outcome AdmissionOutcome)
	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type CrawlFinalizer interface {
	RecordFinalCrawlStats(
		totalPages int,
		totalErrors int,
		totalViolations int,
		duration time.Duration,
	)
}

// NoopSink, struct that implements metadata.Sink but does nothing
// Scheduler (or Test) can decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
) {
}

func (n *NoopSink) RecordAudit(
	pageUrl string,
	status string,
	violations int,
	nodeViolations int,
	passes int,
	duration time.Duration,
) {
}

func (n *NoopSink) RecordAdmission(candidateUrl string, outcome AdmissionOutcome) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

func (n *NoopSink) RecordFinalCrawlStats(
	totalPages int,
	totalErrors int,
	totalViolations int,
	duration time.Duration,
) {
}
