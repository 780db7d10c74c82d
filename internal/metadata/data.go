package metadata

/*
crawlStats
  - Represents a terminal, derived summary of a completed crawl
  - Contains only aggregate counts and durations
  - Is computed by the scheduler after crawl termination
  - Is recorded exactly once
  - Must not influence scheduling, retries, or crawl termination
*/
type crawlStats struct {
	totalPages      int
	totalErrors     int
	totalViolations int
	durationMs      int64
}

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry, continuation, or abort decisions.
	 - Pipeline packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability.
  - TCP timeouts, DNS failures, TLS handshake errors, robots.txt fetch timeout.

# CausePolicyDisallow

  - Crawling was disallowed by an explicit policy or rule.
  - robots.txt disallow, HTTP 401 / 403.

# CauseContentInvalid

  - Content was fetched but could not be processed meaningfully.
  - Non-HTML responses, undecodable bodies.

# CauseStorageFailure

  - Failure while persisting the report.
  - Disk full, permission errors, export backend unreachable.

# CauseInvariantViolation

  - A system-level invariant was violated.

# CauseBrowserFailure

  - The browser could not be started, or navigation to a page failed.

# CauseAuditFailure

  - The accessibility engine could not be loaded or returned unusable results.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
	CauseInvariantViolation
	CauseBrowserFailure
	CauseAuditFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseInvariantViolation:
		return "invariant_violation"
	case CauseBrowserFailure:
		return "browser_failure"
	case CauseAuditFailure:
		return "audit_failure"
	default:
		return "unknown"
	}
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrTime       AttributeKey = "time"
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrPath       AttributeKey = "path"
	AttrField      AttributeKey = "field"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrWritePath  AttributeKey = "write_path"
	AttrSink       AttributeKey = "sink"
	AttrAttempts   AttributeKey = "attempts"
)

// ArtifactKind names what kind of file or record a sink produced.
type ArtifactKind string

const (
	ArtifactReport   ArtifactKind = "report"
	ArtifactPage     ArtifactKind = "page"
	ArtifactWorkbook ArtifactKind = "workbook"
	ArtifactDocument ArtifactKind = "document"
)

// AdmissionOutcome mirrors the frontier's decision for a discovered URL.
// Kept as a plain string so metadata does not depend on the frontier package.
type AdmissionOutcome string

const (
	AdmissionAdmitted      AdmissionOutcome = "admitted"
	AdmissionScopeRejected AdmissionOutcome = "scope_rejected"
	AdmissionDuplicate     AdmissionOutcome = "duplicate"
	AdmissionRobotsBlocked AdmissionOutcome = "robots_blocked"
	AdmissionLimitReached  AdmissionOutcome = "limit_reached"
)
