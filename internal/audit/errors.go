package audit

import (
	"fmt"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
)

// PageLoadError means the page could not be navigated to. The crawl continues.
type PageLoadError struct {
	Message string
	URL     string
}

func (e *PageLoadError) Error() string {
	return fmt.Sprintf("page load error: %s: %s", e.URL, e.Message)
}

func (e *PageLoadError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

type AuditOracleErrorCause string

const (
	ErrCauseEngineInjection AuditOracleErrorCause = "engine injection failed"
	ErrCauseEngineRun       AuditOracleErrorCause = "engine run failed"
	ErrCauseMalformedResult AuditOracleErrorCause = "malformed engine result"
)

// AuditOracleError means the page loaded but the engine produced no usable result.
// The crawl continues.
type AuditOracleError struct {
	Message string
	URL     string
	Cause   AuditOracleErrorCause
}

func (e *AuditOracleError) Error() string {
	return fmt.Sprintf("audit error: %s: %s: %s", e.URL, e.Cause, e.Message)
}

func (e *AuditOracleError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// SessionError means no browser could be started. Every following page
// would fail the same way, so the crawl aborts.
type SessionError struct {
	Message string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session error: %s", e.Message)
}

func (e *SessionError) Severity() failure.Severity {
	return failure.SeverityFatal
}

// mapAuditErrorToMetadataCause maps audit-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapAuditErrorToMetadataCause(err failure.ClassifiedError) metadata.ErrorCause {
	switch err.(type) {
	case *PageLoadError, *SessionError:
		return metadata.CauseBrowserFailure
	case *AuditOracleError:
		return metadata.CauseAuditFailure
	default:
		return metadata.CauseUnknown
	}
}
