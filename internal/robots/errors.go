package robots

import (
	"fmt"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
)

type RobotsErrorCause string

const (
	ErrCausePreFetchFailure     RobotsErrorCause = "failed to build robots.txt request"
	ErrCauseHttpFetchFailure    RobotsErrorCause = "failed to fetch robots.txt"
	ErrCauseHttpTooManyRequests RobotsErrorCause = "robots.txt rate limited"
	ErrCauseHttpServerError     RobotsErrorCause = "robots.txt server error"
	ErrCauseParseError          RobotsErrorCause = "robots.txt parse error"
)

// RobotsError never stops a crawl: the host is treated as allow-all.
type RobotsError struct {
	Message   string
	Retryable bool
	Cause     RobotsErrorCause
}

func (e *RobotsError) Error() string {
	return fmt.Sprintf("robots error: %s: %s", e.Cause, e.Message)
}

func (e *RobotsError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// mapRobotsErrorToMetadataCause maps robots-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapRobotsErrorToMetadataCause(err *RobotsError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseHttpFetchFailure, ErrCauseHttpTooManyRequests, ErrCauseHttpServerError:
		return metadata.CauseNetworkFailure
	case ErrCauseParseError:
		return metadata.CauseContentInvalid
	case ErrCausePreFetchFailure:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}
