package storage

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/fileutil"
)

type StorageErrorCause string

const (
	ErrCauseDiskFull              StorageErrorCause = "disk is full"
	ErrCauseWriteFailure          StorageErrorCause = "write failed"
	ErrCausePathError             StorageErrorCause = "path error"
	ErrCauseEncodeFailure         StorageErrorCause = "encode failed"
	ErrCauseHashComputationFailed StorageErrorCause = "hash computation failed"
	ErrCauseBackendUnavailable    StorageErrorCause = "backend unavailable"
)

// StorageError is fatal: a crawl whose report cannot be persisted has no result.
// Retryable marks conditions a rerun may overcome, such as a full disk.
type StorageError struct {
	Message   string
	Retryable bool
	Cause     StorageErrorCause
	Path      string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

func (e *StorageError) Severity() failure.Severity {
	return failure.SeverityFatal
}

// mapStorageErrorToMetadataCause maps storage-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapStorageErrorToMetadataCause(err *StorageError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseDiskFull, ErrCauseWriteFailure, ErrCausePathError, ErrCauseBackendUnavailable:
		return metadata.CauseStorageFailure
	case ErrCauseEncodeFailure, ErrCauseHashComputationFailed:
		return metadata.CauseInvariantViolation
	default:
		return metadata.CauseUnknown
	}
}

// fromFileError converts a fileutil failure into a StorageError.
func fromFileError(err failure.ClassifiedError, path string) *StorageError {
	var fileErr *fileutil.FileError
	if !errors.As(err, &fileErr) {
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseWriteFailure,
			Path:      path,
		}
	}

	cause := ErrCauseWriteFailure
	switch fileErr.Cause {
	case fileutil.ErrCauseDiskFull:
		cause = ErrCauseDiskFull
	case fileutil.ErrCausePathError:
		cause = ErrCausePathError
	}
	return &StorageError{
		Message:   fileErr.Message,
		Retryable: fileErr.Retryable,
		Cause:     cause,
		Path:      fileErr.Path,
	}
}
