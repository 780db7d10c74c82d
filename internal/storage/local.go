package storage

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/fileutil"
	"github.com/rohmanhakim/a11y-crawler/pkg/hashutil"
)

const (
	pagesDir       = "pages"
	pageHashLength = 12
)

type LocalOptions struct {
	OutputDir      string
	ReportFileName string
	PerPageResults bool
	HashAlgo       hashutil.HashAlgo
}

// LocalSink writes <outputDir>/<reportFileName> and, optionally, one file
// per page named <outputDir>/pages/<hash of url>.json.
type LocalSink struct {
	metadataSink metadata.MetadataSink
	opts         LocalOptions
}

func NewLocalSink(
	metadataSink metadata.MetadataSink,
	opts LocalOptions,
) *LocalSink {
	return &LocalSink{
		metadataSink: metadataSink,
		opts:         opts,
	}
}

func (s *LocalSink) Write(ctx context.Context, r report.Report) (WriteResult, failure.ClassifiedError) {
	writeResult, err := s.write(r)
	if err != nil {
		recordStorageError(s.metadataSink, "LocalSink.Write", "local", err)
		return WriteResult{}, err
	}
	for i, path := range writeResult.Artifacts() {
		kind := metadata.ArtifactPage
		if i == 0 {
			kind = metadata.ArtifactReport
		}
		s.metadataSink.RecordArtifact(
			kind,
			path,
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrWritePath, path),
			},
		)
	}
	return writeResult, nil
}

func (s *LocalSink) write(r report.Report) (WriteResult, failure.ClassifiedError) {
	if err := fileutil.EnsureDir(s.opts.OutputDir); err != nil {
		return WriteResult{}, fromFileError(err, s.opts.OutputDir)
	}

	reportPath := filepath.Join(s.opts.OutputDir, s.opts.ReportFileName)
	if err := writeJSON(reportPath, r); err != nil {
		return WriteResult{}, err
	}
	artifacts := []string{reportPath}

	if !s.opts.PerPageResults {
		return NewWriteResult(reportPath, artifacts), nil
	}

	if err := fileutil.EnsureDir(s.opts.OutputDir, pagesDir); err != nil {
		return WriteResult{}, fromFileError(err, filepath.Join(s.opts.OutputDir, pagesDir))
	}
	for _, pr := range r.URLResults {
		urlHash, err := hashutil.ShortHash([]byte(pr.URL), s.opts.HashAlgo, pageHashLength)
		if err != nil {
			return WriteResult{}, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseHashComputationFailed,
			}
		}
		pagePath := filepath.Join(s.opts.OutputDir, pagesDir, urlHash+".json")
		if err := writeJSON(pagePath, pr); err != nil {
			return WriteResult{}, err
		}
		artifacts = append(artifacts, pagePath)
	}

	return NewWriteResult(reportPath, artifacts), nil
}

// writeJSON writes v with 2-space indentation atomically.
func writeJSON(path string, v any) failure.ClassifiedError {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      path,
		}
	}
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return fromFileError(err, path)
	}
	return nil
}
