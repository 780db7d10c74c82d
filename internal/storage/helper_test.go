package storage_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps artifacts and error causes and ignores everything else.
type recordingSink struct {
	metadata.NoopSink
	artifacts []metadata.ArtifactKind
	paths     []string
	causes    []metadata.ErrorCause
}

func (s *recordingSink) RecordArtifact(kind metadata.ArtifactKind, path string, attrs []metadata.Attribute) {
	s.artifacts = append(s.artifacts, kind)
	s.paths = append(s.paths, path)
}

func (s *recordingSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause metadata.ErrorCause,
	details string,
	attrs []metadata.Attribute,
) {
	s.causes = append(s.causes, cause)
}

// stubSink returns a fixed outcome and counts calls.
type stubSink struct {
	result storage.WriteResult
	err    failure.ClassifiedError
	calls  int
}

func (s *stubSink) Write(ctx context.Context, r report.Report) (storage.WriteResult, failure.ClassifiedError) {
	s.calls++
	return s.result, s.err
}

func mustURL(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return *u
}

func strPtr(s string) *string {
	return &s
}

// sampleReport builds a two-page report: one audited page with a single
// violation on two nodes and one page that failed to load.
func sampleReport(t *testing.T) report.Report {
	t.Helper()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	base := mustURL(t, "https://example.test/")
	broken := mustURL(t, "https://example.test/broken")

	ok := report.NewPageResult(base, at, report.RawResults{
		Violations: []report.Rule{
			{
				ID:      "image-alt",
				Impact:  strPtr("critical"),
				Tags:    []string{"wcag2a"},
				Help:    "Images must have alternate text",
				HelpURL: "https://dequeuniversity.com/rules/axe/4.10/image-alt",
				Nodes: []report.Node{
					{HTML: `<img src="a.png">`, Target: report.Target{"img.a"}},
					{HTML: `<img src="b.png">`, Target: report.Target{"img.b"}},
				},
			},
		},
		Passes: []report.Rule{
			{ID: "html-has-lang", Nodes: []report.Node{{HTML: "<html>", Target: report.Target{"html"}}}},
		},
	})
	failed := report.NewFailedPageResult(broken, at, report.StatusPageLoadError, "navigation timed out")

	agg := report.NewAggregator(base)
	agg.MarkStarted(at)
	agg.Record(ok)
	agg.Record(failed)
	return agg.Finalize([]url.URL{base, broken})
}
