package report_test

import (
	"bytes"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSummary(t *testing.T) {
	agg := report.NewAggregator(mustURL(t, "https://example.test/"))
	agg.Record(report.NewPageResult(mustURL(t, "https://example.test/"), time.Now(), twoViolationResults()))
	agg.Record(report.NewFailedPageResult(mustURL(t, "https://example.test/x"), time.Now(), report.StatusPageLoadError, "boom"))
	r := agg.Finalize([]url.URL{mustURL(t, "https://example.test/"), mustURL(t, "https://example.test/x")})

	out := report.RenderSummary(r, "accessibility-results/accessibility-results.json")

	assert.Contains(t, out, "Tested URLs:      2")
	assert.Contains(t, out, "Violations:       2")
	assert.Contains(t, out, "Affected nodes:   4")
	assert.Contains(t, out, "image-alt")
	assert.Contains(t, out, "color-contrast")
	assert.Contains(t, out, "1 pages could not be audited")
	assert.Contains(t, out, "accessibility-results/accessibility-results.json")
	assert.Less(t, strings.Index(out, "image-alt"), strings.Index(out, "color-contrast"), "rules ordered by affected nodes")
}

func TestRenderSummary_NoViolations(t *testing.T) {
	agg := report.NewAggregator(mustURL(t, "https://example.test/"))
	agg.Record(report.NewPageResult(mustURL(t, "https://example.test/"), time.Now(), report.RawResults{}))

	out := report.RenderSummary(agg.Finalize(nil), "")
	assert.Contains(t, out, "No violations found!")
	assert.NotContains(t, out, "saved to")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestPrintSummary(t *testing.T) {
	r := report.NewAggregator(mustURL(t, "https://example.test/")).Finalize(nil)

	var buf bytes.Buffer
	require.NoError(t, report.PrintSummary(&buf, r, "out.json"))
	assert.Equal(t, report.RenderSummary(r, "out.json"), buf.String())

	assert.Error(t, report.PrintSummary(failingWriter{}, r, "out.json"))
}
