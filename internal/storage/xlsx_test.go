package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXSink_WritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	recorder := &recordingSink{}
	sink := storage.NewXLSXSink(recorder, dir, "accessibility-results.json")

	result, err := sink.Write(context.Background(), sampleReport(t))
	require.Nil(t, err)

	path := filepath.Join(dir, "accessibility-results.xlsx")
	assert.Equal(t, path, result.Location())
	assert.Equal(t, []metadata.ArtifactKind{metadata.ArtifactWorkbook}, recorder.artifacts)

	f, openErr := excelize.OpenFile(path)
	require.NoError(t, openErr)
	defer f.Close()

	assert.Equal(t,
		[]string{storage.SheetSummary, storage.SheetRules, storage.SheetViolations},
		f.GetSheetList(),
	)

	summary, rowsErr := f.GetRows(storage.SheetSummary)
	require.NoError(t, rowsErr)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"URL", "Status", "Violations", "Affected nodes", "Passes", "Error"}, summary[0])
	require.GreaterOrEqual(t, len(summary[1]), 5)
	assert.Equal(t, []string{"https://example.test/", "ok", "1", "2", "1"}, summary[1][:5])
	assert.Equal(t, []string{"https://example.test/broken", "page-load-error", "0", "0", "0", "navigation timed out"}, summary[2])

	rules, rowsErr := f.GetRows(storage.SheetRules)
	require.NoError(t, rowsErr)
	assert.Equal(t, [][]string{{"Rule", "Affected nodes"}, {"image-alt", "2"}}, rules)

	violations, rowsErr := f.GetRows(storage.SheetViolations)
	require.NoError(t, rowsErr)
	require.Len(t, violations, 3)
	assert.Equal(t, "image-alt", violations[1][1])
	assert.Equal(t, "critical", violations[1][2])
	assert.Equal(t, "img.b", violations[2][4])
}

func TestXLSXSink_UnwritableDirectory(t *testing.T) {
	recorder := &recordingSink{}
	sink := storage.NewXLSXSink(recorder, "/dev/null/out", "report.json")

	_, err := sink.Write(context.Background(), sampleReport(t))
	require.NotNil(t, err)

	var storageErr *storage.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, storage.ErrCausePathError, storageErr.Cause)
	assert.Equal(t, []metadata.ErrorCause{metadata.CauseStorageFailure}, recorder.causes)
}
