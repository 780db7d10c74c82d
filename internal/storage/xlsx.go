package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/fileutil"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary    = "Summary"
	SheetRules      = "Rules"
	SheetViolations = "Violations"
)

var (
	summaryHeader    = []any{"URL", "Status", "Violations", "Affected nodes", "Passes", "Error"}
	rulesHeader      = []any{"Rule", "Affected nodes"}
	violationsHeader = []any{"URL", "Rule", "Impact", "Help", "Selector", "Snippet", "Help URL"}
)

// XLSXSink exports the report as a workbook for people who triage in a spreadsheet.
type XLSXSink struct {
	metadataSink metadata.MetadataSink
	outputDir    string
	fileName     string
}

func NewXLSXSink(
	metadataSink metadata.MetadataSink,
	outputDir string,
	reportFileName string,
) *XLSXSink {
	base := strings.TrimSuffix(reportFileName, filepath.Ext(reportFileName))
	return &XLSXSink{
		metadataSink: metadataSink,
		outputDir:    outputDir,
		fileName:     base + ".xlsx",
	}
}

func (s *XLSXSink) Write(ctx context.Context, r report.Report) (WriteResult, failure.ClassifiedError) {
	path := filepath.Join(s.outputDir, s.fileName)
	if err := s.write(path, r); err != nil {
		recordStorageError(s.metadataSink, "XLSXSink.Write", "xlsx", err)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactWorkbook,
		path,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrWritePath, path),
		},
	)
	return NewWriteResult(path, []string{path}), nil
}

func (s *XLSXSink) write(path string, r report.Report) failure.ClassifiedError {
	if err := fileutil.EnsureDir(s.outputDir); err != nil {
		return fromFileError(err, s.outputDir)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := buildWorkbook(f, r); err != nil {
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      path,
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      path,
		}
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fromFileError(err, path)
	}
	return nil
}

func buildWorkbook(f *excelize.File, r report.Report) error {
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return err
	}
	for _, name := range []string{SheetRules, SheetViolations} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	var summaryRows [][]any
	var violationRows [][]any
	for _, pr := range r.URLResults {
		summaryRows = append(summaryRows, []any{
			pr.URL,
			string(pr.Status),
			pr.Summary.TotalViolations,
			pr.Summary.TotalNodeViolations,
			pr.Summary.TotalPasses,
			pr.Error,
		})
		for _, rule := range pr.Details.Violations {
			impact := ""
			if rule.Impact != nil {
				impact = *rule.Impact
			}
			for _, node := range rule.Nodes {
				violationRows = append(violationRows, []any{
					pr.URL,
					rule.ID,
					impact,
					rule.Help,
					strings.Join(node.Target, ", "),
					node.HTML,
					rule.HelpURL,
				})
			}
		}
	}

	ruleIDs := make([]string, 0, len(r.ViolationCounts))
	for id := range r.ViolationCounts {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Slice(ruleIDs, func(i, j int) bool {
		ci, cj := r.ViolationCounts[ruleIDs[i]], r.ViolationCounts[ruleIDs[j]]
		if ci != cj {
			return ci > cj
		}
		return ruleIDs[i] < ruleIDs[j]
	})
	ruleRows := make([][]any, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		ruleRows = append(ruleRows, []any{id, r.ViolationCounts[id]})
	}

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{SheetSummary, summaryHeader, summaryRows},
		{SheetRules, rulesHeader, ruleRows},
		{SheetViolations, violationsHeader, violationRows},
	}
	for _, sheet := range sheets {
		if err := writeSheet(f, sheet.name, sheet.header, sheet.rows, headerStyle); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet.name, err)
		}
	}
	return nil
}

func writeSheet(f *excelize.File, name string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return err
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastHeader, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
