package scheduler

import (
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
)

// CrawlingExecution is the outcome of a completed crawl.
type CrawlingExecution struct {
	Report      report.Report
	WriteResult storage.WriteResult
}
