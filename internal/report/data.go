package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PageStatus tells whether a page's counts come from a real audit.
type PageStatus string

const (
	StatusOK            PageStatus = "ok"
	StatusPageLoadError PageStatus = "page-load-error"
	StatusAuditError    PageStatus = "audit-error"
)

// Target is an axe node target. Each entry is one frame level: a single
// entry for elements in the top document, one more per nested iframe.
// Within a frame level, an element inside shadow roots arrives as a nested
// selector list and is flattened with the " >>> " piercing combinator, so
// shadow paths never cross frame boundaries.
type Target []string

func (t *Target) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("target: %w", err)
	}

	out := make(Target, 0, len(parts))
	for _, part := range parts {
		var selector string
		if err := json.Unmarshal(part, &selector); err == nil {
			out = append(out, selector)
			continue
		}
		var shadowPath []string
		if err := json.Unmarshal(part, &shadowPath); err != nil {
			return fmt.Errorf("target element: %w", err)
		}
		out = append(out, strings.Join(shadowPath, " >>> "))
	}
	*t = out
	return nil
}

// Location is derived from a node so reports can point at the element directly.
type Location struct {
	Selector Target `json:"selector"`
	Snippet  string `json:"snippet"`
	XPath    string `json:"xpath"`
}

// Node is one DOM element a rule was evaluated on.
// Check details (any/all/none) pass through untouched.
type Node struct {
	HTML           string          `json:"html"`
	Target         Target          `json:"target"`
	Impact         *string         `json:"impact"`
	FailureSummary string          `json:"failureSummary,omitempty"`
	Any            json.RawMessage `json:"any,omitempty"`
	All            json.RawMessage `json:"all,omitempty"`
	None           json.RawMessage `json:"none,omitempty"`
	Location       *Location       `json:"location,omitempty"`
}

// Rule is one axe rule outcome, used for both violations and passes.
// Rule metadata is passed through unmodified.
type Rule struct {
	ID          string   `json:"id"`
	Impact      *string  `json:"impact"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
	Help        string   `json:"help"`
	HelpURL     string   `json:"helpUrl"`
	Nodes       []Node   `json:"nodes"`
}

// RawResults is the subset of axe.run output the crawler consumes.
type RawResults struct {
	Violations []Rule `json:"violations"`
	Passes     []Rule `json:"passes"`
}

type PageSummary struct {
	TotalViolations     int            `json:"totalViolations"`
	TotalNodeViolations int            `json:"totalNodeViolations"`
	ViolationCounts     map[string]int `json:"violationCounts"`
	TotalPasses         int            `json:"totalPasses"`
	PassCounts          map[string]int `json:"passCounts"`
}

type PageDetails struct {
	Violations []Rule `json:"violations"`
	Passes     []Rule `json:"passes"`
}

// PageResult is the normalized audit outcome of one URL.
//
// Invariants:
//   - Summary.TotalViolations == len(Details.Violations)
//   - Summary.TotalNodeViolations == sum of len(v.Nodes) == sum of ViolationCounts
//   - the same holds for passes
//   - a non-ok Status always carries zero counts
type PageResult struct {
	URL       string      `json:"url"`
	Timestamp time.Time   `json:"timestamp"`
	Status    PageStatus  `json:"status"`
	Error     string      `json:"error,omitempty"`
	Summary   PageSummary `json:"summary"`
	Details   PageDetails `json:"details"`
}

type Statistics struct {
	Violations     int `json:"violations"`
	NodeViolations int `json:"nodeViolations"`
	Passes         int `json:"passes"`
	PagesAttempted int `json:"pagesAttempted"`
	PageLoadErrors int `json:"pageLoadErrors"`
	AuditErrors    int `json:"auditErrors"`
}

// Report is the crawl-level aggregate handed to storage exactly once.
type Report struct {
	Timestamp       time.Time      `json:"timestamp"`
	BaseURL         string         `json:"baseUrl"`
	TotalURLs       int            `json:"totalUrls"`
	Statistics      Statistics     `json:"statistics"`
	ViolationCounts map[string]int `json:"violationCounts"`
	CrawledURLs     []string       `json:"crawledUrls"`
	URLResults      []PageResult   `json:"urlResults"`
}
