package report

import (
	"net/url"
	"strings"
	"time"
)

// NewPageResult turns raw oracle output into a PageResult.
// It is pure: raw is never modified and the result shares no memory with it.
func NewPageResult(pageURL url.URL, observedAt time.Time, raw RawResults) PageResult {
	result := PageResult{
		URL:       pageURL.String(),
		Timestamp: observedAt.UTC(),
		Status:    StatusOK,
		Summary: PageSummary{
			ViolationCounts: map[string]int{},
			PassCounts:      map[string]int{},
		},
		Details: PageDetails{
			Violations: make([]Rule, 0, len(raw.Violations)),
			Passes:     make([]Rule, 0, len(raw.Passes)),
		},
	}

	for _, violation := range raw.Violations {
		rule := cloneRule(violation, true)
		result.Summary.TotalViolations++
		result.Summary.TotalNodeViolations += len(rule.Nodes)
		result.Summary.ViolationCounts[rule.ID] += len(rule.Nodes)
		result.Details.Violations = append(result.Details.Violations, rule)
	}

	for _, pass := range raw.Passes {
		rule := cloneRule(pass, false)
		result.Summary.TotalPasses++
		result.Summary.PassCounts[rule.ID] += len(rule.Nodes)
		result.Details.Passes = append(result.Details.Passes, rule)
	}

	return result
}

// NewFailedPageResult records a page that could not be audited. All counts are zero.
func NewFailedPageResult(pageURL url.URL, observedAt time.Time, status PageStatus, message string) PageResult {
	return PageResult{
		URL:       pageURL.String(),
		Timestamp: observedAt.UTC(),
		Status:    status,
		Error:     message,
		Summary: PageSummary{
			ViolationCounts: map[string]int{},
			PassCounts:      map[string]int{},
		},
		Details: PageDetails{
			Violations: []Rule{},
			Passes:     []Rule{},
		},
	}
}

func newLocation(node Node) *Location {
	return &Location{
		Selector: cloneStrings(node.Target),
		Snippet:  node.HTML,
		XPath:    strings.Join(node.Target, " > "),
	}
}

func cloneRule(rule Rule, withLocation bool) Rule {
	cloned := rule
	cloned.Impact = cloneStringPtr(rule.Impact)
	cloned.Tags = cloneStrings(rule.Tags)
	cloned.Nodes = make([]Node, len(rule.Nodes))
	for i, node := range rule.Nodes {
		cloned.Nodes[i] = cloneNode(node)
		if withLocation {
			cloned.Nodes[i].Location = newLocation(node)
		}
	}
	return cloned
}

func cloneNode(node Node) Node {
	cloned := node
	cloned.Target = cloneStrings(node.Target)
	cloned.Impact = cloneStringPtr(node.Impact)
	cloned.Any = cloneBytes(node.Any)
	cloned.All = cloneBytes(node.All)
	cloned.None = cloneBytes(node.None)
	if node.Location != nil {
		location := *node.Location
		location.Selector = cloneStrings(node.Location.Selector)
		cloned.Location = &location
	}
	return cloned
}

func clonePageResult(pr PageResult) PageResult {
	cloned := pr
	cloned.Summary.ViolationCounts = cloneCounts(pr.Summary.ViolationCounts)
	cloned.Summary.PassCounts = cloneCounts(pr.Summary.PassCounts)
	cloned.Details.Violations = make([]Rule, len(pr.Details.Violations))
	for i, rule := range pr.Details.Violations {
		cloned.Details.Violations[i] = cloneRule(rule, false)
	}
	cloned.Details.Passes = make([]Rule, len(pr.Details.Passes))
	for i, rule := range pr.Details.Passes {
		cloned.Details.Passes[i] = cloneRule(rule, false)
	}
	return cloned
}

func cloneCounts(counts map[string]int) map[string]int {
	cloned := make(map[string]int, len(counts))
	for k, v := range counts {
		cloned[k] = v
	}
	return cloned
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneStringPtr(in *string) *string {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneBytes(in []byte) []byte {
	if in == nil {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}
