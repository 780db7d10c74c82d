package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	countStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	plainStyle   = lipgloss.NewStyle()
)

// topRuleLimit caps the rule table in the console summary.
const topRuleLimit = 10

// RenderSummary produces a Lip Gloss styled console summary of a finished crawl.
func RenderSummary(r Report, location string) string {
	var builder strings.Builder

	builder.WriteString(titleStyle.Render("Crawl and audit finished"))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("Tested URLs:      %d\n", r.TotalURLs))
	builder.WriteString(fmt.Sprintf("Pages audited:    %d\n", r.Statistics.PagesAttempted))
	builder.WriteString(fmt.Sprintf("Violations:       %d\n", r.Statistics.Violations))
	builder.WriteString(fmt.Sprintf("Affected nodes:   %d\n", r.Statistics.NodeViolations))
	builder.WriteString(fmt.Sprintf("Passed checks:    %d\n", r.Statistics.Passes))

	if failed := r.Statistics.PageLoadErrors + r.Statistics.AuditErrors; failed > 0 {
		builder.WriteString(warnStyle.Render(fmt.Sprintf(
			"%d pages could not be audited (%d page load errors, %d audit errors)",
			failed,
			r.Statistics.PageLoadErrors,
			r.Statistics.AuditErrors,
		)))
		builder.WriteString("\n")
	}

	if len(r.ViolationCounts) == 0 {
		builder.WriteString(successStyle.Render("No violations found!"))
		builder.WriteString("\n")
	} else {
		builder.WriteString("\n")
		builder.WriteString(renderRuleTable(r.ViolationCounts))
		builder.WriteString("\n")
	}

	if location != "" {
		builder.WriteString(dimStyle.Render(fmt.Sprintf("All results were saved to %q", location)))
		builder.WriteString("\n")
	}

	return builder.String()
}

// PrintSummary writes RenderSummary to w.
func PrintSummary(w io.Writer, r Report, location string) error {
	_, err := io.WriteString(w, RenderSummary(r, location))
	return err
}

type ruleCount struct {
	id    string
	nodes int
}

// topRules orders rules by affected nodes, then by id, and keeps the first limit.
func topRules(counts map[string]int, limit int) []ruleCount {
	rules := make([]ruleCount, 0, len(counts))
	for id, nodes := range counts {
		rules = append(rules, ruleCount{id: id, nodes: nodes})
	}
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].nodes != rules[j].nodes {
			return rules[i].nodes > rules[j].nodes
		}
		return rules[i].id < rules[j].id
	})
	if len(rules) > limit {
		rules = rules[:limit]
	}
	return rules
}

func renderRuleTable(counts map[string]int) string {
	rules := topRules(counts, topRuleLimit)
	rows := make([][]string, 0, len(rules))
	for _, rule := range rules {
		rows = append(rows, []string{rule.id, strconv.Itoa(rule.nodes)})
	}

	ruleTable := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("Rule", "Affected nodes").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return countStyle
			}
			return plainStyle
		}).
		Rows(rows...)

	return ruleTable.Render()
}
