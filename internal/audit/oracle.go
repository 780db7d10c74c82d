package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/rohmanhakim/a11y-crawler/internal/browser"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
)

// Profile selects which rules the engine runs.
type Profile struct {
	Tags     []string
	Reporter string
}

func DefaultProfile() Profile {
	return Profile{
		Tags:     []string{"wcag2a", "wcag2aa", "bitv"},
		Reporter: "v2",
	}
}

// Oracle evaluates the loaded page of session. Its rules are opaque to the crawler.
type Oracle interface {
	Evaluate(ctx context.Context, session browser.Session, profile Profile) (report.RawResults, error)
}

// AxeOracle injects axe-core into the page and runs it.
type AxeOracle struct {
	script string
}

func NewAxeOracle(script string) *AxeOracle {
	return &AxeOracle{script: script}
}

type runOnly struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

type axeRunOptions struct {
	RunOnly  runOnly `json:"runOnly"`
	Reporter string  `json:"reporter,omitempty"`
}

func (a *AxeOracle) Evaluate(ctx context.Context, session browser.Session, profile Profile) (report.RawResults, error) {
	var injected bool
	injectScript := a.script + "\n;typeof window.axe === 'object';"
	if err := session.Evaluate(ctx, injectScript, &injected, false); err != nil {
		return report.RawResults{}, &AuditOracleError{
			Message: err.Error(),
			Cause:   ErrCauseEngineInjection,
		}
	}
	if !injected {
		return report.RawResults{}, &AuditOracleError{
			Message: "axe is not defined after injection",
			Cause:   ErrCauseEngineInjection,
		}
	}

	runScript, err := buildRunScript(profile)
	if err != nil {
		return report.RawResults{}, &AuditOracleError{
			Message: err.Error(),
			Cause:   ErrCauseEngineRun,
		}
	}

	// Stringified in the page so circular references in axe output never reach the driver
	var payload string
	if err := session.Evaluate(ctx, runScript, &payload, true); err != nil {
		return report.RawResults{}, &AuditOracleError{
			Message: err.Error(),
			Cause:   ErrCauseEngineRun,
		}
	}

	var raw report.RawResults
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return report.RawResults{}, &AuditOracleError{
			Message: err.Error(),
			Cause:   ErrCauseMalformedResult,
		}
	}
	return raw, nil
}

func buildRunScript(profile Profile) (string, error) {
	options, err := json.Marshal(axeRunOptions{
		RunOnly: runOnly{
			Type:   "tag",
			Values: profile.Tags,
		},
		Reporter: profile.Reporter,
	})
	if err != nil {
		return "", fmt.Errorf("encode axe options: %w", err)
	}
	return fmt.Sprintf(
		"axe.run(document, %s).then(r => JSON.stringify({violations: r.violations, passes: r.passes}))",
		options,
	), nil
}

// LoadAxeSource reads the axe-core script from a local file or an http(s) URL.
func LoadAxeSource(ctx context.Context, source string, client *http.Client) (string, error) {
	parsed, err := url.Parse(source)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		content, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("read axe source %q: %w", source, err)
		}
		return string(content), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", fmt.Errorf("build axe source request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download axe source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download axe source: unexpected status %d", resp.StatusCode)
	}
	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read axe source body: %w", err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return "", fmt.Errorf("axe source %q is empty", source)
	}
	return string(content), nil
}
