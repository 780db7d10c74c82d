package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

/*
RobotsFetcher

Responsibilities:
- Fetch robots.txt per origin using net/http
- Classify HTTP failures into RobotsError

Parsing and decisions belong to Robot.
*/

// maxRobotsSize caps how much of a robots.txt body is read.
const maxRobotsSize = 500 * 1024

type RobotsFetcher struct {
	httpClient *http.Client
	userAgent  string
}

type robotsFetchResult struct {
	body       []byte
	httpStatus int
	sourceURL  string
	fetchedAt  time.Time
}

func NewRobotsFetcher(userAgent string, httpClient *http.Client) *RobotsFetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &RobotsFetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

func robotsURL(scheme, host string) string {
	return fmt.Sprintf("%s://%s/robots.txt", scheme, host)
}

// fetch returns the raw robots.txt for the origin. Any 2xx or non-429 4xx
// response is a result; the caller decides what the status means.
func (f *RobotsFetcher) fetch(ctx context.Context, scheme, host string) (robotsFetchResult, *RobotsError) {
	sourceURL := robotsURL(scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return robotsFetchResult{}, &RobotsError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCausePreFetchFailure,
		}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain,*/*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return robotsFetchResult{}, &RobotsError{
			Message:   fmt.Sprintf("failed to fetch %s: %v", sourceURL, err),
			Retryable: true,
			Cause:     ErrCauseHttpFetchFailure,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return robotsFetchResult{}, &RobotsError{
			Message:   fmt.Sprintf("rate limited (429) when fetching %s", sourceURL),
			Retryable: true,
			Cause:     ErrCauseHttpTooManyRequests,
		}
	case resp.StatusCode >= 500:
		return robotsFetchResult{}, &RobotsError{
			Message:   fmt.Sprintf("server error (%d) when fetching %s", resp.StatusCode, sourceURL),
			Retryable: true,
			Cause:     ErrCauseHttpServerError,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return robotsFetchResult{}, &RobotsError{
			Message:   fmt.Sprintf("failed to read robots.txt body: %v", err),
			Retryable: true,
			Cause:     ErrCauseHttpFetchFailure,
		}
	}

	return robotsFetchResult{
		body:       body,
		httpStatus: resp.StatusCode,
		sourceURL:  sourceURL,
		fetchedAt:  time.Now(),
	}, nil
}

func (f *RobotsFetcher) UserAgent() string {
	return f.userAgent
}
