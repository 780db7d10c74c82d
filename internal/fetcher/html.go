package fetcher

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/retry"
	"golang.org/x/net/html/charset"
)

/*
Responsibilities

- Perform HTTP requests for link discovery
- Apply headers, basic auth, proxy and timeouts
- Handle redirects safely
- Classify responses
- Decode the body to UTF-8

Fetch Semantics

- Only successful HTML responses are processed
- Non-HTML content is discarded
- Redirect chains are bounded
- All responses are logged with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

const maxRedirects = 10

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
}

func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
	opts ClientOptions,
) HtmlFetcher {
	return HtmlFetcher{
		metadataSink: metadataSink,
		httpClient:   NewHTTPClient(opts),
	}
}

// NewHTTPClient builds the client shared by every outbound request of a
// crawl, so robots.txt and the axe-core download see the same proxy and
// TLS settings as page fetches.
func NewHTTPClient(opts ClientOptions) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != nil {
		transport.Proxy = http.ProxyURL(opts.ProxyURL)
	}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return errRedirectLimit
			}
			return nil
		},
	}
}

var errRedirectLimit = errors.New("stopped after too many redirects")

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchParam)
	}
	outcome := retry.Retry(ctx, retryParam, fetchTask)

	duration := time.Since(startTime)

	var statusCode int
	var contentType string
	if outcome.IsSuccess() {
		result := outcome.Value()
		statusCode = result.Code()
		contentType = result.Headers()["Content-Type"]
	} else {
		var fetchErr *FetchError
		if errors.As(outcome.Err(), &fetchErr) {
			statusCode = fetchErr.StatusCode
		}
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		contentType,
		outcome.Attempts()-1,
	)

	if err := outcome.Err(); err != nil {
		h.recordError(callerMethod, fetchParam.fetchUrl, outcome.Attempts(), err)
		return FetchResult{}, err
	}

	return outcome.Value(), nil
}

func (h *HtmlFetcher) recordError(callerMethod string, fetchUrl url.URL, attempts int, err failure.ClassifiedError) {
	cause := metadata.CauseUnknown
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		cause = mapFetchErrorToMetadataCause(fetchError)
	}

	h.metadataSink.RecordError(
		time.Now(),
		"fetcher",
		callerMethod,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			metadata.NewAttr(metadata.AttrAttempts, strconv.Itoa(attempts)),
		},
	)
}

func (h *HtmlFetcher) performFetch(ctx context.Context, fetchParam FetchParam) (FetchResult, failure.ClassifiedError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchParam.fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	for key, value := range requestHeaders(fetchParam.userAgent) {
		req.Header.Set(key, value)
	}
	if fetchParam.username != "" {
		req.SetBasicAuth(fetchParam.username, fetchParam.password)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return FetchResult{}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if statusErr := classifyStatus(resp.StatusCode); statusErr != nil {
		return FetchResult{}, statusErr
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContent(contentType) {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("non-HTML content type: %s", contentType),
			Retryable:  false,
			Cause:      ErrCauseContentTypeInvalid,
			StatusCode: resp.StatusCode,
		}
	}

	// Decode to UTF-8 using the header charset, a <meta> declaration or sniffing
	decoded, err := charset.NewReader(resp.Body, contentType)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("unsupported charset: %v", err),
			Retryable:  false,
			Cause:      ErrCauseContentTypeInvalid,
			StatusCode: resp.StatusCode,
		}
	}
	body, err := io.ReadAll(decoded)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:    fmt.Sprintf("failed to read response body: %v", err),
			Retryable:  true,
			Cause:      ErrCauseReadResponseBodyError,
			StatusCode: resp.StatusCode,
		}
	}

	responseHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			responseHeaders[key] = values[0]
		}
	}

	finalURL := fetchParam.fetchUrl
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = *resp.Request.URL
	}

	return FetchResult{
		url:  finalURL,
		body: body,
		meta: ResponseMeta{
			statusCode:          resp.StatusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}, nil
}

func classifyTransportError(err error) *FetchError {
	if errors.Is(err, errRedirectLimit) {
		return &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseRedirectLimitExceeded,
		}
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordHeaderErr tls.RecordHeaderError
	if errors.As(err, &certErr) ||
		errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) ||
		errors.As(err, &recordHeaderErr) {
		return &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseTLSFailure,
		}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseTimeout,
		}
	}

	if errors.Is(err, context.Canceled) {
		return &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseNetworkFailure,
		}
	}

	// Other network/transport errors are retryable
	return &FetchError{
		Message:   fmt.Sprintf("request failed: %v", err),
		Retryable: true,
		Cause:     ErrCauseNetworkFailure,
	}
}

func classifyStatus(statusCode int) *FetchError {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil

	case statusCode >= 500:
		// Server errors (5xx) are retryable
		return &FetchError{
			Message:    fmt.Sprintf("server error: %d", statusCode),
			Retryable:  true,
			Cause:      ErrCauseRequest5xx,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusTooManyRequests:
		return &FetchError{
			Message:    "rate limited (429)",
			Retryable:  true,
			Cause:      ErrCauseRequestTooMany,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusUnauthorized:
		return &FetchError{
			Message:    "authentication required (401)",
			Retryable:  false,
			Cause:      ErrCauseRequestUnauthorized,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusForbidden:
		return &FetchError{
			Message:    "access forbidden (403)",
			Retryable:  false,
			Cause:      ErrCauseRequestPageForbidden,
			StatusCode: statusCode,
		}

	case statusCode == http.StatusNotFound:
		return &FetchError{
			Message:    "not found (404)",
			Retryable:  false,
			Cause:      ErrCauseRequestNotFound,
			StatusCode: statusCode,
		}

	case statusCode >= 400:
		return &FetchError{
			Message:    fmt.Sprintf("client error: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRequest4xx,
			StatusCode: statusCode,
		}

	default:
		// 1xx and unfollowed 3xx
		return &FetchError{
			Message:    fmt.Sprintf("unexpected status: %d", statusCode),
			Retryable:  false,
			Cause:      ErrCauseRedirectLimitExceeded,
			StatusCode: statusCode,
		}
	}
}

func isHTMLContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

func requestHeaders(userAgent string) map[string]string {
	return map[string]string{
		"User-Agent":      userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "de-DE,de;q=0.9,en;q=0.8",
	}
}
