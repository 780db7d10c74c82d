package fetcher

import (
	"net/url"
	"time"
)

// HTTP boundary

type FetchParam struct {
	fetchUrl  url.URL
	userAgent string
	username  string
	password  string
}

func NewFetchParam(fetchUrl url.URL, userAgent string) FetchParam {
	return FetchParam{
		fetchUrl:  fetchUrl,
		userAgent: userAgent,
	}
}

// WithBasicAuth returns a copy of the param carrying HTTP Basic credentials.
// An empty username leaves the request unauthenticated.
func (p FetchParam) WithBasicAuth(username, password string) FetchParam {
	p.username = username
	p.password = password
	return p
}

func (p FetchParam) URL() url.URL {
	return p.fetchUrl
}

// ClientOptions configures the transport shared by every fetch.
type ClientOptions struct {
	Timeout            time.Duration
	ProxyURL           *url.URL
	InsecureSkipVerify bool
}

type FetchResult struct {
	url  url.URL
	body []byte
	meta ResponseMeta
}

// URL is the address the body was finally served from, after redirects.
func (f *FetchResult) URL() url.URL {
	return f.url
}

// Body is the response decoded to UTF-8.
func (f *FetchResult) Body() []byte {
	return f.body
}

func (f *FetchResult) Code() int {
	return f.meta.statusCode
}

func (f *FetchResult) SizeByte() uint64 {
	return f.meta.transferredSizeByte
}

func (f *FetchResult) Headers() map[string]string {
	return f.meta.responseHeaders
}

type ResponseMeta struct {
	statusCode          int
	transferredSizeByte uint64
	responseHeaders     map[string]string
}

// NewFetchResultForTest creates a FetchResult for testing purposes.
// This allows test packages to construct FetchResult values without
// accessing unexported fields directly.
func NewFetchResultForTest(
	url url.URL,
	body []byte,
	statusCode int,
	responseHeaders map[string]string,
) FetchResult {
	return FetchResult{
		url:  url,
		body: body,
		meta: ResponseMeta{
			statusCode:          statusCode,
			transferredSizeByte: uint64(len(body)),
			responseHeaders:     responseHeaders,
		},
	}
}
