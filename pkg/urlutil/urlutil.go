package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizePolicy decides which spellings of a URL are considered the same page.
// It directly determines how many "duplicate" pages get audited.
type NormalizePolicy string

const (
	// PolicyExact keeps the resolved URL as-is: case-sensitive, fragment and
	// trailing slash preserved.
	PolicyExact NormalizePolicy = "exact"
	// PolicyStripFragment additionally removes the "#fragment" part.
	PolicyStripFragment NormalizePolicy = "strip-fragment"
)

func ParsePolicy(raw string) (NormalizePolicy, error) {
	switch NormalizePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyExact:
		return PolicyExact, nil
	case PolicyStripFragment:
		return PolicyStripFragment, nil
	default:
		return "", fmt.Errorf("unknown normalize policy %q", raw)
	}
}

// Normalize applies policy to an already absolute URL.
//
// Properties:
//   - Pure: no state, no memory
//   - Idempotent: Normalize(Normalize(u)) == Normalize(u)
func Normalize(sourceURL url.URL, policy NormalizePolicy) url.URL {
	normalized := sourceURL
	if policy == PolicyStripFragment {
		normalized.Fragment = ""
		normalized.RawFragment = ""
	}
	return normalized
}

// Key is the string identity of u under policy, used for visited-set membership.
func Key(u url.URL, policy NormalizePolicy) string {
	normalized := Normalize(u, policy)
	return normalized.String()
}

// Resolve parses href and resolves it against base.
// Surrounding whitespace, common in hand-written markup, is ignored.
func Resolve(base url.URL, href string) (url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return url.URL{}, fmt.Errorf("parse href %q: %w", href, err)
	}
	return *base.ResolveReference(ref), nil
}

// InScope reports whether the string form of u starts with the scope prefix.
func InScope(u url.URL, scopePrefix string) bool {
	return strings.HasPrefix(u.String(), scopePrefix)
}

// WithCredentials returns a copy of u carrying username and password in its authority.
func WithCredentials(u url.URL, username, password string) url.URL {
	withAuth := u
	if username == "" {
		return withAuth
	}
	withAuth.User = url.UserPassword(username, password)
	return withAuth
}

// Redacted renders u with any password replaced, for logs.
func Redacted(u url.URL) string {
	return u.Redacted()
}
