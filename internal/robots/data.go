package robots

import (
	"net/url"
	"time"

	"github.com/temoto/robotstxt"
)

type DecisionReason string

const (
	AllowedByRobots    DecisionReason = "allowed_by_robots"
	DisallowedByRobots DecisionReason = "disallowed_by_robots"
	NoRobotsFile       DecisionReason = "no_robots_file"
	RobotsUnavailable  DecisionReason = "robots_unavailable"
	RobotsDisabled     DecisionReason = "robots_disabled"
)

type Decision struct {
	Url url.URL

	Allowed bool

	// Why this decision was made (for logging/debugging)
	Reason DecisionReason

	// Optional delay override (robots crawl-delay)
	CrawlDelay *time.Duration
}

// hostRules is what the cache keeps per origin. A nil group means
// every path is allowed.
type hostRules struct {
	group     *robotstxt.Group
	reason    DecisionReason
	fetchedAt time.Time
}
