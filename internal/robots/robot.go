package robots

import (
	"context"
	"net/url"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/robots/cache"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/temoto/robotstxt"
)

/*
Responsibilities

- Fetch robots.txt per origin
- Cache rules for crawl duration
- Enforce allow/disallow rules before a link is offered to the frontier

Robots checks occur before a URL enters the frontier.
Failures fail open: an origin whose robots.txt cannot be read is allow-all.
*/

type Decider interface {
	Decide(ctx context.Context, u url.URL) (Decision, failure.ClassifiedError)
}

type Robot struct {
	metadataSink metadata.MetadataSink
	fetcher      *RobotsFetcher
	cache        cache.Cache[hostRules]
}

func NewRobot(
	metadataSink metadata.MetadataSink,
	fetcher *RobotsFetcher,
) *Robot {
	return &Robot{
		metadataSink: metadataSink,
		fetcher:      fetcher,
		cache:        cache.NewMemoryCache[hostRules](),
	}
}

func (r *Robot) Decide(ctx context.Context, u url.URL) (Decision, failure.ClassifiedError) {
	key := u.Scheme + "://" + u.Host
	rules, found := r.cache.Get(key)
	var robotsErr *RobotsError
	if !found {
		rules, robotsErr = r.load(ctx, u.Scheme, u.Host)
		r.cache.Put(key, rules)
	}

	decision := decide(u, rules)
	if robotsErr != nil {
		r.metadataSink.RecordError(
			time.Now(),
			"robots",
			"Robot.Decide",
			mapRobotsErrorToMetadataCause(robotsErr),
			robotsErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, u.String()),
				metadata.NewAttr(metadata.AttrHost, u.Host),
			},
		)
		return decision, robotsErr
	}
	return decision, nil
}

func (r *Robot) load(ctx context.Context, scheme, host string) (hostRules, *RobotsError) {
	result, err := r.fetcher.fetch(ctx, scheme, host)
	if err != nil {
		return hostRules{reason: RobotsUnavailable, fetchedAt: time.Now()}, err
	}

	if result.httpStatus < 200 || result.httpStatus >= 300 {
		return hostRules{reason: NoRobotsFile, fetchedAt: result.fetchedAt}, nil
	}

	data, parseErr := robotstxt.FromStatusAndBytes(result.httpStatus, result.body)
	if parseErr != nil {
		return hostRules{reason: RobotsUnavailable, fetchedAt: result.fetchedAt}, &RobotsError{
			Message:   parseErr.Error(),
			Retryable: false,
			Cause:     ErrCauseParseError,
		}
	}

	return hostRules{
		group:     data.FindGroup(r.fetcher.UserAgent()),
		reason:    AllowedByRobots,
		fetchedAt: result.fetchedAt,
	}, nil
}

func decide(u url.URL, rules hostRules) Decision {
	if rules.group == nil {
		return Decision{Url: u, Allowed: true, Reason: rules.reason}
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	decision := Decision{
		Url:     u,
		Allowed: rules.group.Test(path),
		Reason:  AllowedByRobots,
	}
	if !decision.Allowed {
		decision.Reason = DisallowedByRobots
	}
	if rules.group.CrawlDelay > 0 {
		delay := rules.group.CrawlDelay
		decision.CrawlDelay = &delay
	}
	return decision
}

// AllowAll is the Decider used when robots.txt is not respected.
type AllowAll struct{}

func (AllowAll) Decide(ctx context.Context, u url.URL) (Decision, failure.ClassifiedError) {
	return Decision{Url: u, Allowed: true, Reason: RobotsDisabled}, nil
}
