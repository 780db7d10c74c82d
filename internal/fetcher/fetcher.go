package fetcher

import (
	"context"

	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/rohmanhakim/a11y-crawler/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
