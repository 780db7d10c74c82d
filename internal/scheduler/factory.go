package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/audit"
	"github.com/rohmanhakim/a11y-crawler/internal/browser"
	"github.com/rohmanhakim/a11y-crawler/internal/config"
	"github.com/rohmanhakim/a11y-crawler/internal/fetcher"
	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/robots"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
	"github.com/rohmanhakim/a11y-crawler/pkg/limiter"
	"github.com/rohmanhakim/a11y-crawler/pkg/timeutil"
	"github.com/sirupsen/logrus"
)

// NewScheduler wires the production components described by cfg.
// It downloads (or reads) the axe-core source up front so a bad source
// fails before any page is visited.
func NewScheduler(
	ctx context.Context,
	cfg config.Config,
	logger *logrus.Logger,
	summaryOut io.Writer,
) (*Scheduler, error) {
	recorder := metadata.NewRecorder(logger, "single-sync-worker")

	clientOpts := fetcher.ClientOptions{
		Timeout:            cfg.Timeout(),
		ProxyURL:           cfg.ProxyURL(),
		InsecureSkipVerify: cfg.InsecureSkipVerify(),
	}
	httpClient := fetcher.NewHTTPClient(clientOpts)

	axeScript, err := audit.LoadAxeSource(ctx, cfg.AxeSource(), httpClient)
	if err != nil {
		recorder.RecordError(
			time.Now(),
			"scheduler",
			"audit.LoadAxeSource",
			metadata.CauseNetworkFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrPath, cfg.AxeSource()),
			},
		)
		return nil, fmt.Errorf("load axe-core: %w", err)
	}

	driver := browser.NewChromeDriver(browser.Options{
		ExecPath:         cfg.ChromePath(),
		Headless:         cfg.Headless(),
		ProxyURL:         cfg.ProxyURL(),
		UserAgent:        cfg.UserAgent(),
		IgnoreCertErrors: cfg.InsecureSkipVerify(),
	})
	profile := audit.DefaultProfile()
	profile.Tags = cfg.RuleTags()
	runner := audit.NewRunner(
		recorder,
		driver,
		audit.NewAxeOracle(axeScript),
		profile,
		audit.RunnerOptions{
			NavigationTimeout: cfg.NavigationTimeout(),
			Username:          cfg.Username(),
			Password:          cfg.Password(),
		},
	)

	var robot robots.Decider = robots.AllowAll{}
	if cfg.RespectRobots() {
		robot = robots.NewRobot(recorder, robots.NewRobotsFetcher(cfg.UserAgent(), httpClient))
	}

	rateLimiter := limiter.NewConcurrentRateLimiter()
	rateLimiter.SetBackoffParam(timeutil.NewBackoffParam(
		cfg.BackoffInitialDuration(),
		cfg.BackoffMultiplier(),
		cfg.BackoffMaxDuration(),
	))

	htmlFetcher := fetcher.NewHtmlFetcher(recorder, clientOpts)

	return NewSchedulerWithDeps(
		cfg,
		recorder,
		recorder,
		rateLimiter,
		robot,
		&htmlFetcher,
		runner,
		NewStorageSink(recorder, cfg),
		summaryOut,
	), nil
}

// NewStorageSink returns the local JSON sink, fanned out to the XLSX and
// MongoDB exports when they are configured.
func NewStorageSink(metadataSink metadata.MetadataSink, cfg config.Config) storage.Sink {
	sinks := []storage.Sink{
		storage.NewLocalSink(metadataSink, storage.LocalOptions{
			OutputDir:      cfg.OutputDir(),
			ReportFileName: cfg.ReportFileName(),
			PerPageResults: cfg.PerPageResults(),
			HashAlgo:       cfg.HashAlgo(),
		}),
	}
	if name := cfg.XLSXReport(); name != "" {
		sinks = append(sinks, storage.NewXLSXSink(metadataSink, cfg.OutputDir(), name))
	}
	if uri := cfg.MongoURI(); uri != "" {
		sinks = append(sinks, storage.NewMongoSink(metadataSink, storage.MongoOptions{
			URI:        uri,
			Database:   cfg.MongoDatabase(),
			Collection: cfg.MongoCollection(),
			Timeout:    cfg.Timeout(),
		}))
	}
	if len(sinks) == 1 {
		return sinks[0]
	}
	return storage.NewMultiSink(sinks...)
}
