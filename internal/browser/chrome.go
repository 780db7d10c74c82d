package browser

import (
	"context"
	"fmt"
	"net/url"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ChromeDriver starts one Chrome process per session, so a crashed
// renderer never leaks into the next page.
type ChromeDriver struct {
	opts Options
}

func NewChromeDriver(opts Options) *ChromeDriver {
	return &ChromeDriver{opts: opts}
}

func (d *ChromeDriver) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", d.opts.Headless))
	if d.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.opts.ExecPath))
	}
	if d.opts.ProxyURL != nil {
		opts = append(opts, chromedp.ProxyServer(d.opts.ProxyURL.String()))
	}
	if d.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(d.opts.UserAgent))
	}
	if d.opts.IgnoreCertErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	return opts
}

// Open launches the browser. The session outlives ctx; only Close ends it.
func (d *ChromeDriver) Open(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), d.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	session := &chromeSession{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}

	// The first Run starts the browser process and must use browserCtx itself,
	// otherwise the browser dies with the derived context.
	stop := context.AfterFunc(ctx, browserCancel)
	err := chromedp.Run(browserCtx)
	stop()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	return session, nil
}

type chromeSession struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

func (s *chromeSession) Navigate(ctx context.Context, target url.URL) error {
	return s.run(ctx, chromedp.Tasks{
		chromedp.Navigate(target.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
	})
}

func (s *chromeSession) Evaluate(ctx context.Context, script string, out any, awaitPromise bool) error {
	return s.run(ctx, chromedp.Evaluate(script, out, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(awaitPromise)
	}))
}

func (s *chromeSession) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	return err
}

// run executes action on the session's tab bounded by the caller's ctx.
// Derived contexts are cancelled without closing the tab.
func (s *chromeSession) run(ctx context.Context, action chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.browserCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, action)
}
