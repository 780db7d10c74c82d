package audit_test

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/rohmanhakim/a11y-crawler/internal/audit"
	"github.com/rohmanhakim/a11y-crawler/internal/browser"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/stretchr/testify/mock"
)

// fakeSession records navigations and answers Evaluate through evaluateFn.
type fakeSession struct {
	mu          sync.Mutex
	navigateErr error
	evaluateFn  func(script string, out any, awaitPromise bool) error
	navigated   []url.URL
	scripts     []string
	closed      int
}

func (s *fakeSession) Navigate(ctx context.Context, target url.URL) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigated = append(s.navigated, target)
	return s.navigateErr
}

func (s *fakeSession) Evaluate(ctx context.Context, script string, out any, awaitPromise bool) error {
	s.mu.Lock()
	s.scripts = append(s.scripts, script)
	s.mu.Unlock()
	if s.evaluateFn == nil {
		return errors.New("evaluate not configured")
	}
	return s.evaluateFn(script, out, awaitPromise)
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

type fakeDriver struct {
	session *fakeSession
	openErr error
	opened  int
}

func (d *fakeDriver) Open(ctx context.Context) (browser.Session, error) {
	d.opened++
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.session, nil
}

// oracleMock is a testify mock for audit.Oracle
type oracleMock struct {
	mock.Mock
}

func (m *oracleMock) Evaluate(ctx context.Context, session browser.Session, profile audit.Profile) (report.RawResults, error) {
	args := m.Called(ctx, session, profile)
	return args.Get(0).(report.RawResults), args.Error(1)
}
