package scheduler_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohmanhakim/a11y-crawler/internal/config"
	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/scheduler"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageSink(t *testing.T) {
	base := mustURL(t, "https://site.test/")

	localOnly, err := config.WithDefault(base).WithOutputDir(t.TempDir()).Build()
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalSink{}, scheduler.NewStorageSink(&metadata.NoopSink{}, localOnly))

	withExports, err := config.WithDefault(base).
		WithOutputDir(t.TempDir()).
		WithXLSXReport("results.xlsx").
		WithMongo("mongodb://127.0.0.1:27017", "a11y", "reports").
		Build()
	require.NoError(t, err)
	assert.IsType(t, &storage.MultiSink{}, scheduler.NewStorageSink(&metadata.NoopSink{}, withExports))
}

func TestNewScheduler_LoadsAxeSourceFromFile(t *testing.T) {
	axePath := filepath.Join(t.TempDir(), "axe.min.js")
	require.NoError(t, os.WriteFile(axePath, []byte("window.axe = {};"), 0o644))

	cfg, err := config.WithDefault(mustURL(t, "https://site.test/")).
		WithAxeSource(axePath).
		WithRespectRobots(true).
		Build()
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	s, err := scheduler.NewScheduler(context.Background(), cfg, logger, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, s.FrontierVisitedCount())
}

func TestNewScheduler_MissingAxeSource(t *testing.T) {
	cfg, err := config.WithDefault(mustURL(t, "https://site.test/")).
		WithAxeSource(filepath.Join(t.TempDir(), "missing.js")).
		Build()
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	_, err = scheduler.NewScheduler(context.Background(), cfg, logger, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load axe-core")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "audit.LoadAxeSource", hook.LastEntry().Data["action"])
}
