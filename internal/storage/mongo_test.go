package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/storage"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMongoSink_UnreachableServerIsFatal(t *testing.T) {
	recorder := &recordingSink{}
	sink := storage.NewMongoSink(recorder, storage.MongoOptions{
		URI:        "mongodb://127.0.0.1:1/?connect=direct",
		Database:   "a11y",
		Collection: "reports",
		Timeout:    200 * time.Millisecond,
	})

	_, err := sink.Write(context.Background(), sampleReport(t))
	require.NotNil(t, err)
	assert.True(t, failure.IsFatal(err))

	var storageErr *storage.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, storage.ErrCauseBackendUnavailable, storageErr.Cause)
	assert.True(t, storageErr.Retryable)
	assert.Equal(t, "mongodb:a11y.reports", storageErr.Path)
	assert.Equal(t, []metadata.ErrorCause{metadata.CauseStorageFailure}, recorder.causes)
}

func TestMongoSink_InvalidURI(t *testing.T) {
	sink := storage.NewMongoSink(&metadata.NoopSink{}, storage.MongoOptions{
		URI:        "not-a-mongo-uri",
		Database:   "a11y",
		Collection: "reports",
		Timeout:    200 * time.Millisecond,
	})

	_, err := sink.Write(context.Background(), sampleReport(t))
	require.NotNil(t, err)

	var storageErr *storage.StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, storage.ErrCauseBackendUnavailable, storageErr.Cause)
	assert.NotContains(t, storageErr.Path, "not-a-mongo-uri")
}
