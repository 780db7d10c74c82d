package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
)

/*
Responsibilities
- Persist the final report
- Optionally export it to secondary destinations
- Ensure deterministic filenames

Output Characteristics
- Stable directory layout
- Overwrite-safe reruns
- A report is written exactly once per crawl
*/

type Sink interface {
	Write(ctx context.Context, r report.Report) (WriteResult, failure.ClassifiedError)
}

// MultiSink writes to every sink in order and stops at the first failure.
// The location of the first sink is the location of the whole write.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Write(ctx context.Context, r report.Report) (WriteResult, failure.ClassifiedError) {
	var location string
	var artifacts []string
	for i, sink := range m.sinks {
		result, err := sink.Write(ctx, r)
		if err != nil {
			return WriteResult{}, err
		}
		if i == 0 {
			location = result.Location()
		}
		artifacts = append(artifacts, result.Artifacts()...)
	}
	return NewWriteResult(location, artifacts), nil
}

func recordStorageError(
	metadataSink metadata.MetadataSink,
	action string,
	sinkName string,
	err failure.ClassifiedError,
) {
	cause := metadata.CauseUnknown
	var path string
	var storageError *StorageError
	if errors.As(err, &storageError) {
		cause = mapStorageErrorToMetadataCause(storageError)
		path = storageError.Path
	}
	metadataSink.RecordError(
		time.Now(),
		"storage",
		action,
		cause,
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSink, sinkName),
			metadata.NewAttr(metadata.AttrWritePath, path),
		},
	)
}
