package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/report"
	"github.com/rohmanhakim/a11y-crawler/pkg/failure"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoSink stores one summary document per crawl in Collection and one
// document per page in <Collection>_pages, linked by reportId.
type MongoSink struct {
	metadataSink metadata.MetadataSink
	opts         MongoOptions
}

func NewMongoSink(
	metadataSink metadata.MetadataSink,
	opts MongoOptions,
) *MongoSink {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &MongoSink{
		metadataSink: metadataSink,
		opts:         opts,
	}
}

func (s *MongoSink) Write(ctx context.Context, r report.Report) (WriteResult, failure.ClassifiedError) {
	location, err := s.write(ctx, r)
	if err != nil {
		recordStorageError(s.metadataSink, "MongoSink.Write", "mongo", err)
		return WriteResult{}, err
	}
	s.metadataSink.RecordArtifact(
		metadata.ArtifactDocument,
		location,
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrSink, "mongo"),
		},
	)
	return NewWriteResult(location, []string{location}), nil
}

func (s *MongoSink) write(ctx context.Context, r report.Report) (string, failure.ClassifiedError) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(s.opts.URI).
		SetServerSelectionTimeout(s.opts.Timeout).
		SetConnectTimeout(s.opts.Timeout)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return "", s.unavailable(err)
	}
	defer func() {
		_ = client.Disconnect(context.WithoutCancel(ctx))
	}()

	if err := client.Ping(ctx, nil); err != nil {
		return "", s.unavailable(err)
	}

	reportID := primitive.NewObjectID()
	summaryDoc, pageDocs, convErr := toDocuments(reportID, r)
	if convErr != nil {
		return "", &StorageError{
			Message:   convErr.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      s.location(""),
		}
	}

	db := client.Database(s.opts.Database)
	if _, err := db.Collection(s.opts.Collection).InsertOne(ctx, summaryDoc); err != nil {
		return "", s.writeFailure(err)
	}
	if len(pageDocs) > 0 {
		if _, err := db.Collection(s.opts.Collection+"_pages").InsertMany(ctx, pageDocs); err != nil {
			return "", s.writeFailure(err)
		}
	}

	return s.location(reportID.Hex()), nil
}

// location never includes the connection URI since it may carry credentials.
func (s *MongoSink) location(id string) string {
	loc := "mongodb:" + s.opts.Database + "." + s.opts.Collection
	if id != "" {
		loc += "/" + id
	}
	return loc
}

func (s *MongoSink) unavailable(err error) *StorageError {
	return &StorageError{
		Message:   err.Error(),
		Retryable: true,
		Cause:     ErrCauseBackendUnavailable,
		Path:      s.location(""),
	}
}

func (s *MongoSink) writeFailure(err error) *StorageError {
	return &StorageError{
		Message:   err.Error(),
		Retryable: mongo.IsNetworkError(err) || mongo.IsTimeout(err),
		Cause:     ErrCauseWriteFailure,
		Path:      s.location(""),
	}
}

// toDocuments converts the report through its JSON form so stored field
// names match the JSON report exactly. Page details live only in the
// page documents.
func toDocuments(reportID primitive.ObjectID, r report.Report) (bson.M, []any, error) {
	pages := r.URLResults
	r.URLResults = nil

	summaryDoc, err := toDocument(r)
	if err != nil {
		return nil, nil, err
	}
	delete(summaryDoc, "urlResults")
	summaryDoc["_id"] = reportID

	pageDocs := make([]any, 0, len(pages))
	for _, pr := range pages {
		doc, err := toDocument(pr)
		if err != nil {
			return nil, nil, err
		}
		doc["reportId"] = reportID
		pageDocs = append(pageDocs, doc)
	}
	return summaryDoc, pageDocs, nil
}

func toDocument(v any) (bson.M, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
