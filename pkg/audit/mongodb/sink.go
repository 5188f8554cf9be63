// Package mongodb implements the audit sink contract using MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Inhealthcare/open-itk/pkg/audit"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string

	// WriteTimeout bounds each record insert.
	WriteTimeout time.Duration
}

// Sink writes audit records to a MongoDB collection. Records are only
// inserted, never updated or deleted.
type Sink struct {
	client       *mongo.Client
	records      *mongo.Collection
	writeTimeout time.Duration
}

// NewSink connects to MongoDB and creates an audit sink.
func NewSink(ctx context.Context, cfg *Config) (*Sink, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = "audit_records"
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 5 * time.Second
	}

	return &Sink{
		client:       client,
		records:      client.Database(cfg.Database).Collection(collection),
		writeTimeout: writeTimeout,
	}, nil
}

// AuditRequest implements audit.Sink.
func (s *Sink) AuditRequest(r audit.Record) error { return s.insert(r) }

// AuditResponse implements audit.Sink.
func (s *Sink) AuditResponse(r audit.Record) error { return s.insert(r) }

// AuditFailure implements audit.Sink.
func (s *Sink) AuditFailure(r audit.Record) error { return s.insert(r) }

func (s *Sink) insert(r audit.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if _, err := s.records.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("inserting audit record: %w", err)
	}
	return nil
}

// Close releases the MongoDB connection.
func (s *Sink) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
