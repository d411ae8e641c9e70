package exporter

import (
	"context"
	"encoding/json"

	"sjsage522/machineryworker/internal/scraper"
	"sjsage522/machineryworker/logger"
	apperrors "sjsage522/machineryworker/pkg/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisExporter appends every record to a Redis stream
type RedisExporter struct {
	client    *redis.Client
	stream    string
	maxLength int64
	runID     string
}

// NewRedisExporter creates a Redis stream exporter. A positive maxLength
// trims the stream approximately to that many entries.
func NewRedisExporter(addr string, db int, stream string, maxLength int64) *RedisExporter {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisExporter{
		client:    client,
		stream:    stream,
		maxLength: maxLength,
		runID:     uuid.NewString(),
	}
}

// Ping checks that Redis answers
func (e *RedisExporter) Ping(ctx context.Context) error {
	if err := e.client.Ping(ctx).Err(); err != nil {
		return apperrors.NewExport("redis", "redis unavailable", err)
	}
	return nil
}

// Export adds one stream entry per record with the fields site, run and record
func (e *RedisExporter) Export(ctx context.Context, records []scraper.ListingRecord) error {
	if len(records) == 0 {
		return nil
	}

	_, err := e.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, r := range records {
			payload, err := json.Marshal(r)
			if err != nil {
				return err
			}
			args := &redis.XAddArgs{
				Stream: e.stream,
				Values: map[string]interface{}{
					"site":   r.SourceSite,
					"run":    e.runID,
					"record": string(payload),
				},
			}
			if e.maxLength > 0 {
				args.MaxLen = e.maxLength
				args.Approx = true
			}
			pipe.XAdd(ctx, args)
		}
		return nil
	})
	if err != nil {
		return apperrors.NewExport("redis", "could not add records to "+e.stream, err)
	}

	logger.ForExporter("redis").Info().
		Int("records", len(records)).
		Str("stream", e.stream).
		Str("run", e.runID).
		Msg("Exported records")
	return nil
}

// RunID returns the identifier written with every entry
func (e *RedisExporter) RunID() string {
	return e.runID
}

// Close closes the Redis connection
func (e *RedisExporter) Close() error {
	return e.client.Close()
}
