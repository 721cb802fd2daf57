package export

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the Redis connection for a RedisExporter.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379")
	URL string

	// Prefix namespaces all keys written by the exporter. Defaults to
	// "indugraph".
	Prefix string

	// TLS configuration for secure connections
	TLS *tls.Config

	// ConnectTimeout is the maximum time to wait for connection establishment
	ConnectTimeout time.Duration

	// WriteTimeout is the maximum time to wait for write operations
	WriteTimeout time.Duration
}

var _ Exporter = (*RedisExporter)(nil)

// RedisExporter writes snapshots to Redis. Each record lands under
// <prefix>:<kind>:<guid> as JSON, with a <prefix>:<kind> set indexing the
// GUIDs of that kind and a <prefix>:meta:<session> hash describing the
// snapshot. Re-exporting the same session overwrites in place, so repeated
// exports are idempotent.
type RedisExporter struct {
	client *redis.Client
	prefix string
}

// NewRedisExporter connects to Redis with the given options.
func NewRedisExporter(opts RedisOptions) (*RedisExporter, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = "indugraph"
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	redisOpts.TLSConfig = opts.TLS
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.WriteTimeout = opts.WriteTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisExporter{client: client, prefix: opts.Prefix}, nil
}

// Export writes all records in snap to Redis.
func (e *RedisExporter) Export(ctx context.Context, snap *Snapshot) error {
	pipe := e.client.TxPipeline()

	meta := map[string]string{
		"session_id":  snap.SessionID.String(),
		"source":      snap.Source,
		"exported_at": snap.ExportedAt.Format(time.RFC3339),
		"targets":     fmt.Sprintf("%d", len(snap.Targets)),
		"pins":        fmt.Sprintf("%d", len(snap.Pins)),
		"links":       fmt.Sprintf("%d", len(snap.Links)),
		"connections": fmt.Sprintf("%d", len(snap.Connections)),
	}
	metaKey := e.key("meta", snap.SessionID.String())
	args := make([]interface{}, 0, len(meta)*2)
	for k, v := range meta {
		args = append(args, k, v)
	}
	pipe.HSet(ctx, metaKey, args...)

	for _, rec := range snap.Targets {
		if err := e.put(ctx, pipe, "targets", rec.GUID, rec); err != nil {
			return err
		}
	}
	for _, rec := range snap.Pins {
		if err := e.put(ctx, pipe, "pins", rec.GUID, rec); err != nil {
			return err
		}
	}
	for _, rec := range snap.Links {
		if err := e.put(ctx, pipe, "links", rec.GUID, rec); err != nil {
			return err
		}
	}
	for _, rec := range snap.Connections {
		if err := e.put(ctx, pipe, "connections", rec.GUID, rec); err != nil {
			return err
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (e *RedisExporter) put(ctx context.Context, pipe redis.Pipeliner, kind string, guid uuid.UUID, rec any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", kind, err)
	}
	pipe.Set(ctx, e.key(kind, guid.String()), data, 0)
	pipe.SAdd(ctx, e.key(kind), guid.String())
	return nil
}

func (e *RedisExporter) key(parts ...string) string {
	key := e.prefix
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Close closes the Redis connection.
func (e *RedisExporter) Close() error {
	return e.client.Close()
}
