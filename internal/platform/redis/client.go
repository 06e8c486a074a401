// Package redis connects the audit stream backend.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"agrocert/internal/platform/config"
)

const defaultStream = "agrocert:audit"

// Client is a pinged go-redis client bound to the audit stream name.
type Client struct {
	*redis.Client
	Stream string
}

// New dials and pings Redis. It returns (nil, nil) when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	stream := cfg.Stream
	if stream == "" {
		stream = defaultStream
	}
	return &Client{Client: client, Stream: stream}, nil
}

// Health is the /health probe for Redis.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
