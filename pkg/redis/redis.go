package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saurav0523/liaplusAI-Backend/pkg/retry"
)

// Config holds Redis connection configuration
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Retry configuration
	MaxRetries    int
	RetryInterval time.Duration
}

// DefaultConfig returns default Redis configuration
func DefaultConfig() *Config {
	return &Config{
		Host:          "localhost",
		Port:          6379,
		PoolSize:      20,
		MinIdleConns:  5,
		DialTimeout:   5 * time.Second,
		ReadTimeout:   3 * time.Second,
		WriteTimeout:  3 * time.Second,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
}

// Addr returns the Redis address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Scripter is the subset of go-redis used to run Lua scripts
type Scripter interface {
	EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd
	ScriptLoad(ctx context.Context, script string) *redis.StringCmd
}

// Client wraps redis.Client with connection retry and script caching
type Client struct {
	client  *redis.Client
	config  *Config
	scripts *ScriptCache
}

// NewClient connects to Redis, retrying the initial ping
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	err := retry.Do(ctx, retry.ConnectConfig(cfg.MaxRetries, cfg.RetryInterval), func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	return &Client{
		client:  client,
		config:  cfg,
		scripts: NewScriptCache(client),
	}, nil
}

// Client returns the underlying redis.Client
func (c *Client) Client() *redis.Client {
	return c.client
}

// Scripts returns the Lua script cache bound to this client
func (c *Client) Scripts() *ScriptCache {
	return c.scripts
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck pings Redis with a short timeout
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// ScriptCache runs Lua scripts by SHA, loading them on first use and
// again after a server-side SCRIPT FLUSH
type ScriptCache struct {
	rdb  Scripter
	shas sync.Map // script name -> sha
}

// NewScriptCache creates a cache over rdb
func NewScriptCache(rdb Scripter) *ScriptCache {
	return &ScriptCache{rdb: rdb}
}

// Eval runs the named script
func (s *ScriptCache) Eval(ctx context.Context, name, script string, keys []string, args ...interface{}) *redis.Cmd {
	if sha, ok := s.shas.Load(name); ok {
		cmd := s.rdb.EvalSha(ctx, sha.(string), keys, args...)
		if !isNoScript(cmd.Err()) {
			return cmd
		}
	}

	sha, err := s.rdb.ScriptLoad(ctx, script).Result()
	if err != nil {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(fmt.Errorf("failed to load script %s: %w", name, err))
		return cmd
	}
	s.shas.Store(name, sha)
	return s.rdb.EvalSha(ctx, sha, keys, args...)
}

func isNoScript(err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return false
	}
	return strings.HasPrefix(err.Error(), "NOSCRIPT")
}
