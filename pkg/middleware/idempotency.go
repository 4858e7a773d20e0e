package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	"github.com/saurav0523/liaplusAI-Backend/pkg/response"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency key
	IdempotencyKeyHeader = "X-Idempotency-Key"
	// DefaultIdempotencyTTL is how long a completed response is replayed
	DefaultIdempotencyTTL = 5 * time.Minute
	// IdempotencyKeyPrefix namespaces Redis keys
	IdempotencyKeyPrefix = "idempotency:"
)

const maxIdempotencyKeyLength = 128

// IdempotencyStatus represents the status of an idempotency record
type IdempotencyStatus string

const (
	StatusProcessing IdempotencyStatus = "processing"
	StatusCompleted  IdempotencyStatus = "completed"
)

// IdempotencyRecord stores the state of an idempotent request
type IdempotencyRecord struct {
	Status       IdempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// RedisClient is the subset of go-redis the middleware uses
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	Redis RedisClient
	// TTL for completed records
	TTL time.Duration
	// ProcessingTTL bounds how long an in-flight record blocks retries
	ProcessingTTL time.Duration
	// Subject scopes keys to a caller, e.g. the authenticated account id
	Subject func(*gin.Context) string
}

// DefaultIdempotencyConfig returns default configuration
func DefaultIdempotencyConfig(rdb RedisClient) *IdempotencyConfig {
	return &IdempotencyConfig{
		Redis:         rdb,
		TTL:           DefaultIdempotencyTTL,
		ProcessingTTL: 60 * time.Second,
	}
}

// Idempotency replays the stored response when a request is retried with the
// same X-Idempotency-Key. Requests without the header pass through. Only 2xx
// responses are stored; a failed attempt frees the key for another try.
func Idempotency(cfg *IdempotencyConfig, log *logger.Logger) gin.HandlerFunc {
	config := *cfg
	if config.ProcessingTTL <= 0 {
		config.ProcessingTTL = 60 * time.Second
	}
	if config.TTL <= 0 {
		config.TTL = DefaultIdempotencyTTL
	}

	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			response.Abort(c, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", "Idempotency key is too long")
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(c.Request.Body)
			if err != nil {
				response.Abort(c, http.StatusBadRequest, "INVALID_REQUEST", "Could not read request body")
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		subject := ""
		if config.Subject != nil {
			subject = config.Subject(c)
		}
		requestHash := hashRequest(c.Request.Method, c.Request.URL.Path, subject, body)
		redisKey := IdempotencyKeyPrefix + subject + ":" + key

		ctx := c.Request.Context()

		record := &IdempotencyRecord{
			Status:      StatusProcessing,
			RequestHash: requestHash,
			CreatedAt:   time.Now(),
		}
		claimed, err := claimRecord(ctx, config.Redis, redisKey, record, config.ProcessingTTL)
		if err != nil {
			// Fail open
			log.WithContext(ctx).Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		if !claimed {
			existing, err := getRecord(ctx, config.Redis, redisKey)
			if err != nil {
				if errors.Is(err, redis.Nil) {
					// Expired between SETNX and GET; the client may retry
					response.Abort(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed")
					return
				}
				log.WithContext(ctx).Warn("Idempotency store unavailable", zap.Error(err))
				c.Next()
				return
			}
			replay(c, existing, requestHash)
			return
		}

		rw := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = rw

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			_ = config.Redis.Del(ctx, redisKey).Err()
			return
		}

		record.Status = StatusCompleted
		record.ResponseCode = status
		record.ResponseBody = rw.body.String()
		if err := saveRecord(ctx, config.Redis, redisKey, record, config.TTL); err != nil {
			log.WithContext(ctx).Warn("Failed to store idempotent response", zap.Error(err))
		}
	}
}

func replay(c *gin.Context, existing *IdempotencyRecord, requestHash string) {
	switch {
	case existing.RequestHash != requestHash:
		response.Abort(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED", "Idempotency key already used with a different request")
	case existing.Status == StatusProcessing:
		response.Abort(c, http.StatusConflict, "REQUEST_IN_PROGRESS", "A request with this idempotency key is already being processed")
	default:
		c.Header("Idempotent-Replayed", "true")
		c.Data(existing.ResponseCode, "application/json; charset=utf-8", []byte(existing.ResponseBody))
		c.Abort()
	}
}

// capturingWriter tees the response body
type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

func hashRequest(method, path, subject string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write([]byte(subject))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func getRecord(ctx context.Context, rdb RedisClient, key string) (*IdempotencyRecord, error) {
	result, err := rdb.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func claimRecord(ctx context.Context, rdb RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return false, err
	}
	return rdb.SetNX(ctx, key, string(data), ttl).Result()
}

func saveRecord(ctx context.Context, rdb RedisClient, key string, record *IdempotencyRecord, ttl time.Duration) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, string(data), ttl).Err()
}
