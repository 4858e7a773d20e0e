package retry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DLQMessage is a message that exhausted its retries
type DLQMessage struct {
	ID             string            `json:"id"`
	OriginalTopic  string            `json:"original_topic"`
	OriginalKey    string            `json:"original_key"`
	Payload        json.RawMessage   `json:"payload"`
	Headers        map[string]string `json:"headers,omitempty"`
	Error          string            `json:"error"`
	Attempts       int               `json:"attempts"`
	FirstAttemptAt time.Time         `json:"first_attempt_at"`
	LastAttemptAt  time.Time         `json:"last_attempt_at"`
	MovedToDLQAt   time.Time         `json:"moved_to_dlq_at"`
	Source         string            `json:"source"`
}

// DLQPublisher publishes failed messages to a dead letter queue
type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg *DLQMessage) error
}

// JSONProducer is satisfied by the Kafka producer
type JSONProducer interface {
	ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error
}

// DLQConfig contains configuration for DLQ publishing
type DLQConfig struct {
	// TopicSuffix is appended to the original topic (default ".dlq")
	TopicSuffix string
	// Source names the service moving the message
	Source string
}

// DefaultDLQConfig returns default DLQ configuration
func DefaultDLQConfig() *DLQConfig {
	return &DLQConfig{
		TopicSuffix: ".dlq",
		Source:      "unknown",
	}
}

// KafkaDLQPublisher publishes failed messages to <topic><suffix>
type KafkaDLQPublisher struct {
	producer JSONProducer
	config   *DLQConfig
	now      func() time.Time
}

// NewKafkaDLQPublisher creates a new Kafka DLQ publisher
func NewKafkaDLQPublisher(producer JSONProducer, config *DLQConfig) *KafkaDLQPublisher {
	if config == nil {
		config = DefaultDLQConfig()
	}
	return &KafkaDLQPublisher{producer: producer, config: config, now: time.Now}
}

// PublishToDLQ publishes msg to the dead letter topic of its original topic
func (p *KafkaDLQPublisher) PublishToDLQ(ctx context.Context, msg *DLQMessage) error {
	if msg == nil {
		return errors.New("DLQ message cannot be nil")
	}

	msg.MovedToDLQAt = p.now()
	msg.Source = p.config.Source

	headers := map[string]string{
		"content_type":   "application/json",
		"original_topic": msg.OriginalTopic,
		"attempts":       strconv.Itoa(msg.Attempts),
		"source":         msg.Source,
	}
	for k, v := range msg.Headers {
		headers["original_"+k] = v
	}

	return p.producer.ProduceJSON(ctx, p.Topic(msg.OriginalTopic), msg.OriginalKey, msg, headers)
}

// Topic returns the dead letter topic for originalTopic
func (p *KafkaDLQPublisher) Topic(originalTopic string) string {
	return originalTopic + p.config.TopicSuffix
}

// MessageContext describes the message being processed
type MessageContext struct {
	ID      string
	Topic   string
	Key     string
	Payload json.RawMessage
	Headers map[string]string
}

// DLQHandler retries an operation and parks the message on failure
type DLQHandler struct {
	retrier   *Retrier
	publisher DLQPublisher
	source    string
}

// NewDLQHandler creates a DLQHandler. A nil config uses DefaultConfig.
func NewDLQHandler(publisher DLQPublisher, config *Config, source string) *DLQHandler {
	return &DLQHandler{
		retrier:   New(config),
		publisher: publisher,
		source:    source,
	}
}

// ProcessWithDLQ runs op with retries. When every attempt fails the message
// is published to the DLQ and the retry error is still returned.
func (h *DLQHandler) ProcessWithDLQ(ctx context.Context, msg *MessageContext, op Operation) error {
	first := time.Now()
	result := h.retrier.Do(ctx, op)
	if result.Err == nil {
		return nil
	}

	errMsg := result.Err.Error()
	if result.LastError != nil {
		errMsg = result.LastError.Error()
	}

	dlqMsg := &DLQMessage{
		ID:             msg.ID,
		OriginalTopic:  msg.Topic,
		OriginalKey:    msg.Key,
		Payload:        msg.Payload,
		Headers:        msg.Headers,
		Error:          errMsg,
		Attempts:       result.Attempts,
		FirstAttemptAt: first,
		LastAttemptAt:  time.Now(),
		Source:         h.source,
	}

	// The original context may be what ended the retries
	dlqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := h.publisher.PublishToDLQ(dlqCtx, dlqMsg); err != nil {
		return fmt.Errorf("failed to publish to DLQ: %w (original error: %w)", err, result.Err)
	}
	return result.Err
}
