package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/saurav0523/liaplusAI-Backend/internal/domain"
	"github.com/saurav0523/liaplusAI-Backend/pkg/logger"
	"github.com/saurav0523/liaplusAI-Backend/pkg/retry"
	"go.uber.org/zap"
)

// EmailSender hands a verification link to whatever delivers mail
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
}

// EventPublisher is the part of the Kafka producer the sender needs
type EventPublisher interface {
	ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error
}

// VerifyURL builds the link the user clicks to verify
func VerifyURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid verify base url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// KafkaEmailSender publishes a VerificationEmailRequested event. Delivery
// belongs to the mailer consuming the topic.
type KafkaEmailSender struct {
	publisher     EventPublisher
	topic         string
	verifyBaseURL string
	dlq           *retry.DLQHandler
	now           func() time.Time
}

// KafkaEmailSenderOption configures a KafkaEmailSender
type KafkaEmailSenderOption func(*KafkaEmailSender)

// WithDLQ retries publishing through h and parks events that still fail
func WithDLQ(h *retry.DLQHandler) KafkaEmailSenderOption {
	return func(s *KafkaEmailSender) { s.dlq = h }
}

// NewKafkaEmailSender creates a KafkaEmailSender
func NewKafkaEmailSender(publisher EventPublisher, topic, verifyBaseURL string, opts ...KafkaEmailSenderOption) *KafkaEmailSender {
	s := &KafkaEmailSender{
		publisher:     publisher,
		topic:         topic,
		verifyBaseURL: verifyBaseURL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendVerificationEmail publishes the event keyed by email
func (s *KafkaEmailSender) SendVerificationEmail(ctx context.Context, email, token string) error {
	link, err := VerifyURL(s.verifyBaseURL, token)
	if err != nil {
		return err
	}

	event := &domain.VerificationEmailRequested{
		EventID:      uuid.New().String(),
		EventType:    domain.EventVerificationEmailRequested,
		AccountEmail: email,
		VerifyURL:    link,
		RequestedAt:  s.now().UTC(),
		Version:      1,
	}
	headers := map[string]string{
		"event_type": event.EventType,
		"event_id":   event.EventID,
	}

	publish := func(ctx context.Context) error {
		return s.publisher.ProduceJSON(ctx, s.topic, event.Key(), event, headers)
	}

	if s.dlq == nil {
		err = publish(ctx)
	} else {
		payload, mErr := json.Marshal(event)
		if mErr != nil {
			return fmt.Errorf("failed to marshal verification email event: %w", mErr)
		}
		err = s.dlq.ProcessWithDLQ(ctx, &retry.MessageContext{
			ID:      event.EventID,
			Topic:   s.topic,
			Key:     event.Key(),
			Payload: payload,
			Headers: headers,
		}, publish)
	}
	if err != nil {
		return fmt.Errorf("failed to publish verification email event: %w", err)
	}
	return nil
}

// LogEmailSender writes the verification link to the log. Development only.
type LogEmailSender struct {
	log           *logger.Logger
	verifyBaseURL string
}

// NewLogEmailSender creates a LogEmailSender
func NewLogEmailSender(log *logger.Logger, verifyBaseURL string) *LogEmailSender {
	return &LogEmailSender{log: log, verifyBaseURL: verifyBaseURL}
}

// SendVerificationEmail logs the link
func (s *LogEmailSender) SendVerificationEmail(ctx context.Context, email, token string) error {
	link, err := VerifyURL(s.verifyBaseURL, token)
	if err != nil {
		return err
	}
	s.log.WithContext(ctx).Info("Verification email",
		zap.String("email", email),
		zap.String("verify_url", link),
	)
	return nil
}
