package retry

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type producedMessage struct {
	topic   string
	key     string
	data    interface{}
	headers map[string]string
}

type fakeProducer struct {
	messages []producedMessage
	err      error
}

func (f *fakeProducer) ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, producedMessage{topic: topic, key: key, data: data, headers: headers})
	return nil
}

func fastRetry(maxRetries int) *Config {
	return &Config{MaxRetries: maxRetries, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond, Multiplier: 2}
}

func TestKafkaDLQPublisher_PublishToDLQ(t *testing.T) {
	producer := &fakeProducer{}
	p := NewKafkaDLQPublisher(producer, &DLQConfig{TopicSuffix: ".dlq", Source: "auth"})

	err := p.PublishToDLQ(context.Background(), &DLQMessage{
		ID:            "evt-1",
		OriginalTopic: "auth.verification-email.requested",
		OriginalKey:   "a@x.com",
		Payload:       json.RawMessage(`{"k":"v"}`),
		Headers:       map[string]string{"event_type": "verification_email.requested"},
		Attempts:      3,
	})
	require.NoError(t, err)

	require.Len(t, producer.messages, 1)
	m := producer.messages[0]
	assert.Equal(t, "auth.verification-email.requested.dlq", m.topic)
	assert.Equal(t, "a@x.com", m.key)
	assert.Equal(t, "3", m.headers["attempts"])
	assert.Equal(t, "verification_email.requested", m.headers["original_event_type"])

	msg := m.data.(*DLQMessage)
	assert.Equal(t, "auth", msg.Source)
	assert.False(t, msg.MovedToDLQAt.IsZero())
}

func TestKafkaDLQPublisher_NilMessage(t *testing.T) {
	p := NewKafkaDLQPublisher(&fakeProducer{}, nil)
	assert.Error(t, p.PublishToDLQ(context.Background(), nil))
	assert.Equal(t, "t.dlq", p.Topic("t"))
}

func TestDLQHandler_Success(t *testing.T) {
	producer := &fakeProducer{}
	h := NewDLQHandler(NewKafkaDLQPublisher(producer, nil), fastRetry(3), "auth")

	attempts := 0
	err := h.ProcessWithDLQ(context.Background(), &MessageContext{Topic: "t"}, func(ctx context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, producer.messages)
}

func TestDLQHandler_AllRetriesFail(t *testing.T) {
	producer := &fakeProducer{}
	h := NewDLQHandler(NewKafkaDLQPublisher(producer, nil), fastRetry(2), "auth")

	attempts := 0
	err := h.ProcessWithDLQ(context.Background(), &MessageContext{ID: "evt-1", Topic: "t", Key: "k"}, func(ctx context.Context) error {
		attempts++
		return errors.New("broker unavailable")
	})

	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, 3, attempts)

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0].data.(*DLQMessage)
	assert.Equal(t, "t.dlq", producer.messages[0].topic)
	assert.Equal(t, "broker unavailable", msg.Error)
	assert.Equal(t, 3, msg.Attempts)
}

func TestDLQHandler_PermanentError(t *testing.T) {
	producer := &fakeProducer{}
	h := NewDLQHandler(NewKafkaDLQPublisher(producer, nil), fastRetry(5), "auth")

	attempts := 0
	cause := errors.New("record too large")
	err := h.ProcessWithDLQ(context.Background(), &MessageContext{Topic: "t"}, func(ctx context.Context) error {
		attempts++
		return Permanent(cause)
	})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, attempts)
	assert.Len(t, producer.messages, 1)
}

func TestDLQHandler_PublishFails(t *testing.T) {
	producer := &fakeProducer{err: errors.New("dlq down")}
	h := NewDLQHandler(NewKafkaDLQPublisher(producer, nil), fastRetry(0), "auth")

	err := h.ProcessWithDLQ(context.Background(), &MessageContext{Topic: "t"}, func(ctx context.Context) error {
		return errors.New("broker unavailable")
	})

	assert.ErrorContains(t, err, "failed to publish to DLQ")
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
}
