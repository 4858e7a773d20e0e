package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeWriter struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeWriter) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeWriter) Ping(ctx context.Context) error { return f.err }

func (f *fakeWriter) Close() { f.closed = true }

func testProducer(w *fakeWriter) *Producer {
	return newProducer(w, &ProducerConfig{ProduceTimeout: time.Second})
}

func TestProducer_ProduceJSON(t *testing.T) {
	w := &fakeWriter{}
	p := testProducer(w)

	payload := map[string]string{"email": "a@example.com"}
	err := p.ProduceJSON(context.Background(), "auth.events", "a@example.com", payload, map[string]string{"event_type": "test"})
	require.NoError(t, err)

	require.Len(t, w.records, 1)
	rec := w.records[0]
	assert.Equal(t, "auth.events", rec.Topic)
	assert.Equal(t, "a@example.com", string(rec.Key))

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Value, &got))
	assert.Equal(t, payload, got)

	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "event_type", rec.Headers[0].Key)
	assert.Equal(t, "test", string(rec.Headers[0].Value))
}

func TestProducer_ProduceError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	err := testProducer(w).Produce(context.Background(), "t", "k", []byte("v"), nil)
	assert.ErrorContains(t, err, "failed to produce to t")
	assert.ErrorContains(t, err, "broker down")
}

func TestProducer_ProduceJSONMarshalError(t *testing.T) {
	w := &fakeWriter{}
	err := testProducer(w).ProduceJSON(context.Background(), "t", "k", make(chan int), nil)
	assert.ErrorContains(t, err, "failed to marshal message")
	assert.Empty(t, w.records)
}

func TestProducer_HealthCheck(t *testing.T) {
	assert.NoError(t, testProducer(&fakeWriter{}).HealthCheck(context.Background()))
	assert.Error(t, testProducer(&fakeWriter{err: errors.New("no brokers")}).HealthCheck(context.Background()))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, testProducer(w).Close())
	assert.True(t, w.closed)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), &ProducerConfig{})
	assert.ErrorIs(t, err, ErrNoBrokers)
}
