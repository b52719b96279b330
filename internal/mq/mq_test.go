package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/severity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error { return nil }

type fakeAcknowledger struct {
	acked, nacked, requeued bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error { f.acked = true; return nil }

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked, f.requeued = true, requeue
	return nil
}

func (f *fakeAcknowledger) Reject(uint64, bool) error { return nil }

func TestPublishMutation_RoutesByTypeAndPersists(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchange: "earthquakes.events.exchange", logger: zap.NewNop()}
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	rec := earthquake.Record{ID: "a1", Location: "35.68,139.69", Magnitude: 6.1, Date: now}

	err := p.PublishMutation(context.Background(), NewRecordEvent(EventCreated, rec, now))

	require.NoError(t, err)
	assert.Equal(t, "earthquakes.events.exchange", ch.exchange)
	assert.Equal(t, EventCreated, ch.key)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, "earthquake.created", body["type"])
	assert.Equal(t, string(severity.Moderate), body["severity"])
	assert.Equal(t, "35.68,139.69", body["record"].(map[string]any)["location"])
}

func TestPublishMutation_DeleteOmitsRecord(t *testing.T) {
	ch := &fakeChannel{}
	p := &Publisher{channel: ch, exchange: "events", logger: zap.NewNop()}

	require.NoError(t, p.PublishMutation(context.Background(), NewDeleteEvent("a1", time.Now())))

	var body map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &body))
	assert.Equal(t, EventDeleted, ch.key)
	assert.NotContains(t, body, "record")
	assert.NotContains(t, body, "severity")
}

func TestPublishMutation_ChannelError(t *testing.T) {
	p := &Publisher{channel: &fakeChannel{err: amqp.ErrClosed}, exchange: "events", logger: zap.NewNop()}

	err := p.PublishMutation(context.Background(), NewDeleteEvent("a1", time.Now()))

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestConsumerHandle_AcksOnSuccess(t *testing.T) {
	ack := &fakeAcknowledger{}
	var got []byte
	c := &Consumer{logger: zap.NewNop(), handler: func(_ context.Context, body []byte) error {
		got = body
		return nil
	}}

	c.handle(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{}`)})

	assert.Equal(t, []byte(`{}`), got)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestConsumerHandle_DeadLettersOnError(t *testing.T) {
	ack := &fakeAcknowledger{}
	c := &Consumer{logger: zap.NewNop(), handler: func(context.Context, []byte) error {
		return errors.New("store unavailable")
	}}

	c.handle(context.Background(), amqp.Delivery{Acknowledger: ack, DeliveryTag: 2})

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeued)
	assert.False(t, ack.acked)
}
