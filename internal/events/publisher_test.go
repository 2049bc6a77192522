package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spent/internal/service"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	deadline bool
}

type fakeChannel struct {
	declareErr error
	publishErr error
	declared   []string
	published  []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, _, _, _ bool, _ amqp091.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	if kind == "direct" && durable {
		f.declared = append(f.declared, name)
	}
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	_, hasDeadline := ctx.Deadline()
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg, deadline: hasDeadline})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

type fakeConn struct{ closed bool }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestNewPublisher_DeclaresExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := newPublisher(ch, &fakeConn{}, "spent.events", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"spent.events"}, ch.declared)

	_, err = newPublisher(&fakeChannel{declareErr: errors.New("access refused")}, &fakeConn{}, "x", nil)
	assert.Error(t, err)
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newPublisher(ch, &fakeConn{}, "spent.events", nil)
	require.NoError(t, err)

	event := service.Event{
		ID:         "evt-1",
		Type:       service.EventExpenseDeleted,
		UserID:     "alice",
		ExpenseID:  "exp-1",
		OccurredAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, ch.published, 1)
	got := ch.published[0]
	assert.Equal(t, "spent.events", got.exchange)
	assert.Equal(t, "expense.deleted", got.key)
	assert.True(t, got.deadline)
	assert.Equal(t, amqp091.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, "evt-1", got.msg.MessageId)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "expense.deleted", body["type"])
	assert.Equal(t, "alice", body["user_id"])
	assert.Equal(t, "exp-1", body["expense_id"])
	assert.NotContains(t, body, "expense")
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	p, err := newPublisher(&fakeChannel{publishErr: errors.New("channel closed")}, &fakeConn{}, "x", nil)
	require.NoError(t, err)

	err = p.Publish(context.Background(), service.Event{Type: service.EventExpenseCreated})
	assert.ErrorContains(t, err, "channel closed")
}

func TestAMQPPublisher_Close(t *testing.T) {
	ch := &fakeChannel{}
	conn := &fakeConn{}
	p, err := newPublisher(ch, conn, "x", nil)
	require.NoError(t, err)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
	assert.True(t, conn.closed)
}

func TestNop(t *testing.T) {
	var p service.EventPublisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), service.Event{}))
	assert.NoError(t, p.Close())
}
