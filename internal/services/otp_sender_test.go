package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	closed    bool
	declared  []string
	published []amqp.Publishing
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	if f.closed {
		return amqp.ErrClosed
	}
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) IsClosed() bool { return f.closed }
func (f *fakeChannel) Close() error   { f.closed = true; return nil }

type fakeConnection struct {
	closed   bool
	channels []*fakeChannel
}

func (f *fakeConnection) Channel() (amqpChannel, error) {
	if f.closed {
		return nil, amqp.ErrClosed
	}
	ch := &fakeChannel{}
	f.channels = append(f.channels, ch)
	return ch, nil
}

func (f *fakeConnection) IsClosed() bool { return f.closed }
func (f *fakeConnection) Close() error   { f.closed = true; return nil }

func newTestAMQPSender(t *testing.T) (*AMQPOTPSender, *[]*fakeConnection) {
	t.Helper()
	var dialed []*fakeConnection
	s := &AMQPOTPSender{
		url:   "amqp://broker.test",
		queue: "sms.otp",
		log:   nopLogger(),
		dial: func(string) (amqpConnection, error) {
			conn := &fakeConnection{}
			dialed = append(dialed, conn)
			return conn, nil
		},
	}
	require.NoError(t, s.connect())
	return s, &dialed
}

func TestAMQPOTPSenderPublishesEvent(t *testing.T) {
	s, dialed := newTestAMQPSender(t)
	expiresAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, s.Send(context.Background(), "09120000000", "123456", expiresAt))

	ch := (*dialed)[0].channels[0]
	assert.Equal(t, []string{"sms.otp"}, ch.declared)
	require.Len(t, ch.published, 1)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	var event OTPIssuedEvent
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &event))
	assert.Equal(t, "09120000000", event.PhoneNumber)
	assert.Equal(t, "123456", event.Code)
	assert.True(t, expiresAt.Equal(event.ExpiresAt))
}

func TestAMQPOTPSenderReopensClosedChannel(t *testing.T) {
	s, dialed := newTestAMQPSender(t)
	conn := (*dialed)[0]
	conn.channels[0].closed = true

	require.NoError(t, s.Send(context.Background(), "09120000000", "123456", time.Now()))

	assert.Len(t, *dialed, 1, "an open connection is reused")
	require.Len(t, conn.channels, 2)
	assert.Empty(t, conn.channels[0].published)
	assert.Len(t, conn.channels[1].published, 1)
	assert.Equal(t, []string{"sms.otp"}, conn.channels[1].declared)
}

func TestAMQPOTPSenderRedialsClosedConnection(t *testing.T) {
	s, dialed := newTestAMQPSender(t)
	(*dialed)[0].closed = true

	require.NoError(t, s.Send(context.Background(), "09120000000", "123456", time.Now()))

	require.Len(t, *dialed, 2)
	assert.Len(t, (*dialed)[1].channels[0].published, 1)
}

func TestAMQPOTPSenderDialFailure(t *testing.T) {
	s := &AMQPOTPSender{
		queue: "sms.otp",
		log:   nopLogger(),
		dial: func(string) (amqpConnection, error) {
			return nil, errors.New("connection refused")
		},
	}

	err := s.Send(context.Background(), "09120000000", "123456", time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp dial")
	assert.NoError(t, s.Close())
}
