package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OTPSender delivers a freshly issued code to the user's phone.
type OTPSender interface {
	Send(ctx context.Context, phoneNumber, code string, expiresAt time.Time) error
}

// OTPIssuedEvent is the message an SMS gateway consumes from the queue.
type OTPIssuedEvent struct {
	PhoneNumber string    `json:"phone_number"`
	Code        string    `json:"code"`
	ExpiresAt   time.Time `json:"expires_at"`
	IssuedAt    time.Time `json:"issued_at"`
}

// amqpChannel is the part of *amqp.Channel the sender uses.
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type amqpConnection interface {
	Channel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

type brokerConnection struct {
	*amqp.Connection
}

func (c brokerConnection) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialBroker(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return brokerConnection{conn}, nil
}

// AMQPOTPSender publishes OTPIssuedEvent messages to a durable queue.
type AMQPOTPSender struct {
	url   string
	queue string
	log   *zap.Logger
	dial  func(url string) (amqpConnection, error)

	mu   sync.Mutex
	conn amqpConnection
	ch   amqpChannel
}

// NewAMQPOTPSender dials the broker and declares the queue.
func NewAMQPOTPSender(url, queue string, log *zap.Logger) (*AMQPOTPSender, error) {
	s := &AMQPOTPSender{url: url, queue: queue, log: log, dial: dialBroker}
	if err := s.connect(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *AMQPOTPSender) connect() error {
	conn, err := s.dial(s.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	s.conn, s.ch = conn, nil
	if err := s.openChannel(); err != nil {
		_ = conn.Close()
		s.conn = nil
		return err
	}
	return nil
}

func (s *AMQPOTPSender) openChannel() error {
	ch, err := s.conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(s.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("amqp queue declare: %w", err)
	}
	s.ch = ch
	return nil
}

// ensureChannel redials a dropped connection, or reopens the channel when a
// channel-level error closed it while the connection stayed up.
func (s *AMQPOTPSender) ensureChannel() error {
	if s.conn == nil || s.conn.IsClosed() {
		return s.connect()
	}
	if s.ch == nil || s.ch.IsClosed() {
		if err := s.openChannel(); err != nil {
			// the connection may be half broken; start over next time
			_ = s.conn.Close()
			s.conn = nil
			return err
		}
	}
	return nil
}

// Send publishes a persistent message. A dropped connection or channel is
// reopened first.
func (s *AMQPOTPSender) Send(ctx context.Context, phoneNumber, code string, expiresAt time.Time) error {
	body, err := json.Marshal(OTPIssuedEvent{
		PhoneNumber: phoneNumber,
		Code:        code,
		ExpiresAt:   expiresAt.UTC(),
		IssuedAt:    time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureChannel(); err != nil {
		return err
	}

	return s.ch.PublishWithContext(ctx, "", s.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Close shuts down the channel and connection.
func (s *AMQPOTPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// LogOTPSender only records that a code was issued. It never logs the code.
type LogOTPSender struct {
	log *zap.Logger
}

func NewLogOTPSender(log *zap.Logger) *LogOTPSender {
	return &LogOTPSender{log: log}
}

func (s *LogOTPSender) Send(_ context.Context, phoneNumber, _ string, expiresAt time.Time) error {
	s.log.Info("otp issued", zap.String("phone", MaskPhone(phoneNumber)), zap.Time("expires_at", expiresAt))
	return nil
}

// MaskPhone hides all but the last four digits.
func MaskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range masked {
		if i < len(phone)-4 {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}
