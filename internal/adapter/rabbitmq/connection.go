package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/YelzhanWeb/storefront/internal/config"
	amqp "github.com/rabbitmq/amqp091-go"
)

var (
	ErrConnectionClosed = errors.New("rabbitmq connection permanently closed")
	ErrNacked           = errors.New("broker rejected the message")

	errNotConfirming = errors.New("channel is not in confirm mode")
	errConfirmLost   = errors.New("channel closed before the broker confirmed")
)

// Connection survives broker restarts: Reconnect redials once the
// underlying connection has dropped.
type Connection interface {
	Channel() (Channel, error)
	IsClosed() bool
	Reconnect() error
	Close() error
}

// Channel carries the storefront's fanout topology: one durable exchange,
// one exclusive auto-deleted queue per subscriber.
type Channel interface {
	DeclareFanout(exchange string) error
	BindExclusiveQueue(exchange string) (string, error)
	Consume(queue string) (<-chan amqp.Delivery, error)
	Confirm() error
	PublishConfirmed(ctx context.Context, exchange string, msg amqp.Publishing) error
	NotifyClose() <-chan *amqp.Error
	Close() error
}

type amqpConnection struct {
	cfg config.RabbitMQConfig

	mu     sync.RWMutex
	conn   *amqp.Connection
	closed bool
}

func Connect(cfg config.RabbitMQConfig) (Connection, error) {
	conn, err := dial(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return &amqpConnection{cfg: cfg, conn: conn}, nil
}

func dial(cfg config.RabbitMQConfig) (*amqp.Connection, error) {
	return amqp.DialConfig(cfg.URL(), amqp.Config{
		Heartbeat: cfg.Heartbeat,
		Locale:    "en_US",
		Properties: amqp.Table{
			"connection_name": cfg.ConnectionName,
		},
	})
}

func (c *amqpConnection) Channel() (Channel, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return &amqpChannel{ch: ch}, nil
}

func (c *amqpConnection) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed || c.conn.IsClosed()
}

func (c *amqpConnection) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	if !c.conn.IsClosed() {
		return nil
	}

	conn, err := dial(c.cfg)
	if err != nil {
		return fmt.Errorf("failed to reconnect to RabbitMQ: %w", err)
	}
	c.conn = conn
	return nil
}

func (c *amqpConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn.IsClosed() {
		return nil
	}
	return c.conn.Close()
}

type amqpChannel struct {
	ch       *amqp.Channel
	confirms chan amqp.Confirmation
}

func (c *amqpChannel) DeclareFanout(exchange string) error {
	return c.ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil)
}

func (c *amqpChannel) BindExclusiveQueue(exchange string) (string, error) {
	q, err := c.ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return "", fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := c.ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return "", fmt.Errorf("failed to bind queue: %w", err)
	}
	return q.Name, nil
}

// Consume auto-acks: notifications are advisory and never redelivered.
func (c *amqpChannel) Consume(queue string) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(queue, "", true, false, false, false, nil)
}

func (c *amqpChannel) Confirm() error {
	if err := c.ch.Confirm(false); err != nil {
		return err
	}
	c.confirms = c.ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	return nil
}

// PublishConfirmed blocks until the broker acks the message or ctx ends.
func (c *amqpChannel) PublishConfirmed(ctx context.Context, exchange string, msg amqp.Publishing) error {
	if c.confirms == nil {
		return errNotConfirming
	}
	if err := c.ch.PublishWithContext(ctx, exchange, "", false, false, msg); err != nil {
		return err
	}
	return awaitConfirm(ctx, c.confirms)
}

func awaitConfirm(ctx context.Context, confirms <-chan amqp.Confirmation) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for publish confirm: %w", ctx.Err())
	case conf, ok := <-confirms:
		if !ok {
			return errConfirmLost
		}
		if !conf.Ack {
			return ErrNacked
		}
		return nil
	}
}

func (c *amqpChannel) NotifyClose() <-chan *amqp.Error {
	return c.ch.NotifyClose(make(chan *amqp.Error, 1))
}

func (c *amqpChannel) Close() error {
	return c.ch.Close()
}
