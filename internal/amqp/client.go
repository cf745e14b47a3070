// Package amqp publishes and consumes period.selected events over RabbitMQ.
package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"

	"finboard/internal/core"
	"finboard/internal/log"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures    = 5
	openTimeout    = 30 * time.Second
	publishTimeout = 5 * time.Second
	maxBackoff     = 30 * time.Second

	periodSelectedKey = "period.selected"
)

var (
	ErrCircuitOpen   = errors.New("circuit breaker is open")
	errChannelClosed = errors.New("message channel closed")
)

// Client owns one connection and channel. Publishing reconnects lazily and
// trips a circuit breaker after repeated failures; consuming reconnects with
// exponential backoff.
//
// Events go to a fanout exchange. Every client consumes from its own
// exclusive queue, so each dashboard instance sees every announcement, and
// skips the ones it published itself.
type Client struct {
	url          string
	exchangeName string
	queueName    string
	instanceID   string
	logger       *log.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

// NewClient dials url and declares the exchange. queueName prefixes the
// per-instance queue declared when consuming.
func NewClient(url, exchangeName, queueName string, logger *log.Logger) (*Client, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	c := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		instanceID:   uuid.NewString(),
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connectLocked() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(c.exchangeName, amqp091.ExchangeFanout, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	c.conn, c.channel = conn, ch
	return nil
}

// InstanceID identifies this client as the origin of the events it
// publishes.
func (c *Client) InstanceID() string {
	return c.instanceID
}

// consumerQueue is the name of this instance's queue.
func (c *Client) consumerQueue() string {
	return c.queueName + "." + c.instanceID
}

// declareConsumerQueue declares the exclusive, auto-deleted queue of this
// instance and binds it to the exchange.
func (c *Client) declareConsumerQueue(ch *amqp091.Channel) (string, error) {
	q, err := ch.QueueDeclare(c.consumerQueue(), false, true, true, false, nil)
	if err != nil {
		return "", fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", c.exchangeName, false, nil); err != nil {
		return "", fmt.Errorf("bind queue: %w", err)
	}
	return q.Name, nil
}

// channelFor returns a live channel, reconnecting if the previous one died.
func (c *Client) channelFor() (*amqp091.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil && !c.channel.IsClosed() && c.conn != nil && !c.conn.IsClosed() {
		return c.channel, nil
	}
	c.closeLocked()
	if err := c.connectLocked(); err != nil {
		return nil, err
	}
	c.logger.Info("Reconnected to AMQP broker", "exchange", c.exchangeName, "queue", c.queueName)
	return c.channel, nil
}

// PublishPeriodSelected publishes a persistent period.selected message.
func (c *Client) PublishPeriodSelected(ctx context.Context, p core.Period, seed uint64, revision string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("publish period %s: %w", p, ErrCircuitOpen)
	}

	msg := NewPeriodSelectedMessage(p, seed, revision)
	msg.Origin = c.instanceID
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.channelFor()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, c.exchangeName, periodSelectedKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.Timestamp,
		Type:         periodSelectedKey,
		Body:         body,
	})
	if err != nil {
		c.recordFailure()
		if isConnectionError(err) {
			c.mu.Lock()
			c.closeLocked()
			c.mu.Unlock()
		}
		return fmt.Errorf("publish message: %w", err)
	}
	c.recordSuccess()

	c.logger.InfoContext(ctx, "Published period selected message",
		log.NewFields().WithSelection(p, seed, revision).WithOperation(log.OpPublish).ToSlice()...)
	return nil
}

// Handler processes one decoded message. Returning an error requeues it.
type Handler func(ctx context.Context, msg *PeriodSelectedMessage) error

// ConsumePeriodSelected delivers messages to handler until ctx is done,
// reconnecting with exponential backoff when the broker goes away.
// Malformed bodies are rejected without requeue.
func (c *Client) ConsumePeriodSelected(ctx context.Context, handler Handler) error {
	attempt := 0
	for {
		delivered, err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !errors.Is(err, errChannelClosed) && !isConnectionError(err) {
			return err
		}
		if delivered {
			attempt = 0
		}

		wait := exponentialBackoff(attempt)
		c.logger.WarnContext(ctx, "AMQP consumer disconnected, retrying",
			"error", err, "attempt", attempt+1, "backoff", wait.String())
		attempt++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler Handler) (delivered bool, err error) {
	ch, err := c.channelFor()
	if err != nil {
		return false, err
	}
	queue, err := c.declareConsumerQueue(ch)
	if err != nil {
		return false, err
	}
	msgs, err := ch.Consume(queue, "", false, true, false, false, nil)
	if err != nil {
		return false, fmt.Errorf("start consuming: %w", err)
	}
	c.logger.InfoContext(ctx, "Started consuming period selected messages", "queue", queue)

	for {
		select {
		case <-ctx.Done():
			return delivered, ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return delivered, errChannelClosed
			}
			delivered = true
			c.handleDelivery(ctx, d, handler)
		}
	}
}

// acknowledger is the subset of amqp091.Delivery the handler needs.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler Handler) {
	handleBody(ctx, c.logger, c.instanceID, d.Body, d, handler)
}

// handleBody decodes one delivery and passes it to handler. Messages whose
// origin is self are acknowledged without calling handler.
func handleBody(ctx context.Context, logger *log.Logger, self string, body []byte, ack acknowledger, handler Handler) {
	msg, err := PeriodSelectedMessageFromJSON(body)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to decode message", log.FieldError, err)
		_ = ack.Nack(false, false)
		return
	}
	p, _ := msg.Period()
	fields := log.NewFields().WithSelection(p, msg.Seed, msg.Revision).WithOperation(log.OpConsume)
	fields[log.FieldMessageID] = msg.ID

	if self != "" && msg.Origin == self {
		_ = ack.Ack(false)
		logger.DebugContext(ctx, "Skipping own period selected message", fields.ToSlice()...)
		return
	}

	if err := handler(ctx, msg); err != nil {
		logger.ErrorContext(ctx, "Failed to handle message", fields.WithError(err, log.ErrorTypeInternal).ToSlice()...)
		_ = ack.Nack(false, true)
		return
	}
	_ = ack.Ack(false)
	logger.DebugContext(ctx, "Processed period selected message", fields.ToSlice()...)
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.mu.Lock()
		last := c.lastFailure
		c.mu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.CompareAndSwapInt32(&c.state, StateOpen, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordFailure() {
	n := atomic.AddInt64(&c.failureCount, 1)
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if n >= maxFailures || atomic.LoadInt32(&c.state) == StateHalfOpen {
		if atomic.SwapInt32(&c.state, StateOpen) != StateOpen {
			c.logger.Warn("AMQP circuit breaker opened", "failures", n)
		}
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

// exponentialBackoff is 1s doubled per attempt, capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection", "eof", "broken pipe", "channel/connection is not open"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeLocked() {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err = c.conn.Close()
		c.conn = nil
	}
	return err
}
