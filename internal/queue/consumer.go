// Package queue consumes skill submission events from RabbitMQ and adds them
// to the skill index.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/hyperjump/skillmatch/internal/config"
	"github.com/hyperjump/skillmatch/internal/indexer"
	"github.com/hyperjump/skillmatch/internal/models"
	"github.com/hyperjump/skillmatch/pkg/utils"
)

// SkillAdder adds skill records to the index.
type SkillAdder interface {
	AddSkills(ctx context.Context, records []models.SkillRecord) ([]int, error)
}

// Outcome is how a delivery is settled.
type Outcome int

const (
	// Ack removes the message from the queue.
	Ack Outcome = iota
	// Reject drops the message without redelivery.
	Reject
	// Requeue returns the message to the queue for another attempt.
	Requeue
)

func (o Outcome) String() string {
	switch o {
	case Ack:
		return "ack"
	case Reject:
		return "reject"
	case Requeue:
		return "requeue"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// acknowledger is the part of amqp.Delivery used to settle a message.
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Consumer reads SubmissionEvent messages with manual acknowledgement.
type Consumer struct {
	cfg    config.QueueConfig
	adder  SkillAdder
	logger *zap.Logger
}

// NewConsumer returns a consumer for cfg.Name on cfg.URL.
func NewConsumer(cfg config.QueueConfig, adder SkillAdder, logger *zap.Logger) *Consumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Consumer{cfg: cfg, adder: adder, logger: utils.OrNop(logger)}
}

// Run dials the broker and consumes with cfg.Workers channels until ctx is
// cancelled or the connection closes.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	defer conn.Close()

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		deliveries, ch, err := c.open(conn)
		if err != nil {
			return err
		}
		defer ch.Close()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.worker(ctx, id, deliveries)
		}(i + 1)
	}
	c.logger.Info("queue consumer started",
		zap.String("queue", c.cfg.Name),
		zap.Int("workers", c.cfg.Workers))

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	select {
	case <-ctx.Done():
		_ = conn.Close()
		wg.Wait()
		return nil
	case amqpErr := <-closed:
		wg.Wait()
		if amqpErr != nil {
			return fmt.Errorf("rabbitmq connection closed: %w", amqpErr)
		}
		return nil
	}
}

func (c *Consumer) open(conn *amqp.Connection) (<-chan amqp.Delivery, *amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("failed to set prefetch: %w", err)
	}
	if _, err := ch.QueueDeclare(
		c.cfg.Name,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	deliveries, err := ch.Consume(
		c.cfg.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, nil, fmt.Errorf("failed to consume queue: %w", err)
	}
	return deliveries, ch, nil
}

func (c *Consumer) worker(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			outcome := c.HandleBody(ctx, d.Body)
			c.logger.Debug("queue message handled",
				zap.Int("worker", id),
				zap.Uint64("delivery_tag", d.DeliveryTag),
				zap.Stringer("outcome", outcome))
			if err := settle(&d, outcome); err != nil {
				c.logger.Warn("failed to settle message", zap.Error(err))
			}
		}
	}
}

// HandleBody decodes one message and adds its skills. Malformed or invalid
// events are rejected; persistence failures are requeued.
func (c *Consumer) HandleBody(ctx context.Context, body []byte) Outcome {
	ev, err := models.DecodeSubmission(body)
	if err != nil {
		c.logger.Warn("rejecting submission", zap.Error(err))
		return Reject
	}
	ids, err := c.adder.AddSkills(ctx, ev.Records())
	if err != nil {
		if errors.Is(err, indexer.ErrPersistence) {
			c.logger.Error("failed to persist submission, requeueing", zap.Error(err))
			return Requeue
		}
		c.logger.Error("failed to add submission", zap.Error(err))
		return Reject
	}
	c.logger.Info("submission indexed", zap.Any("user_id", ev.UserID), zap.Ints("ids", ids))
	return Ack
}

func settle(d acknowledger, o Outcome) error {
	switch o {
	case Ack:
		return d.Ack(false)
	case Requeue:
		return d.Nack(false, true)
	default:
		return d.Nack(false, false)
	}
}

// Publish sends one submission event to the queue, declaring it if needed.
func Publish(cfg config.QueueConfig, ev *models.SubmissionEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to dial rabbitmq: %w", err)
	}
	defer conn.Close()
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}
	defer ch.Close()
	if _, err := ch.QueueDeclare(cfg.Name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	return ch.Publish(
		"",       // default exchange
		cfg.Name, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
