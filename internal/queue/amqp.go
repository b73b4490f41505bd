package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPConfig configures the AMQP transport.
type AMQPConfig struct {
	URL   string
	Queue string
	// Prefetch limits unacknowledged deliveries; 0 means no limit.
	Prefetch int
	Logger   *slog.Logger
}

// AMQP consumes and publishes jobs over a single AMQP channel.
type AMQP struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *slog.Logger

	ensureOnce sync.Once
	ensureErr  error
	closeOnce  sync.Once
}

// DialAMQP connects, opens a channel and declares the queue.
func DialAMQP(cfg AMQPConfig) (*AMQP, error) {
	queueName := cfg.Queue
	if queueName == "" {
		queueName = DefaultQueueName
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AMQP broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open AMQP channel: %w", err)
	}
	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set prefetch: %w", err)
		}
	}

	a := &AMQP{conn: conn, ch: ch, queue: queueName, logger: logger}
	if err := a.ensure(); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// ensure declares the durable queue once per process.
func (a *AMQP) ensure() error {
	a.ensureOnce.Do(func() {
		_, err := a.ch.QueueDeclare(a.queue, true, false, false, false, nil)
		if err != nil {
			a.ensureErr = fmt.Errorf("failed to declare queue %s: %w", a.queue, err)
			return
		}
		a.logger.Info("queue ready", "queue", a.queue)
	})
	return a.ensureErr
}

// Consume implements Consumer. Deliveries are handled sequentially with
// manual acknowledgement. Handlers run on a context that is not canceled
// with ctx, so an in-flight job finishes during shutdown.
func (a *AMQP) Consume(ctx context.Context, h Handler) error {
	if err := a.ensure(); err != nil {
		return err
	}

	msgs, err := a.ch.ConsumeWithContext(ctx, a.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume from %s: %w", a.queue, err)
	}
	a.logger.Info("listening for jobs", "queue", a.queue)

	handlerCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("AMQP delivery channel closed")
			}
			h(handlerCtx, &amqpDelivery{msg: msg})
		}
	}
}

// Publish implements Publisher.
func (a *AMQP) Publish(ctx context.Context, jobID string, payload json.RawMessage) error {
	if err := a.ensure(); err != nil {
		return err
	}
	body, err := EncodeEnvelope(jobID, payload)
	if err != nil {
		return err
	}

	err = a.ch.PublishWithContext(ctx, "", a.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    jobID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish job %s: %w", jobID, err)
	}
	return nil
}

// Close closes the channel and connection.
func (a *AMQP) Close() error {
	var err error
	a.closeOnce.Do(func() {
		if a.ch != nil {
			_ = a.ch.Close()
		}
		if a.conn != nil {
			err = a.conn.Close()
		}
	})
	return err
}

type amqpDelivery struct {
	msg amqp.Delivery
}

func (d *amqpDelivery) Body() []byte { return d.msg.Body }

func (d *amqpDelivery) Ack() error { return d.msg.Ack(false) }

func (d *amqpDelivery) Nack(requeue bool) error { return d.msg.Nack(false, requeue) }
