package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix           = "emailgend:queue:"
	defaultBlockTimeout = 5 * time.Second
	defaultHeartbeatTTL = 30 * time.Second
	errorBackoff        = time.Second
)

// RedisConfig configures the Redis list transport.
type RedisConfig struct {
	Queue string
	// BlockTimeout bounds each blocking pop so shutdown is noticed promptly.
	BlockTimeout time.Duration
	// HeartbeatTTL is how long a consumer may go without refreshing its
	// heartbeat before its in-flight messages are considered stranded.
	HeartbeatTTL time.Duration
	Logger       *slog.Logger
}

// Redis is a reliable list queue. Each instance has its own consumer id and
// processing list: a pop atomically moves the message there and Ack removes
// it. While Consume runs, the instance refreshes a heartbeat key; Recover
// only requeues processing lists whose heartbeat has expired, so workers
// sharing a queue never steal each other's in-flight messages.
//
// All keys of one queue share a hash tag so list moves stay within one
// cluster slot.
type Redis struct {
	client     redis.UniversalClient
	id         string
	base       string
	pending    string
	processing string
	heartbeat  string
	consumers  string
	timeout    time.Duration
	ttl        time.Duration
	logger     *slog.Logger
}

// NewRedis creates a Redis queue on an existing client. The client is owned
// by the caller.
func NewRedis(client redis.UniversalClient, cfg RedisConfig) *Redis {
	name := cfg.Queue
	if name == "" {
		name = DefaultQueueName
	}
	timeout := cfg.BlockTimeout
	if timeout <= 0 {
		timeout = defaultBlockTimeout
	}
	ttl := cfg.HeartbeatTTL
	if ttl <= 0 {
		ttl = defaultHeartbeatTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	base := keyPrefix + "{" + name + "}"
	return &Redis{
		client:     client,
		id:         id,
		base:       base,
		pending:    base,
		processing: processingKey(base, id),
		heartbeat:  heartbeatKey(base, id),
		consumers:  base + ":consumers",
		timeout:    timeout,
		ttl:        ttl,
		logger:     logger.With("consumer_id", id),
	}
}

func processingKey(base, id string) string { return base + ":processing:" + id }

func heartbeatKey(base, id string) string { return base + ":heartbeat:" + id }

// Publish implements Publisher.
func (r *Redis) Publish(ctx context.Context, jobID string, payload json.RawMessage) error {
	body, err := EncodeEnvelope(jobID, payload)
	if err != nil {
		return err
	}
	if err := r.client.LPush(ctx, r.pending, body).Err(); err != nil {
		return fmt.Errorf("failed to publish job %s: %w", jobID, err)
	}
	return nil
}

// Recover requeues the messages of every registered consumer whose heartbeat
// has expired, including this instance when it is not consuming. Recovered
// messages go to the front of the pending list in their original order.
// It returns how many messages were moved.
func (r *Redis) Recover(ctx context.Context) (int, error) {
	ids, err := r.client.SMembers(ctx, r.consumers).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list consumers: %w", err)
	}

	moved := 0
	for _, id := range ids {
		alive, err := r.client.Exists(ctx, heartbeatKey(r.base, id)).Result()
		if err != nil {
			return moved, fmt.Errorf("failed to check consumer %s: %w", id, err)
		}
		if alive > 0 {
			continue
		}

		n, err := r.drain(ctx, processingKey(r.base, id))
		moved += n
		if err != nil {
			return moved, err
		}
		if err := r.client.SRem(ctx, r.consumers, id).Err(); err != nil {
			return moved, fmt.Errorf("failed to unregister consumer %s: %w", id, err)
		}
	}
	return moved, nil
}

// drain moves a processing list back to the pending list. The newest entry
// sits at the head of a processing list, so moving head-first onto the
// consuming end leaves the oldest entry next in line.
func (r *Redis) drain(ctx context.Context, list string) (int, error) {
	moved := 0
	for {
		err := r.client.LMove(ctx, list, r.pending, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("failed to requeue stranded jobs: %w", err)
		}
		moved++
	}
}

// Consume implements Consumer.
func (r *Redis) Consume(ctx context.Context, h Handler) error {
	if err := r.beat(ctx); err != nil {
		return err
	}
	if err := r.client.SAdd(ctx, r.consumers, r.id).Err(); err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}
	defer r.retire()

	moved, err := r.Recover(ctx)
	if err != nil {
		return err
	}
	if moved > 0 {
		r.logger.Warn("requeued stranded jobs", "count", moved, "queue", r.pending)
	}

	beatCtx, stopBeat := context.WithCancel(context.WithoutCancel(ctx))
	beatDone := make(chan struct{})
	go func() {
		defer close(beatDone)
		r.keepAlive(beatCtx)
	}()
	// Runs before retire, so no refresh can land after the heartbeat is dropped.
	defer func() {
		stopBeat()
		<-beatDone
	}()

	r.logger.Info("listening for jobs", "queue", r.pending)

	handlerCtx := context.WithoutCancel(ctx)
	for {
		if ctx.Err() != nil {
			return nil
		}

		body, err := r.client.BLMove(ctx, r.pending, r.processing, "RIGHT", "LEFT", r.timeout).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("error pulling job", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(errorBackoff):
			}
			continue
		}

		h(handlerCtx, &redisDelivery{queue: r, body: body})
	}
}

func (r *Redis) beat(ctx context.Context) error {
	if err := r.client.Set(ctx, r.heartbeat, time.Now().UTC().Format(time.RFC3339), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write consumer heartbeat: %w", err)
	}
	return nil
}

func (r *Redis) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.beat(ctx); err != nil && ctx.Err() == nil {
				r.logger.Warn("heartbeat refresh failed", "error", err)
			}
		}
	}
}

// retire drops the heartbeat so unacked messages left in this consumer's
// processing list become recoverable right away.
func (r *Redis) retire() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.client.Del(ctx, r.heartbeat).Err(); err != nil {
		r.logger.Warn("failed to drop consumer heartbeat", "error", err)
	}
}

// Close is a no-op; the client is owned by the caller.
func (r *Redis) Close() error {
	return nil
}

type redisDelivery struct {
	queue *Redis
	body  string
}

func (d *redisDelivery) Body() []byte { return []byte(d.body) }

func (d *redisDelivery) Ack() error {
	if err := d.queue.client.LRem(context.Background(), d.queue.processing, 1, d.body).Err(); err != nil {
		return fmt.Errorf("failed to ack: %w", err)
	}
	return nil
}

// Nack drops the message, or with requeue moves it back to the tail of the
// pending list so it is picked up again after the current backlog.
func (d *redisDelivery) Nack(requeue bool) error {
	ctx := context.Background()
	_, err := d.queue.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, d.queue.processing, 1, d.body)
		if requeue {
			pipe.LPush(ctx, d.queue.pending, d.body)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to nack: %w", err)
	}
	return nil
}
