// Package controller provides transports for the step command protocol:
// each move is serialized as a textual token, sent on an outbound channel,
// and the driver blocks until one acknowledgement arrives on the paired
// inbound channel. The acknowledgement payload is not interpreted beyond
// having been received.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Controller transport errors.
var (
	ErrNoAck = errors.New("no acknowledgement received")
)

// RedisOption configures a RedisController.
type RedisOption func(*RedisController)

// RedisController exchanges step commands over a pair of Redis lists:
// commands are pushed onto the command key, acknowledgements are popped
// from the ack key with a blocking read.
type RedisController struct {
	client     *redis.Client
	commandKey string
	ackKey     string
	ackTimeout time.Duration // 0 blocks until an ack arrives or ctx ends
	logger     *logrus.Entry
	mu         sync.Mutex // enforces one command in flight
}

// NewRedisController creates a redis-backed step controller talking to the
// executor through the given command and acknowledgement keys.
func NewRedisController(client *redis.Client, commandKey, ackKey string, options ...RedisOption) *RedisController {
	c := &RedisController{
		client:     client,
		commandKey: commandKey,
		ackKey:     ackKey,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.logger = logrus.NewEntry(l)
	}

	return c
}

// SendAndAwait pushes the command token and blocks for the executor's
// acknowledgement. The lock guarantees strict per-step alternation.
func (c *RedisController) SendAndAwait(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.client.RPush(ctx, c.commandKey, token).Err(); err != nil {
		return fmt.Errorf("sending command %q: %w", token, err)
	}
	c.logger.WithField("command", token).Debug("command sent")

	ack, err := c.client.BLPop(ctx, c.ackTimeout, c.ackKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("%w for command %q", ErrNoAck, token)
		}
		return fmt.Errorf("awaiting acknowledgement for %q: %w", token, err)
	}

	// BLPop returns the key and the popped value.
	if len(ack) > 1 {
		c.logger.WithField("ack", ack[1]).Debug("acknowledgement received")
	}
	return nil
}

// RedisWithAckTimeout bounds how long a step waits for its acknowledgement.
// Zero keeps the original unbounded behavior.
func RedisWithAckTimeout(t time.Duration) RedisOption {
	return func(c *RedisController) {
		c.ackTimeout = t
	}
}

// RedisWithLogger sets the logger.
func RedisWithLogger(l *logrus.Entry) RedisOption {
	return func(c *RedisController) {
		c.logger = l
	}
}
