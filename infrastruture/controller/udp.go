package controller

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultReadBufferSize = 512

// UDPOption configures a UDPController.
type UDPOption func(*UDPController)

// UDPController exchanges step commands over a pair of datagram endpoints:
// one command out to the executor's address, one blocking read on the local
// response socket. The channel is assumed reliable and ordered once both
// sides are connected.
type UDPController struct {
	conn           *net.UDPConn
	executor       *net.UDPAddr
	readBufferSize int
	ackTimeout     time.Duration // 0 blocks until an ack arrives or ctx ends
	logger         *logrus.Entry
	mu             sync.Mutex // enforces one command in flight
}

// NewUDPController binds the local response endpoint and resolves the
// executor's command endpoint.
func NewUDPController(listenAddr, executorAddr string, options ...UDPOption) (*UDPController, error) {
	executor, err := net.ResolveUDPAddr("udp", executorAddr)
	if err != nil {
		return nil, fmt.Errorf("resolving executor address: %w", err)
	}

	local, err := net.ResolveUDPAddr("udp", listenAddr)
	if err != nil {
		return nil, fmt.Errorf("resolving response address: %w", err)
	}

	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, err
	}

	c := &UDPController{
		conn:           conn,
		executor:       executor,
		readBufferSize: defaultReadBufferSize,
	}

	for _, opt := range options {
		opt(c)
	}

	if c.logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.logger = logrus.NewEntry(l)
	}

	c.logger.WithFields(logrus.Fields{
		"listen":   conn.LocalAddr().String(),
		"executor": executor.String(),
	}).Info("controller channel open")

	return c, nil
}

// LocalAddr returns the bound response endpoint.
func (c *UDPController) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// SendAndAwait writes the command token to the executor and blocks for one
// response datagram. The lock guarantees strict per-step alternation.
func (c *UDPController) SendAndAwait(ctx context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.WriteToUDP([]byte(token), c.executor); err != nil {
		return fmt.Errorf("sending command %q: %w", token, err)
	}
	c.logger.WithField("command", token).Debug("command sent")

	var deadline time.Time
	if c.ackTimeout > 0 {
		deadline = time.Now().Add(c.ackTimeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	// Unblock the read if the caller gives up first.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Unix(0, 1))
	})
	defer stop()

	buf := make([]byte, c.readBufferSize)
	n, _, err := c.conn.ReadFromUDP(buf)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("awaiting acknowledgement for %q: %w", token, ctx.Err())
		}
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return fmt.Errorf("%w for command %q", ErrNoAck, token)
		}
		return fmt.Errorf("awaiting acknowledgement for %q: %w", token, err)
	}

	c.logger.WithField("ack", string(buf[:n])).Debug("acknowledgement received")
	return nil
}

// Close releases the response socket.
func (c *UDPController) Close() error {
	return c.conn.Close()
}

// UDPWithAckTimeout bounds how long a step waits for its acknowledgement.
// Zero keeps the original unbounded behavior.
func UDPWithAckTimeout(t time.Duration) UDPOption {
	return func(c *UDPController) {
		c.ackTimeout = t
	}
}

// UDPWithReadBufferSize sets the acknowledgement read buffer size.
func UDPWithReadBufferSize(size int) UDPOption {
	return func(c *UDPController) {
		c.readBufferSize = size
	}
}

// UDPWithLogger sets the logger.
func UDPWithLogger(l *logrus.Entry) UDPOption {
	return func(c *UDPController) {
		c.logger = l
	}
}
