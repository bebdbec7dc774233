package controller

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newExecutor binds a loopback datagram socket standing in for the external
// motion executor.
func newExecutor(t *testing.T) *net.UDPConn {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestUDPControllerSendAndAwait(t *testing.T) {
	executor := newExecutor(t)

	ctrl, err := NewUDPController("127.0.0.1:0", executor.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close() })

	received := make(chan string, 1)
	go func() {
		buf := make([]byte, 64)
		n, addr, err := executor.ReadFromUDP(buf)
		if err != nil {
			return
		}
		received <- string(buf[:n])
		_, _ = executor.WriteToUDP([]byte("DONE"), addr)
	}()

	require.NoError(t, ctrl.SendAndAwait(context.Background(), "DOWN"))
	assert.Equal(t, "DOWN", <-received)
}

func TestUDPControllerAckTimeout(t *testing.T) {
	executor := newExecutor(t)

	ctrl, err := NewUDPController("127.0.0.1:0", executor.LocalAddr().String(),
		UDPWithAckTimeout(50*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close() })

	// The executor never acknowledges.
	err = ctrl.SendAndAwait(context.Background(), "UP")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoAck)
}

func TestUDPControllerContextCancel(t *testing.T) {
	executor := newExecutor(t)

	ctrl, err := NewUDPController("127.0.0.1:0", executor.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctrl.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = ctrl.SendAndAwait(ctx, "RIGHT")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUDPControllerBadExecutorAddress(t *testing.T) {
	_, err := NewUDPController("127.0.0.1:0", "not-an-address")
	assert.Error(t, err)
}
