package i

import "context"

// StepController is the capability an external motion executor exposes to
// the route driver. SendAndAwait sends one command token on the outbound
// channel and blocks until one acknowledgement arrives on the inbound
// channel. Implementations must keep strict alternation: exactly one send
// followed by one receive, never two commands in flight.
type StepController interface {
	SendAndAwait(ctx context.Context, token string) error
}
