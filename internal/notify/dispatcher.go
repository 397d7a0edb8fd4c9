package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults for Dispatcher.
const (
	DefaultConcurrency = 5
	DefaultSendTimeout = 10 * time.Second
)

// Result is the outcome of one message.
type Result struct {
	Message Message
	Err     error
}

// Dispatcher sends messages with bounded concurrency and a per-message timeout.
type Dispatcher struct {
	sender      Sender
	concurrency int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewDispatcher creates a dispatcher. A nil sender makes every send fail with ErrNotConfigured.
func NewDispatcher(sender Sender, concurrency int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{sender: sender, concurrency: concurrency, timeout: timeout, logger: logger}
}

// Configured reports whether a sender is available.
func (d *Dispatcher) Configured() bool {
	return d != nil && d.sender != nil
}

// Send delivers one message within the per-message timeout.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	if !d.Configured() {
		return ErrNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.sender.Send(ctx, msg)
}

// Dispatch sends every message and returns one Result per message, in input order.
// A failed send never stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, msgs []Message) []Result {
	results := make([]Result, len(msgs))
	for i, m := range msgs {
		results[i].Message = m
	}
	if !d.Configured() {
		for i := range results {
			results[i].Err = ErrNotConfigured
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i := range msgs {
		i := i
		g.Go(func() error {
			err := d.Send(ctx, msgs[i])
			if err != nil {
				d.logger.Warn("invite email failed", zap.Int("index", i), zap.Error(err))
			}
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()
	return results
}
