// Package stream carries colour samples and heart-rate estimates over
// NATS as JSON messages.
package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Connect dials a NATS server with reconnects enabled.
func Connect(url, name string) (*nats.Conn, error) {
	return nats.Connect(
		url,
		nats.Name(name),
		nats.Timeout(3*time.Second),
		nats.ReconnectWait(500*time.Millisecond),
		nats.MaxReconnects(-1),
	)
}

// Publisher is the publishing half of *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Serve subscribes to in, feeds every message through p and publishes
// results to out until ctx is cancelled. NATS delivers a subscription's
// messages on one goroutine, so p sees them in order.
func Serve(ctx context.Context, nc *nats.Conn, in, out string, p *Processor, logger *slog.Logger) error {
	sub, err := nc.Subscribe(in, func(msg *nats.Msg) {
		if err := p.Forward(nc, out, msg.Data); err != nil {
			logger.Warn("dropping message", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("stream: subscribe %s: %w", in, err)
	}

	logger.Info("serving", "in", in, "out", out)

	<-ctx.Done()

	if err := sub.Unsubscribe(); err != nil {
		logger.Warn("unsubscribe", "error", err)
	}

	return nc.Drain()
}
