// Package notify fans published scoreboards out to subscribers.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/okian/housecup/internal/domain/types"
	"github.com/okian/housecup/pkg/logger"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "housecup.scoreboard"

// ErrNoConnection is returned when a notifier has nothing to publish to.
var ErrNoConnection = errors.New("no nats connection")

// Update is the message published for every new scoreboard revision.
// Subscribers should ignore updates older than the last one they applied.
type Update struct {
	Revision    uint64                      `json:"revision"`
	Totals      map[string]int64            `json:"totals"`
	Breakdown   map[string]map[string]int64 `json:"breakdown"`
	Ranking     []types.Standing            `json:"ranking"`
	PublishedAt time.Time                   `json:"published_at"`
}

// Nop discards every update.
type Nop struct{}

// Notify implements worker.Notifier.
func (Nop) Notify(context.Context, types.Board) error { return nil }

// Close implements io.Closer.
func (Nop) Close() error { return nil }

// publisher is the subset of *nats.Conn the notifier needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes scoreboard updates on a NATS subject.
type NATSNotifier struct {
	nc      *nats.Conn
	pub     publisher
	subject string
	logger  logger.Logger
}

// NewNATSNotifier connects to url and publishes on subject.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	nc, err := nats.Connect(url,
		nats.Name("housecup"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	n := newNATSNotifier(nc, subject)
	n.nc = nc
	n.logger.Info(context.Background(), "connected to nats",
		logger.String("url", nc.ConnectedUrlRedacted()),
		logger.String("subject", n.subject),
	)
	return n, nil
}

func newNATSNotifier(pub publisher, subject string) *NATSNotifier {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSNotifier{
		pub:     pub,
		subject: subject,
		logger:  logger.Get().Named("notify"),
	}
}

// Subject returns the subject updates are published on.
func (n *NATSNotifier) Subject() string {
	return n.subject
}

// Notify implements worker.Notifier.
func (n *NATSNotifier) Notify(ctx context.Context, b types.Board) error {
	if n.pub == nil {
		return ErrNoConnection
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(Update{
		Revision:    b.Revision,
		Totals:      b.Totals,
		Breakdown:   b.Breakdown,
		Ranking:     b.Ranking,
		PublishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", n.subject, err)
	}
	n.logger.Debug(ctx, "scoreboard update published",
		logger.Uint64("revision", b.Revision),
		logger.Int("bytes", len(data)),
	)
	return nil
}

// Close drains and closes the NATS connection.
func (n *NATSNotifier) Close() error {
	if n.nc == nil {
		return nil
	}
	return n.nc.Drain()
}
