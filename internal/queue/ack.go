package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/protocol"
)

const (
	QueuePath        = "queue"
	MarkCompletePath = "queue/markComplete"
)

// Transport is the store client used by a cycle.
type Transport interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Post(ctx context.Context, path, form string) ([]byte, error)
}

// Acknowledger reports executed ids back to the store.
type Acknowledger struct {
	transport Transport
	logger    logrus.FieldLogger
}

func NewAcknowledger(transport Transport, logger logrus.FieldLogger) *Acknowledger {
	return &Acknowledger{transport: transport, logger: logger}
}

// Acknowledge posts ids to the store once. A failure is returned but never
// retried: the store keeps the items and returns them on the next fetch.
func (a *Acknowledger) Acknowledge(ctx context.Context, ids []int) error {
	body, err := a.transport.Post(ctx, MarkCompletePath, protocol.EncodeRemoveIDs(ids))
	if err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	env, err := protocol.Decode[json.RawMessage](body)
	if err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}
	if err := env.Err(); err != nil {
		return fmt.Errorf("mark complete: %w", err)
	}

	a.logger.WithField("count", len(ids)).Debug("Marked commands complete")
	return nil
}
