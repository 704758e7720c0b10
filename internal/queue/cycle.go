package queue

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/executor"
	"github.com/craftingstore/cs-agent/internal/protocol"
)

// Cycle runs fetch, execute and acknowledge in strict sequence.
// It keeps no state between runs, so concurrent runs are safe.
type Cycle struct {
	transport Transport
	exec      executor.Executor
	logger    logrus.FieldLogger
}

func NewCycle(transport Transport, exec executor.Executor, logger logrus.FieldLogger) *Cycle {
	return &Cycle{
		transport: transport,
		exec:      exec,
		logger:    logger,
	}
}

// Run performs one cycle. The returned error is a *store.TransportError,
// *protocol.DecodeError or *protocol.ApplicationError, wrapped with the step
// that failed. Commands executed before a failed acknowledgement stay executed.
func (c *Cycle) Run(ctx context.Context) error {
	log := c.logger.WithField("cycle", uuid.NewString())

	items, err := c.fetch(ctx)
	if err != nil {
		return err
	}
	log.WithField("count", len(items)).Debug("Fetched queue")

	ids := NewProcessor(c.exec, log).Process(ctx, items)
	if len(ids) == 0 {
		return nil
	}

	if err := NewAcknowledger(c.transport, log).Acknowledge(ctx, ids); err != nil {
		return err
	}
	log.WithField("count", len(ids)).Info("Commands marked complete")
	return nil
}

func (c *Cycle) fetch(ctx context.Context) ([]protocol.QueueItem, error) {
	body, err := c.transport.Get(ctx, QueuePath)
	if err != nil {
		return nil, fmt.Errorf("fetch queue: %w", err)
	}
	env, err := protocol.Decode[[]protocol.QueueItem](body)
	if err != nil {
		return nil, fmt.Errorf("fetch queue: %w", err)
	}
	if err := env.Err(); err != nil {
		return nil, fmt.Errorf("fetch queue: %w", err)
	}
	return env.Result, nil
}
