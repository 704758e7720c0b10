// Package queue implements one poll cycle against the store: fetch the
// pending command queue, execute it, and acknowledge what was executed.
package queue

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/executor"
	"github.com/craftingstore/cs-agent/internal/protocol"
)

// Processor executes queue items against the host.
type Processor struct {
	exec   executor.Executor
	logger logrus.FieldLogger
}

func NewProcessor(exec executor.Executor, logger logrus.FieldLogger) *Processor {
	return &Processor{exec: exec, logger: logger}
}

// Process dispatches every item in the order received and returns the ids
// to acknowledge. An id is recorded before its command is dispatched and
// regardless of what the host does with it.
//
// Processing the same item twice dispatches it twice; the store deleting
// acknowledged items is the only deduplication.
func (p *Processor) Process(ctx context.Context, items []protocol.QueueItem) []int {
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)

		p.logger.WithFields(logrus.Fields{
			"item_id": item.ID,
			"package": item.PackageName,
		}).Infof("Executing command: %s", item.Command)
		p.exec.Execute(ctx, item.Command)
	}
	return ids
}
