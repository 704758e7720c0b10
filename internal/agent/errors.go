package agent

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/protocol"
	"github.com/craftingstore/cs-agent/internal/store"
)

// logCycleError writes one log line for a failed cycle. Nothing is retried
// here; the next tick polls again.
func logCycleError(logger logrus.FieldLogger, err error) {
	var (
		transportErr *store.TransportError
		decodeErr    *protocol.DecodeError
		appErr       *protocol.ApplicationError
	)

	switch {
	case errors.Is(err, context.Canceled):
		logger.WithError(err).Debug("Cycle cancelled")
	case errors.As(err, &appErr):
		logger.WithFields(logrus.Fields{
			"response_id": appErr.ID,
			"code":        appErr.Code,
		}).Errorf("Got error: %s", appErr.Message)
	case errors.As(err, &transportErr):
		entry := logger.WithError(err)
		if transportErr.StatusCode != 0 {
			entry = entry.WithField("status", transportErr.StatusCode)
		}
		entry.Error("Got error: invalid response returned, please contact CraftingStore if this error persists")
	case errors.As(err, &decodeErr):
		logger.WithError(err).Error("Got error: malformed response returned, please contact CraftingStore if this error persists")
	default:
		logger.WithError(err).Error("Cycle failed")
	}
}
