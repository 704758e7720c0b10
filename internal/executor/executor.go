// Package executor delivers store commands to the game server.
//
// Delivery is one-way: Execute never reports whether the host accepted or
// ran the command. Failures are logged by the executor itself.
package executor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/config"
)

// Executor dispatches a command line to the host process.
type Executor interface {
	Execute(ctx context.Context, command string)
}

// Runner is implemented by executors that own a background loop.
// Run blocks until ctx is cancelled.
type Runner interface {
	Run(ctx context.Context) error
}

// New builds the executor selected by cfg.Mode.
func New(cfg config.ExecutorConfig, logger logrus.FieldLogger) (Executor, error) {
	switch cfg.Mode {
	case config.ModeShell:
		return NewShell(cfg.Shell, cfg.CommandTimeout, cfg.QueueSize, logger), nil
	case config.ModeWebRCON:
		return NewWebRCON(cfg.WebRCONURL, cfg.WebRCONPassword, logger)
	case config.ModeDryRun:
		return NewDryRun(logger), nil
	default:
		return nil, fmt.Errorf("unsupported executor mode %q", cfg.Mode)
	}
}

// DryRun logs commands without running them.
type DryRun struct {
	logger logrus.FieldLogger
}

func NewDryRun(logger logrus.FieldLogger) *DryRun {
	return &DryRun{logger: logger.WithField("executor", config.ModeDryRun)}
}

func (d *DryRun) Execute(_ context.Context, command string) {
	d.logger.WithField("command", command).Info("Dry run, command not executed")
}
