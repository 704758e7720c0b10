package agent

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/craftingstore/cs-agent/internal/config"
	"github.com/craftingstore/cs-agent/internal/executor"
	"github.com/craftingstore/cs-agent/internal/queue"
	"github.com/craftingstore/cs-agent/internal/store"
)

type Agent struct {
	cfg       config.Config
	logger    logrus.FieldLogger
	exec      executor.Executor
	cycle     *queue.Cycle
	scheduler *Scheduler
}

type Option func(*options)

type options struct {
	exec executor.Executor
}

// WithExecutor replaces the executor selected by the config.
func WithExecutor(e executor.Executor) Option {
	return func(o *options) { o.exec = e }
}

// New wires an agent from cfg. It returns config.ErrNotConfigured, before
// touching the network, when the API token is unset or still the placeholder.
func New(cfg config.Config, logger logrus.FieldLogger, opts ...Option) (*Agent, error) {
	if err := cfg.CheckToken(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	exec := o.exec
	if exec == nil {
		var err error
		exec, err = executor.New(cfg.Executor, logger)
		if err != nil {
			return nil, fmt.Errorf("executor: %w", err)
		}
	}

	client := store.NewClient(cfg.BaseURL, cfg.Token, cfg.RequestTimeout)
	cycle := queue.NewCycle(client, exec, logger)

	return &Agent{
		cfg:       cfg,
		logger:    logger,
		exec:      exec,
		cycle:     cycle,
		scheduler: NewScheduler(cycle, cfg.PollInterval, logger),
	}, nil
}

// Run polls the store until ctx is cancelled. In-flight cycles finish, then
// the executor is stopped so commands dispatched by those cycles still run.
func (a *Agent) Run(ctx context.Context) error {
	a.logger.WithFields(logrus.Fields{
		"base_url": a.cfg.BaseURL,
		"interval": a.cfg.PollInterval,
		"executor": a.cfg.Executor.Mode,
	}).Info("CraftingStore agent starting")

	return a.withExecutor(func() error {
		return a.scheduler.Run(ctx)
	})
}

// RunOnce performs a single cycle and returns its error after logging it.
func (a *Agent) RunOnce(ctx context.Context) error {
	return a.withExecutor(func() error {
		err := a.cycle.Run(ctx)
		if err != nil {
			logCycleError(a.logger, err)
		}
		return err
	})
}

func (a *Agent) withExecutor(fn func() error) error {
	execCtx, stopExec := context.WithCancel(context.Background())
	defer stopExec()

	var g errgroup.Group
	if r, ok := a.exec.(executor.Runner); ok {
		g.Go(func() error {
			return r.Run(execCtx)
		})
	}
	g.Go(func() error {
		defer stopExec()
		return fn()
	})

	err := g.Wait()
	a.logger.Info("CraftingStore agent stopped")
	return err
}
