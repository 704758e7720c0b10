package executor

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/config"
)

// Result describes one finished shell command.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// Shell runs commands through a shell, one at a time and in dispatch order.
// Execute only enqueues; the work happens in Run.
type Shell struct {
	shell   string
	timeout time.Duration
	queue   chan string
	logger  logrus.FieldLogger
}

func NewShell(shell string, timeout time.Duration, queueSize int, logger logrus.FieldLogger) *Shell {
	if timeout <= 0 {
		timeout = config.DefaultCommandTimeout
	}
	if queueSize <= 0 {
		queueSize = config.DefaultQueueSize
	}
	return &Shell{
		shell:   shell,
		timeout: timeout,
		queue:   make(chan string, queueSize),
		logger:  logger.WithField("executor", config.ModeShell),
	}
}

func (s *Shell) Execute(ctx context.Context, command string) {
	// Enqueue even if ctx is already done, as long as there is room.
	select {
	case s.queue <- command:
		return
	default:
	}
	select {
	case s.queue <- command:
	case <-ctx.Done():
		s.logger.WithField("command", command).Warn("Shutting down, command dropped")
	}
}

// Run executes queued commands until ctx is cancelled, then drains what is
// left in the queue. Commands already acknowledged to the store must still run.
func (s *Shell) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return nil
		case command := <-s.queue:
			s.report(s.run(command))
		}
	}
}

func (s *Shell) drain() {
	for {
		select {
		case command := <-s.queue:
			s.report(s.run(command))
		default:
			return
		}
	}
}

// run does not use the Run context: a cancelled agent lets the running command finish.
func (s *Shell) run(command string) Result {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	startTime := time.Now()

	// Capture output with size limit to prevent OOM on chatty commands
	stdout := newLimitedBuffer(0)
	stderr := newLimitedBuffer(0)

	cmd := exec.CommandContext(ctx, s.shell, "-c", command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()

	res := Result{
		Command:  command,
		Duration: time.Since(startTime),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -1
		}
		res.Err = err
	}
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return res
}

func (s *Shell) report(res Result) {
	entry := s.logger.WithFields(logrus.Fields{
		"command":     res.Command,
		"exit_code":   res.ExitCode,
		"duration_ms": res.Duration.Milliseconds(),
	})
	if res.Stdout != "" {
		entry = entry.WithField("stdout", res.Stdout)
	}
	if res.Stderr != "" {
		entry = entry.WithField("stderr", res.Stderr)
	}
	if res.Err != nil {
		entry.WithError(res.Err).Warn("Command failed")
		return
	}
	entry.Debug("Command finished")
}
