//go:build linux

package cmd

import (
	"errors"
	"syscall"

	"github.com/sirupsen/logrus"
)

const prSetNoNewPrivs = 38

// setNoNewPrivs sets PR_SET_NO_NEW_PRIVS so store commands run by the shell
// executor cannot gain privileges through setuid/setgid binaries.
// The flag is per thread, so it is applied to every runtime thread when the
// binary is built without cgo.
func setNoNewPrivs(logger logrus.FieldLogger) {
	_, _, errno := syscall.AllThreadsSyscall(syscall.SYS_PRCTL, prSetNoNewPrivs, 1, 0)
	if errors.Is(errno, syscall.ENOTSUP) {
		_, _, errno = syscall.RawSyscall(syscall.SYS_PRCTL, prSetNoNewPrivs, 1, 0)
	}
	if errno != 0 {
		logger.WithError(errno).Warn("Failed to set PR_SET_NO_NEW_PRIVS")
	}
}
