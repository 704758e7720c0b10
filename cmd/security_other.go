//go:build !linux

package cmd

import "github.com/sirupsen/logrus"

// setNoNewPrivs is a no-op outside Linux.
func setNoNewPrivs(logrus.FieldLogger) {}
