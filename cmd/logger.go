package cmd

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/craftingstore/cs-agent/internal/config"
)

func buildLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Unknown log level, using info")
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
