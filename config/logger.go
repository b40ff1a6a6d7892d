package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus instance. Call before anything
// that logs.
func InitLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(GetEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
