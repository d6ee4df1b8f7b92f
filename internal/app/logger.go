package app

import "strings"

import "github.com/mchen88/cartly/pkg/logger"

// ConfigureLogging initialises the global logger from server.log_level
// and server.log_format, defaulting to info-level JSON.
func ConfigureLogging(level, format string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		level = "info"
	}
	return logger.Configure(logger.Options{Level: level, Format: format})
}
