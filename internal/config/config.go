package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the limit book driver.
type Config struct {
	CommandsFile string
	DumpInterval int
	LogLevel     string
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	commandsFile := getStr("COMMANDS_FILE", "cmds.txt")

	dumpInterval, err := getInt("DUMP_INTERVAL", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid DUMP_INTERVAL: %w", err)
	}
	if dumpInterval <= 0 {
		return nil, fmt.Errorf("invalid DUMP_INTERVAL: must be positive, got %d", dumpInterval)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	return &Config{
		CommandsFile: commandsFile,
		DumpInterval: dumpInterval,
		LogLevel:     logLevel,
	}, nil
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
