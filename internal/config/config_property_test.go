package config

import (
	"fmt"
	"os"
	"testing"

	"pgregory.net/rapid"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

var allEnvKeys = []string{"COMMANDS_FILE", "DUMP_INTERVAL", "LOG_LEVEL"}

func unsetAllConfigEnv() {
	for _, key := range allEnvKeys {
		os.Unsetenv(key)
	}
}

func TestProperty_ValidConfigParsing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		commandsFile := rapid.OneOf(
			rapid.Just(""),
			rapid.StringMatching(`[a-zA-Z0-9_./-]{1,20}`),
		).Draw(t, "commandsFile")

		dumpIntervalStr := rapid.OneOf(
			rapid.Just(""),
			rapid.Map(rapid.IntRange(1, 10000), func(v int) string { return fmt.Sprintf("%d", v) }),
		).Draw(t, "dumpInterval")

		logLevel := rapid.OneOf(
			rapid.Just(""),
			rapid.SampledFrom(validLogLevels),
		).Draw(t, "logLevel")

		if commandsFile != "" {
			os.Setenv("COMMANDS_FILE", commandsFile)
		}
		if dumpIntervalStr != "" {
			os.Setenv("DUMP_INTERVAL", dumpIntervalStr)
		}
		if logLevel != "" {
			os.Setenv("LOG_LEVEL", logLevel)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned error for valid inputs: %v", err)
		}

		expectedCommandsFile := "cmds.txt"
		if commandsFile != "" {
			expectedCommandsFile = commandsFile
		}
		if cfg.CommandsFile != expectedCommandsFile {
			t.Fatalf("CommandsFile = %q, want %q", cfg.CommandsFile, expectedCommandsFile)
		}

		expectedDumpInterval := 10
		if dumpIntervalStr != "" {
			fmt.Sscanf(dumpIntervalStr, "%d", &expectedDumpInterval)
		}
		if cfg.DumpInterval != expectedDumpInterval {
			t.Fatalf("DumpInterval = %d, want %d", cfg.DumpInterval, expectedDumpInterval)
		}

		expectedLogLevel := "info"
		if logLevel != "" {
			expectedLogLevel = logLevel
		}
		if cfg.LogLevel != expectedLogLevel {
			t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, expectedLogLevel)
		}
	})
}

func TestProperty_InvalidDumpIntervalReturnsError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		invalidDumpInterval := rapid.OneOf(
			rapid.StringMatching(`[a-zA-Z]{1,10}`),
			rapid.Map(rapid.IntRange(-1000, 0), func(v int) string { return fmt.Sprintf("%d", v) }),
		).Draw(t, "invalidDumpInterval")

		os.Setenv("DUMP_INTERVAL", invalidDumpInterval)

		_, err := Load()
		if err == nil {
			t.Fatalf("Load() should return error for invalid DUMP_INTERVAL %q", invalidDumpInterval)
		}
	})
}

func TestProperty_InvalidLogLevelReturnsError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		unsetAllConfigEnv()
		defer unsetAllConfigEnv()

		invalidLevel := rapid.StringMatching(`[a-z]{1,20}`).Filter(func(s string) bool {
			for _, v := range validLogLevels {
				if s == v {
					return false
				}
			}
			return s != ""
		}).Draw(t, "invalidLevel")

		os.Setenv("LOG_LEVEL", invalidLevel)

		_, err := Load()
		if err == nil {
			t.Fatalf("Load() should return error for invalid LOG_LEVEL %q", invalidLevel)
		}
	})
}
