package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"limitbook/internal/config"
	"limitbook/internal/manager"
	"limitbook/internal/parser"
)

func main() {
	cmdsFlag := flag.String("cmds", "", "path to the commands file (overrides COMMANDS_FILE)")
	dumpFlag := flag.Int("dump", 0, "number of commands between dumps (overrides DUMP_INTERVAL)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *cmdsFlag != "" {
		cfg.CommandsFile = *cmdsFlag
	}
	if *dumpFlag > 0 {
		cfg.DumpInterval = *dumpFlag
	}

	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	file, err := os.Open(cfg.CommandsFile)
	if err != nil {
		logger.Error("failed to open commands file", slog.String("path", cfg.CommandsFile), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer file.Close()

	mgr := manager.New(logger, os.Stdout)

	lineNo := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		cmd, err := parser.Parse(line)
		if err != nil {
			mgr.RecordParseError(err)
		} else {
			mgr.Apply(cmd)
		}

		if lineNo%cfg.DumpInterval == 0 {
			mgr.Dump(os.Stdout)
			mgr.PrintExceptions(os.Stdout)
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("error reading commands file", slog.String("error", err.Error()))
	}

	mgr.Dump(os.Stdout)
	mgr.PrintExceptions(os.Stdout)

	if mgr.ExceptionCount() > 0 {
		fmt.Fprintf(os.Stderr, "completed with %d rejected command(s)\n", mgr.ExceptionCount())
	}
}
