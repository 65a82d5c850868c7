// Command webui serves the session API and the browser front end.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	slogmulti "github.com/samber/slog-multi"

	"tinybf/pkg/session"
	"tinybf/pkg/webui"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	staticDir := flag.String("static", "", "directory with the browser front end, served at /")
	historyLimit := flag.Int("history-limit", 200, "default snapshot history capacity per session")
	maxSteps := flag.Int("max-steps", 5_000_000, "default step ceiling per session (0 means unlimited)")
	logFile := flag.String("log-file", "", "append JSON logs to this file in addition to stderr")
	flag.Parse()

	logger, closeLog, err := buildLogger(*logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	server := webui.NewServer(session.NewStore(),
		webui.WithLogger(logger),
		webui.WithStaticDir(*staticDir),
		webui.WithDefaultHistoryLimit(*historyLimit),
		webui.WithDefaultMaxSteps(*maxSteps))

	logger.Info("listening", "addr", *addr, "static", *staticDir)
	if err := http.ListenAndServe(*addr, server.Handler()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildLogger fans out to a text handler on stderr and, when a path is
// given, a JSON handler appending to that file.
func buildLogger(path string) (*slog.Logger, func(), error) {
	stderr := slog.NewTextHandler(os.Stderr, nil)
	if path == "" {
		return slog.New(stderr), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slogmulti.Fanout(
		stderr,
		slog.NewJSONHandler(f, nil),
	)
	return slog.New(handler), func() { f.Close() }, nil
}
