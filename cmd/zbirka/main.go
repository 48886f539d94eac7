package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/erazemk/zbirka/internal/api"
	"github.com/erazemk/zbirka/internal/config"
	"github.com/erazemk/zbirka/internal/db"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	level  slog.Leveler
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level.Level()
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string, level slog.Level) (func(), error) {
	opts := &slog.HandlerOptions{Level: level}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		level:  level,
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fset := flag.NewFlagSet("zbirka", flag.ContinueOnError)

	fset.StringVar(&cfg.DB, "db", cfg.DB, "")
	fset.StringVar(&cfg.DB, "d", cfg.DB, "")

	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fset.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fset.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fset.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fset.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: zbirka [flags]

Flags:
  -d, -db <path>          SQLite database path (default: zbirka.sqlite3, env ZBIRKA_DB)
  -a, -addr <host:port>   listen address (default: 127.0.0.1:3456, env ZBIRKA_ADDR)
  -l, -log <path>         log file path (default: no file, env ZBIRKA_LOG)
  -h, -help               show this help and exit

Environment:
  ZBIRKA_LOG_LEVEL        debug, info, warn or error (default: info)
  ZBIRKA_MAX_UPLOAD_MB    request body limit for uploads (default: 50)
  ZBIRKA_CORS_ORIGINS     comma-separated allowed origins
  ZBIRKA_SHUTDOWN_TIMEOUT graceful shutdown timeout (default: 5s)
`)
	}

	if err := fset.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fset.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fset.Arg(0))
		fset.Usage()
		os.Exit(1)
	}

	level, _ := cfg.Level()
	closeLog, err := setupLogger(cfg.LogPath, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	_, statErr := os.Stat(cfg.DB)
	created := os.IsNotExist(statErr)
	if created {
		if err := db.EnsureDir(cfg.DB); err != nil {
			slog.Error("failed to create database directory", "error", err)
			os.Exit(1)
		}
	}

	database, err := db.Open(cfg.DB)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.EnsureSchema(database); err != nil {
		slog.Error("failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	if created {
		fmt.Printf("Database created: %s\n", cfg.DB)
	}
	slog.Info("database ready", "path", cfg.DB)

	handler := api.NewRouter(database, api.RouterConfig{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		CORSOrigins:    cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}
