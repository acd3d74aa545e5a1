package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/dyike/mmv/internal/config"
	"github.com/dyike/mmv/internal/history"
	"github.com/dyike/mmv/internal/mmqcli"
	"github.com/dyike/mmv/internal/tui"
)

func main() {
	defaultConfig := "~/.mmv/config.yaml"
	if p, err := config.DefaultPath(); err == nil {
		defaultConfig = p
	}

	cmd := &cli.Command{
		Name:   "mmv",
		Usage:  "Terminal viewer for mmq document collections with search and live preview",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   defaultConfig,
				Sources: cli.EnvVars("MMV_CONFIG"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	configPath, err := config.ExpandPath(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var hist *history.Store
	if cfg.History.Path != "" {
		histPath, err := config.ExpandPath(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("resolve history path: %w", err)
		}
		hist, err = history.Open(histPath)
		if err != nil {
			// History is a convenience; run without it.
			logger.Warn("history disabled", slog.String("error", err.Error()))
			hist = nil
		}
	}
	defer hist.Close()

	dbPath, err := config.ExpandPath(cfg.MMQ.DB)
	if err != nil {
		return fmt.Errorf("resolve mmq db path: %w", err)
	}
	runner := &mmqcli.ExecRunner{
		Executable: cfg.MMQ.Executable,
		DBPath:     dbPath,
		Timeout:    cfg.MMQ.Timeout.Std(),
		Logger:     logger,
	}
	client := mmqcli.NewClient(runner)
	client.SearchLimit = cfg.TUI.SearchLimit

	model := tui.NewModel(ctx, client, hist, cfg, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}

// openLogger sets up the JSON file logger. The TUI owns the terminal, so
// stderr is not an option while the program runs.
func openLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if cfg.Log.Path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	logPath, err := config.ExpandPath(cfg.Log.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve log path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	return logger, func() { _ = f.Close() }, nil
}
