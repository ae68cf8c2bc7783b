package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/jgivc/pageindex/internal/app"
	"github.com/jgivc/pageindex/internal/common"
	"github.com/jgivc/pageindex/internal/config"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"pageindex.yml"`
	Dir     string `short:"C" help:"Directory to index (overrides root from config)"`
	Output  string `short:"o" help:"Output file name inside the indexed directory"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Build struct{} `cmd:"" default:"1" help:"Generate the index once"`

	Watch struct{} `cmd:"" help:"Regenerate the index whenever a page changes"`

	Serve struct {
		Listen string `short:"l" help:"Listen address (overrides serve.listen from config)"`
	} `cmd:"" help:"Serve the indexed directory and rebuild on POST /rebuild/"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("pageindex"),
		kong.Description("Generate a static index page for the HTML pages below a directory."),
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	if CLI.Dir != "" {
		cfg.Root = CLI.Dir
	}
	if CLI.Output != "" {
		cfg.OutputFileName = CLI.Output
	}
	if CLI.Verbose {
		cfg.LogLevel = config.LogLevelDebug
	}
	if CLI.Serve.Listen != "" {
		cfg.Serve.Listen = CLI.Serve.Listen
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, kctx.Command(), a, cfg, logger); err != nil {
		logger.Error("Command failed", "command", kctx.Command(), "error", err)
		_ = a.Close()
		os.Exit(1)
	}

	if err := a.Close(); err != nil {
		logger.Warn("Cannot close state store", "error", err)
	}
}

func run(ctx context.Context, command string, a *app.App, cfg *config.Config, logger *slog.Logger) error {
	switch command {
	case "watch", "serve":
		go rebuildOnSignal(ctx, a, logger)
	}

	switch command {
	case "watch":
		return a.Watch(ctx)
	case "serve":
		return a.Serve(ctx, cfg.Serve.Listen)
	default:
		_, err := a.Build(ctx)

		return err
	}
}

// rebuildOnSignal forces a rebuild on SIGUSR1 while a long running command is active.
func rebuildOnSignal(ctx context.Context, a *app.App, logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR1)
	defer signal.Stop(c)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c:
			if _, err := a.Build(ctx); err != nil && !errors.Is(err, common.ErrBuildInProgress) {
				logger.Error("Rebuild failed", "error", err)
			}
		}
	}
}
