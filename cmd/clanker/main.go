package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/appengine-ltd/clanker-quest/internal/config"
	"github.com/appengine-ltd/clanker-quest/internal/game"
	"github.com/appengine-ltd/clanker-quest/internal/logging"
	"github.com/appengine-ltd/clanker-quest/internal/tui"
)

// version, commit, date are injected at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	configPath  string
	useTUI      bool
	logLevel    string
	logFile     string
	watch       bool
	showVersion bool
	writeConfig bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("clanker", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "clanker.yaml", "path to the YAML config; missing files fall back to defaults")
	fs.BoolVar(&opts.useTUI, "tui", !guiAvailable, "use the terminal client")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error); overrides the config")
	fs.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	fs.BoolVar(&opts.watch, "watch", true, "reload the command catalog when the config file changes")
	fs.BoolVar(&opts.showVersion, "version", false, "print version and exit")
	fs.BoolVar(&opts.writeConfig, "write-config", false, "write the effective config to -config and exit")
	err := fs.Parse(args)
	return opts, err
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "Clanker Quest %s (%s) %s\n", version, commit, date)
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.writeConfig {
		if err := config.Save(opts.configPath, cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(stdout, "wrote %s\n", opts.configPath)
		return nil
	}

	level := cfg.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	var sink io.Writer = os.Stderr
	switch {
	case opts.logFile != "":
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		sink = f
	case opts.useTUI:
		// stderr shares the terminal with the screen.
		sink = io.Discard
	}
	logger, err := logging.NewWithSink(level, sink)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	session, err := game.NewSession(cfg, game.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reloads <-chan config.Config
	if opts.watch {
		reloads, err = config.Watch(ctx, opts.configPath, logger.Named("config"))
		if err != nil {
			logger.Warn("config watch disabled", zap.Error(err))
		}
	}

	logger.Info("starting",
		zap.String("version", version),
		zap.String("config", opts.configPath),
		zap.Bool("tui", opts.useTUI),
	)
	if opts.useTUI {
		return runTUI(ctx, session, logger, reloads)
	}
	return runGUI(session, logger, reloads)
}

func runTUI(ctx context.Context, session *game.Session, logger *zap.Logger, reloads <-chan config.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	app := tui.New(screen, session, tui.WithLogger(logger.Named("tui")), tui.WithReloads(reloads))
	return app.Run(ctx)
}
