// Command medremind is an interactive medication reminder.
//
// It keeps reminders in a SQLite database, runs one background timer per
// active reminder, notifies the user at the target time, records whether
// the dose was taken, and chains the next occurrence for daily and weekly
// reminders. Reminders that came due while the process was not running
// are marked Missed on startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/config"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/notify"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/repl"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/scheduler"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/youtube"
)

func main() {
	configPath := flag.String("config", config.GetDefaultConfigPath(), "Path to configuration file")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides config)")
	notifier := flag.String("notifier", "", "Notifier to use (console, telegram)")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Apply CLI flag overrides
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *notifier != "" {
		cfg.Notifier.Type = *notifier
	}
	if *noColor {
		cfg.UI.ColoredOutput = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
		os.Exit(1)
	}

	store, err := reminder.NewStore(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	clock := reminder.SystemClock{}

	var (
		n       notify.Notifier
		console *notify.Console
	)
	switch cfg.Notifier.Type {
	case config.NotifierTelegram:
		n = notify.NewTelegram(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID, cfg.ConfirmTimeout())
	default:
		console = notify.NewConsole(cfg.UI.ColoredOutput, cfg.ConfirmTimeout())
		n = console
	}

	sched := scheduler.New(store, n, clock, scheduler.Options{
		PollInterval: cfg.PollInterval(),
		SnoozeOffset: cfg.SnoozeOffset(),
	})
	defer sched.Stop()

	// Reconcile missed reminders and resume timers before accepting input.
	if err := sched.Bootstrap(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start scheduler: %v\n", err)
		os.Exit(1)
	}

	yt := youtube.NewClient(cfg.YouTube.APIKey)

	replInstance, err := repl.NewREPL(store, sched, clock, console, yt, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating REPL: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nInterrupted.")
		cancel()
		sched.Stop()
		os.Exit(0)
	}()

	if err := replInstance.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
