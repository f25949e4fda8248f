package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/config"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/notify"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/report"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/scheduler"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/ui"
	"github.com/Absoluteolivia/InnovoCon2k25/internal/youtube"
)

type REPL struct {
	store     *reminder.Store
	sched     *scheduler.Scheduler
	clock     reminder.Clock
	console   *notify.Console // nil when a remote notifier is configured
	yt        *youtube.Client
	config    *config.Config
	rl        *readline.Instance
	formatter *ui.Formatter
}

func NewREPL(store *reminder.Store, sched *scheduler.Scheduler, clock reminder.Clock, console *notify.Console, yt *youtube.Client, cfg *config.Config) (*REPL, error) {
	formatter := ui.NewFormatter(cfg.UI.ColoredOutput)

	rl, err := setupReadline(formatter.FormatPrompt())
	if err != nil {
		return nil, fmt.Errorf("failed to setup readline: %w", err)
	}

	return &REPL{
		store:     store,
		sched:     sched,
		clock:     clock,
		console:   console,
		yt:        yt,
		config:    cfg,
		rl:        rl,
		formatter: formatter,
	}, nil
}

func (r *REPL) Start(ctx context.Context) error {
	defer r.rl.Close()

	r.displayWelcome()

	for {
		input, err := r.readInput()
		if err != nil {
			if isEOF(err) {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		if input == "" {
			continue
		}

		// A pending console confirmation claims yes/no input first.
		if r.console != nil && r.console.Answer(strings.ToLower(input)) {
			continue
		}

		command, args := parseCommand(input)

		if command == "quit" || command == "exit" {
			fmt.Println("\nGoodbye!")
			return nil
		}

		if err := r.handleCommand(ctx, command, args); err != nil {
			r.displayError(err)
		}
	}
}

func (r *REPL) Stop() {
	r.rl.Close()
}

func (r *REPL) handleCommand(ctx context.Context, command, args string) error {
	switch command {
	case "help", "h":
		r.displayHelp()
		return nil

	case "add", "set":
		return r.handleAdd(args)

	case "list", "ls":
		return r.handleList(args)

	case "taken", "take":
		return r.handleTaken(args)

	case "snooze":
		return r.handleSnooze(args)

	case "delete", "del", "rm":
		return r.handleDelete(args)

	case "info":
		return r.handleInfo(ctx, args)

	case "report":
		return r.handleReport(args)

	default:
		return fmt.Errorf("unknown command: %s (type help for available commands)", command)
	}
}

// handleAdd validates and creates a reminder, then registers its timer.
// The medicine name may contain spaces; date, time, and the optional
// frequency are the trailing tokens.
func (r *REPL) handleAdd(args string) error {
	fields := strings.Fields(args)

	frequency := reminder.FrequencyOnce
	if len(fields) > 0 && reminder.ValidFrequency(fields[len(fields)-1]) {
		frequency = fields[len(fields)-1]
		fields = fields[:len(fields)-1]
	}

	if len(fields) < 3 {
		return fmt.Errorf("usage: add <name> <YYYY-MM-DD> <HH:MM> [Once|Daily|Weekly]")
	}

	dateStr := fields[len(fields)-2]
	timeStr := fields[len(fields)-1]
	item := strings.Join(fields[:len(fields)-2], " ")

	target, err := reminder.Validate(r.clock, item, dateStr, timeStr, frequency)
	if err != nil {
		return err
	}

	created, err := r.store.Create(reminder.Reminder{
		Item:       item,
		TargetTime: target,
		Frequency:  frequency,
		Status:     reminder.StatusPending,
	})
	if err != nil {
		return err
	}

	r.sched.Register(created.ID, created.TargetTime)

	r.displaySystem(fmt.Sprintf("Reminder %d set for %s at %s (%s).",
		created.ID, item, target.Format("2006-01-02 15:04"), frequency))
	return nil
}

func (r *REPL) handleList(args string) error {
	status := strings.TrimSpace(args)

	reminders, err := r.store.List(status)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(r.formatter.FormatReminderTable(reminders))
	fmt.Println()
	return nil
}

func (r *REPL) handleTaken(args string) error {
	id, err := parseID(args, "taken")
	if err != nil {
		return err
	}

	rec, err := r.store.Get(id)
	if err != nil {
		return err
	}
	if !rec.Active() {
		return fmt.Errorf("reminder %d is already %s", id, rec.Status)
	}

	status := reminder.StatusTaken
	if _, err := r.store.Update(id, reminder.UpdateFields{Status: &status}); err != nil {
		return err
	}
	r.sched.Cancel(id)

	r.displaySystem(fmt.Sprintf("Reminder %d marked as taken.", id))
	return nil
}

func (r *REPL) handleSnooze(args string) error {
	id, err := parseID(args, "snooze")
	if err != nil {
		return err
	}

	newTime, err := r.sched.Snooze(id)
	if err != nil {
		return err
	}

	r.displaySystem(fmt.Sprintf("Reminder %d snoozed until %s.", id, newTime.Format("2006-01-02 15:04")))
	return nil
}

func (r *REPL) handleDelete(args string) error {
	id, err := parseID(args, "delete")
	if err != nil {
		return err
	}

	if err := r.store.Delete(id); err != nil {
		return err
	}
	r.sched.Cancel(id)

	r.displaySystem(fmt.Sprintf("Reminder %d deleted.", id))
	return nil
}

func (r *REPL) handleInfo(ctx context.Context, args string) error {
	id, err := parseID(args, "info")
	if err != nil {
		return err
	}

	rec, err := r.store.Get(id)
	if err != nil {
		return err
	}

	video, err := r.yt.Lookup(ctx, rec.Item)
	if err != nil {
		return fmt.Errorf("failed to fetch video info: %w", err)
	}
	if video == nil {
		r.displayInfo("No relevant videos found.")
		return nil
	}

	fmt.Println()
	fmt.Println(r.formatter.FormatInfoCard(rec.Item, video.Title, video.Channel, video.URL()))
	fmt.Println()
	return nil
}

func (r *REPL) handleReport(args string) error {
	path := strings.TrimSpace(args)
	if path == "" {
		return fmt.Errorf("usage: report <path>")
	}

	reminders, err := r.store.List("")
	if err != nil {
		return err
	}

	if err := report.Save(path, reminders); err != nil {
		return err
	}

	r.displaySystem(fmt.Sprintf("Report saved to %s.", path))
	return nil
}

func parseID(args, command string) (int64, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 0, fmt.Errorf("usage: %s <id>", command)
	}

	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid reminder id: %s", args)
	}
	return id, nil
}
