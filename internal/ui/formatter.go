package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	SystemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")). // Soft purple
			Italic(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Yellow

	takenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")) // Green

	missedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")) // Red

	snoozedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("183")) // Purple
)

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) FormatError(err error) string {
	prefix := "Error: "
	if f.colored {
		prefix = ErrorStyle.Render("Error: ")
	}
	return prefix + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	if f.colored {
		return InfoStyle.Render(info)
	}
	return info
}

func (f *Formatter) FormatSystem(msg string) string {
	if f.colored {
		return SystemStyle.Render(msg)
	}
	return msg
}

func (f *Formatter) formatStatus(status string) string {
	if !f.colored {
		return status
	}
	switch status {
	case reminder.StatusPending:
		return pendingStyle.Render(status)
	case reminder.StatusTaken:
		return takenStyle.Render(status)
	case reminder.StatusMissed:
		return missedStyle.Render(status)
	case reminder.StatusSnoozed:
		return snoozedStyle.Render(status)
	}
	return status
}

// FormatReminderTable renders the reminder list ordered as given
// (the store orders by target time).
func (f *Formatter) FormatReminderTable(reminders []reminder.Reminder) string {
	if len(reminders) == 0 {
		return f.FormatInfo("No reminders set.")
	}

	header := fmt.Sprintf("%-5s %-20s %-17s %-8s %s", "ID", "Medicine", "Date & Time", "Freq", "Status")
	if f.colored {
		header = HeaderStyle.Render(header)
	}

	lines := []string{header}
	for _, r := range reminders {
		lines = append(lines, fmt.Sprintf("%-5d %-20s %-17s %-8s %s",
			r.ID, r.Item,
			r.TargetTime.Local().Format("2006-01-02 15:04"),
			r.Frequency,
			f.formatStatus(r.Status)))
	}

	return strings.Join(lines, "\n")
}

// FormatInfoCard renders the medication video lookup as a markdown card.
func (f *Formatter) FormatInfoCard(item, title, channel, url string) string {
	md := fmt.Sprintf("## %s\n\n**%s**\n\n_%s_\n\n%s\n", item, title, channel, url)

	if f.colored {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err == nil {
			if rendered, err := renderer.Render(md); err == nil {
				return strings.TrimSpace(rendered)
			}
		}
	}

	return fmt.Sprintf("%s\n%s (%s)\n%s", item, title, channel, url)
}

func (f *Formatter) FormatWelcome(dbPath string) string {
	if f.colored {
		titleStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

		labelStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

		valueStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

		subtitleStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

		lines := []string{
			"",
			titleStyle.Render("Smart Medicine Reminder"),
			labelStyle.Render("Database: ") + valueStyle.Render(dbPath),
			subtitleStyle.Render("Type help for commands"),
			"",
		}
		return strings.Join(lines, "\n")
	}

	lines := []string{
		"",
		"Smart Medicine Reminder",
		fmt.Sprintf("Database: %s", dbPath),
		"Type help for commands",
		"",
	}
	return strings.Join(lines, "\n")
}

func (f *Formatter) FormatHelp() string {
	if f.colored {
		headerStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

		cmdStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

		descStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

		dimStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

		formatCmd := func(cmd, desc string) string {
			return "  " + cmdStyle.Render(fmt.Sprintf("%-34s", cmd)) + descStyle.Render(desc)
		}

		lines := []string{
			"",
			headerStyle.Render("Commands"),
			"",
			formatCmd("add <name> <date> <time> [freq]", "Set a reminder (date YYYY-MM-DD, time HH:MM, freq Once|Daily|Weekly)"),
			formatCmd("list [status]", "Show reminders, optionally filtered by status"),
			formatCmd("taken <id>", "Mark a reminder as taken"),
			formatCmd("snooze <id>", "Push a reminder back by the snooze offset"),
			formatCmd("delete <id>", "Delete a reminder and cancel its timer"),
			formatCmd("info <id>", "Look up an educational video for the medicine"),
			formatCmd("report <path>", "Save a fixed-width report to a file"),
			formatCmd("help", "Show this help"),
			formatCmd("quit", "Exit"),
			"",
			dimStyle.Render("  Answer a pending confirmation by typing yes or no."),
			"",
		}
		return strings.Join(lines, "\n")
	}

	lines := []string{
		"",
		"Commands:",
		"  add <name> <date> <time> [freq]  - Set a reminder",
		"  list [status]                    - Show reminders",
		"  taken <id>                       - Mark as taken",
		"  snooze <id>                      - Snooze a reminder",
		"  delete <id>                      - Delete a reminder",
		"  info <id>                        - Educational video lookup",
		"  report <path>                    - Save report to file",
		"  help                             - Show help",
		"  quit                             - Exit",
		"",
		"Answer a pending confirmation by typing yes or no.",
		"",
	}
	return strings.Join(lines, "\n")
}

// FormatPrompt returns the styled input prompt.
func (f *Formatter) FormatPrompt() string {
	if f.colored {
		promptStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("62"))
		arrowStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")).
			Bold(true)
		return promptStyle.Render("medremind") + arrowStyle.Render(" > ")
	}
	return "medremind > "
}
