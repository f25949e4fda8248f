// Package report renders the reminder history as a fixed-width text table.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
)

const timeLayout = "2006-01-02 15:04"

// Build renders the report for the given reminders. Columns are
// Medicine / Date & Time / Status with fixed widths of 20, 25, and 10.
func Build(reminders []reminder.Reminder) string {
	var sb strings.Builder

	sb.WriteString("Medicine Reminder Report\n\n")
	sb.WriteString(fmt.Sprintf("%-20s%-25s%-10s\n", "Medicine", "Date & Time", "Status"))
	sb.WriteString(strings.Repeat("-", 55) + "\n")

	for _, r := range reminders {
		sb.WriteString(fmt.Sprintf("%-20s%-25s%-10s\n",
			r.Item, r.TargetTime.Local().Format(timeLayout), r.Status))
	}

	return sb.String()
}

// Save writes the report for the given reminders to path.
func Save(path string, reminders []reminder.Reminder) error {
	if len(reminders) == 0 {
		return fmt.Errorf("no reminders to report")
	}

	if err := os.WriteFile(path, []byte(Build(reminders)), 0o644); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
