package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Warm yellow
			Bold(true)

	questionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")). // Bright cyan
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")). // Medium gray
			Italic(true)
)

// Console delivers alerts to the terminal and routes confirmation answers
// through the interactive loop: Confirm prints the question and blocks on
// an answer channel that the REPL feeds via Answer when the user types
// "yes" or "no". One confirmation can be outstanding at a time; a newer
// question supersedes an unanswered one, which resolves as NoResponse.
type Console struct {
	colored bool
	timeout time.Duration

	mu      sync.Mutex
	pending chan Response
}

// NewConsole creates a terminal notifier. timeout bounds how long Confirm
// waits for an answer before reporting NoResponse.
func NewConsole(colored bool, timeout time.Duration) *Console {
	return &Console{
		colored: colored,
		timeout: timeout,
	}
}

// Alert prints the notification with a terminal bell.
func (c *Console) Alert(title, message string) error {
	line := fmt.Sprintf("%s: %s", title, message)
	if c.colored {
		line = alertStyle.Render(line)
	}
	fmt.Printf("\a\n%s\n", line)
	return nil
}

// Confirm prints the question and waits for the REPL to deliver an answer.
func (c *Console) Confirm(ctx context.Context, title, question string) (Response, error) {
	answer := make(chan Response, 1)

	c.mu.Lock()
	if c.pending != nil {
		// Supersede an unanswered question rather than orphaning it.
		select {
		case c.pending <- NoResponse:
		default:
		}
	}
	c.pending = answer
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.pending == answer {
			c.pending = nil
		}
		c.mu.Unlock()
	}()

	q := fmt.Sprintf("%s: %s", title, question)
	hint := "Type yes or no to answer."
	if c.colored {
		q = questionStyle.Render(q)
		hint = hintStyle.Render(hint)
	}
	fmt.Printf("%s\n%s\n", q, hint)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp := <-answer:
		return resp, nil
	case <-timer.C:
		return NoResponse, nil
	case <-ctx.Done():
		return NoResponse, ctx.Err()
	}
}

// Answer delivers the user's input to a pending confirmation. It returns
// true if the input was consumed as an answer, false if no confirmation is
// waiting or the input is not a yes/no token.
func (c *Console) Answer(input string) bool {
	var resp Response
	switch input {
	case "yes", "y":
		resp = Yes
	case "no", "n":
		resp = No
	default:
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return false
	}

	select {
	case c.pending <- resp:
	default:
	}
	c.pending = nil
	return true
}

// Waiting reports whether a confirmation is currently outstanding.
func (c *Console) Waiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}
