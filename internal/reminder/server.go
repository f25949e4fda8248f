package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "medremind"
	serverVersion = "1.0.0"
)

// Server is the MCP server exposing the reminder store as tools. It is a
// machine-facing presentation layer: it shares the database with the
// interactive app but owns no timers, so reminders it creates are picked
// up by the running scheduler on its next poll of the store.
type Server struct {
	mcpServer *server.MCPServer
	store     *Store
	clock     Clock
}

// NewServer creates a new medremind MCP server backed by the given store.
func NewServer(store *Store, clock Clock) *Server {
	s := &Server{
		store: store,
		clock: clock,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// add_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Set a new medication reminder with a medicine name, date, time, and recurrence"),
			mcp.WithString("item", mcp.Required(), mcp.Description("Medicine name")),
			mcp.WithString("date", mcp.Required(), mcp.Description("Date in YYYY-MM-DD format")),
			mcp.WithString("time", mcp.Required(), mcp.Description("Time in 24-hour HH:MM format, zero-padded")),
			mcp.WithString("frequency", mcp.Description("Recurrence: Once, Daily, or Weekly (default: Once)")),
		),
		s.handleAddReminder,
	)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all reminders ordered by target time, optionally filtered by status (Pending, Taken, Missed, Snoozed)"),
			mcp.WithString("status", mcp.Description("Filter by status, or empty for all")),
		),
		s.handleListReminders,
	)

	// get_due_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("get_due_reminders",
			mcp.WithDescription("Get all active reminders that are due now or overdue"),
		),
		s.handleGetDueReminders,
	)

	// mark_taken
	s.mcpServer.AddTool(
		mcp.NewTool("mark_taken",
			mcp.WithDescription("Mark a reminder as taken"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleMarkTaken,
	)

	// snooze_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("snooze_reminder",
			mcp.WithDescription("Snooze a reminder: push its target time to now plus the given minutes (default 5)"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithNumber("minutes", mcp.Description("Snooze offset in minutes (default: 5)")),
		),
		s.handleSnoozeReminder,
	)

	// delete_reminder
	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder permanently"),
			mcp.WithNumber("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDeleteReminder,
	)
}

func (s *Server) handleAddReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	item := req.GetString("item", "")
	dateStr := req.GetString("date", "")
	timeStr := req.GetString("time", "")
	frequency := req.GetString("frequency", FrequencyOnce)

	target, err := Validate(s.clock, item, dateStr, timeStr, frequency)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	created, err := s.store.Create(Reminder{
		Item:       item,
		TargetTime: target,
		Frequency:  frequency,
		Status:     StatusPending,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}

	output, _ := json.MarshalIndent(created, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")

	reminders, err := s.store.List(status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	output, _ := json.MarshalIndent(reminders, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleGetDueReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.store.Due(s.clock.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get due reminders: %v", err)), nil
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No due reminders."), nil
	}

	output, _ := json.MarshalIndent(reminders, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleMarkTaken(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 0 {
		return mcp.NewToolResultError("id is required and must be a positive number"), nil
	}
	id := int64(idFloat)

	rec, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to mark reminder taken: %v", err)), nil
	}
	if !rec.Active() {
		// Taken and Missed are terminal.
		return mcp.NewToolResultError(fmt.Sprintf("reminder %d is already %s", id, rec.Status)), nil
	}

	status := StatusTaken
	if _, err := s.store.Update(id, UpdateFields{Status: &status}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to mark reminder taken: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d marked as taken.", id)), nil
}

func (s *Server) handleSnoozeReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 0 {
		return mcp.NewToolResultError("id is required and must be a positive number"), nil
	}
	id := int64(idFloat)

	minutes := req.GetFloat("minutes", 5)
	if minutes <= 0 {
		minutes = 5
	}

	rec, err := s.store.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to snooze reminder: %v", err)), nil
	}
	if !rec.Active() {
		return mcp.NewToolResultError(fmt.Sprintf("reminder %d is already %s", id, rec.Status)), nil
	}

	newTime := s.clock.Now().Add(time.Duration(minutes) * time.Minute)
	status := StatusSnoozed
	updated, err := s.store.Update(id, UpdateFields{TargetTime: &newTime, Status: &status})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to snooze reminder: %v", err)), nil
	}

	output, _ := json.MarshalIndent(updated, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleDeleteReminder(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idFloat := req.GetFloat("id", -1)
	if idFloat < 0 {
		return mcp.NewToolResultError("id is required and must be a positive number"), nil
	}
	id := int64(idFloat)

	if err := s.store.Delete(id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reminder %d deleted.", id)), nil
}
