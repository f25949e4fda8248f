// Command mcp-medremind provides an MCP server for medication reminders.
//
// This server provides tools for creating, listing, snoozing, and
// resolving reminders stored in a SQLite database. It shares the database
// with the medremind app but runs no timers of its own.
//
// Usage:
//
//	./mcp-medremind          # Start MCP server (stdio)
//	./mcp-medremind --help   # Show help
//
// Environment:
//
//	MEDREMIND_DB_PATH  Path to SQLite database (default: ~/.medremind/reminders.db)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Absoluteolivia/InnovoCon2k25/internal/reminder"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	dbPath := os.Getenv("MEDREMIND_DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to get home directory: %v\n", err)
			os.Exit(1)
		}
		dir := filepath.Join(home, ".medremind")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create data directory: %v\n", err)
			os.Exit(1)
		}
		dbPath = filepath.Join(dir, "reminders.db")
	}

	store, err := reminder.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	s := reminder.NewServer(store, reminder.SystemClock{})

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Medremind Server - Medication reminder management via MCP protocol

USAGE:
    mcp-medremind          Start MCP server (communicates via stdio)
    mcp-medremind --help   Show this help

ENVIRONMENT:
    MEDREMIND_DB_PATH  Path to SQLite database file
                       Default: ~/.medremind/reminders.db

TOOLS:
    add_reminder       Set a reminder (item, date, time, frequency)
    list_reminders     List all reminders (optional status filter)
    get_due_reminders  Get active reminders that are due or overdue
    mark_taken         Mark a reminder as taken
    snooze_reminder    Push a reminder's target time back
    delete_reminder    Delete a reminder permanently`)
}
