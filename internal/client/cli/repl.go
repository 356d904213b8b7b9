package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/common"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs. *App satisfies it.
type execIface interface {
	role() common.Role
	Open(ctx context.Context, path string) error
	Menu(ctx context.Context) error
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	NewClass(ctx context.Context) error
	NewAssignment(ctx context.Context) error
	Grade(ctx context.Context) error
	RemoveStudent(ctx context.Context) error
	ImportRoster(ctx context.Context) error
	ExportGradebook(ctx context.Context) error
	Join(ctx context.Context) error
	Submit(ctx context.Context) error
	Analyze(ctx context.Context) error
	BatchAnalyze(ctx context.Context) error
	DropRepository(ctx context.Context, n string) error
	ExportBatch(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: open <path>, menu, signup, login, exit"
	helpTeacher   = "Available commands: open <path>, menu, newclass, newassignment, grade, remove, import, export, analyze, batch, drop <n>, csv, logout, exit"
	helpStudent   = "Available commands: open <path>, menu, join, submit, analyze, batch, drop <n>, csv, logout, exit"
)

// runREPL reads commands from scanner and dispatches them to a until EOF,
// "exit" or "quit", or until ctx is done. The prompt shows statusFn().
//
// Handlers report their own errors to the user, so their return values
// are ignored here.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("portal %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			switch a.role() {
			case common.RoleTeacher:
				printlnFn(helpTeacher)
			case common.RoleStudent:
				printlnFn(helpStudent)
			default:
				printlnFn(helpSignedOut)
			}

		case "open", "o":
			if len(args) == 0 {
				printlnFn("Usage: open <path>")
				continue
			}
			_ = a.Open(ctx, args[0])

		case "menu":
			_ = a.Menu(ctx)

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "newclass":
			_ = a.NewClass(ctx)

		case "newassignment":
			_ = a.NewAssignment(ctx)

		case "grade":
			_ = a.Grade(ctx)

		case "remove":
			_ = a.RemoveStudent(ctx)

		case "import":
			_ = a.ImportRoster(ctx)

		case "export":
			_ = a.ExportGradebook(ctx)

		case "join":
			_ = a.Join(ctx)

		case "submit":
			_ = a.Submit(ctx)

		case "analyze":
			_ = a.Analyze(ctx)

		case "batch":
			_ = a.BatchAnalyze(ctx)

		case "drop":
			if len(args) == 0 {
				printlnFn("Usage: drop <n>")
				continue
			}
			_ = a.DropRepository(ctx, args[0])

		case "csv":
			_ = a.ExportBatch(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
