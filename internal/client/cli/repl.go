package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/tuniguard/internal/logging"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Guest(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Scan(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Chat(ctx context.Context, args []string) error
	Transcript(ctx context.Context) error
	Passwd(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Refresh(ctx context.Context) error
	Export(ctx context.Context) error
	Threats(ctx context.Context, args []string) error
	Stats(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, register, guest, threats, stats, help, exit"
	helpLoggedIn  = "Available commands: whoami, scan, show, history, chat, transcript, passwd, delete-account, refresh, export, threats, stats, logout, help, exit"
)

// runREPL starts a simple read-eval-print loop for the TuniGuard CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on a. The prompt shows the current status (from
// statusFn). Errors returned by command handlers are rendered to w by
// describeError and never end the loop. The loop exits on EOF or when the
// user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "tuniguard %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		cctx := logging.ContextWith(ctx, "command", cmd)

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpLoggedOut)
			}

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		case "threats":
			cmdErr = a.Threats(cctx, args)
		case "stats":
			cmdErr = a.Stats(cctx, args)

		case "login", "register", "guest":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Already logged in. Use 'logout' first.")
				continue
			}
			switch cmd {
			case "login":
				cmdErr = a.Login(cctx)
			case "register":
				cmdErr = a.Register(cctx)
			case "guest":
				cmdErr = a.Guest(cctx)
			}

		case "whoami", "scan", "show", "history", "chat", "transcript", "passwd",
			"delete-account", "refresh", "export", "logout":
			if !a.isLoggedIn() {
				fmt.Fprintln(w, "Please log in first (login, register or guest).")
				continue
			}
			switch cmd {
			case "whoami":
				cmdErr = a.Whoami(cctx)
			case "scan":
				cmdErr = a.Scan(cctx, args)
			case "show":
				cmdErr = a.Show(cctx, args)
			case "history":
				cmdErr = a.History(cctx, args)
			case "chat":
				cmdErr = a.Chat(cctx, args)
			case "transcript":
				cmdErr = a.Transcript(cctx)
			case "passwd":
				cmdErr = a.Passwd(cctx)
			case "delete-account":
				cmdErr = a.DeleteAccount(cctx)
			case "refresh":
				cmdErr = a.Refresh(cctx)
			case "export":
				cmdErr = a.Export(cctx)
			case "logout":
				cmdErr = a.Logout(cctx)
			}

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, describeError(cmdErr))
		}
	}
}
