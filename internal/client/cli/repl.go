package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Signup(ctx context.Context) error
	Verify(ctx context.Context) error
	Logout(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Generate(ctx context.Context) error
	History(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Settings(ctx context.Context) error
	Rename(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	Admin(ctx context.Context) error
	Refresh(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL starts the read-eval-print loop of the QuizEra CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on a. The loop exits on EOF, when ctx is done or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - help            show available commands
//	  - login           sign in with email and password
//	  - signup          create an account (an OTP is emailed)
//	  - verify          enter the OTP of a pending signup
//	  - status          show session and backend state
//	  - exit | quit     leave the program
//
//	Signed in:
//	  - dashboard       profile, credits and recent quizzes
//	  - generate        generate a quiz from text, a PDF or an image
//	  - history         list generated quizzes
//	  - export [id]     save a quiz as PDF
//	  - settings        show account settings
//	  - rename          change the display name
//	  - delete-account  permanently delete the account
//	  - refresh         reload the profile from the backend
//	  - admin           admin overview (admins only)
//	  - logout          sign out
//
// Handlers report their own failures to the user; errors returned here are
// dropped so one failed command never ends the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("qe> %s > ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: dashboard, generate, history, export [id], settings, rename, delete-account, refresh, admin, status, logout, exit")
			} else {
				printlnFn("Available commands: login, signup, verify, status, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "signup", "register":
			_ = a.Signup(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "d", "dashboard":
			_ = a.Dashboard(ctx)

		case "g", "generate":
			_ = a.Generate(ctx)

		case "h", "history":
			_ = a.History(ctx)

		case "export":
			_ = a.Export(ctx, args)

		case "settings":
			_ = a.Settings(ctx)

		case "rename":
			_ = a.Rename(ctx)

		case "delete-account":
			_ = a.DeleteAccount(ctx)

		case "admin":
			_ = a.Admin(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
