package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Wallet(ctx context.Context) error
	Fund(ctx context.Context) error
	Upload(ctx context.Context) error
	Uploads(ctx context.Context) error
	Journal(ctx context.Context) error
	Access(ctx context.Context) error
	GenPass(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the permavault CLI.
//
//	Not logged in:
//	  - help, register, login, access, genpass, wallet, fund, journal, exit | quit
//
//	Logged in, additionally:
//	  - upload:  upload a file, funding it when needed
//	  - uploads: list uploads recorded on the backend
//	  - logout
//
// Errors from command handlers are printed and the loop continues.
//
// Commands read from the same reader their prompts use, so piped input works.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("pv> %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		err = nil
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: upload, uploads, journal, access, wallet, fund, genpass, logout, exit")
			} else {
				printlnFn("Available commands: register, login, access, wallet, fund, journal, genpass, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "wallet":
			err = a.Wallet(ctx)

		case "fund":
			err = a.Fund(ctx)

		case "upload":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			err = a.Upload(ctx)

		case "uploads", "l", "list":
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			err = a.Uploads(ctx)

		case "journal":
			err = a.Journal(ctx)

		case "access":
			err = a.Access(ctx)

		case "genpass":
			err = a.GenPass(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(errorText(err))
		}
	}
}
