// Command eventdeck is a terminal client for the EventDeck planning backend.
//
// Global flags (see internal/config) come first, then a subcommand and its
// own flags:
//
//	eventdeck --api-url http://localhost:8080/api login -u alice -p alice-pass
//	eventdeck events
//	eventdeck toggle 101 203 --done
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/eventdeck/eventdeck-client/internal/config"
	"github.com/eventdeck/eventdeck-client/internal/di"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one invocation and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cfg, rest, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "eventdeck: %v\n", err)
		return 2
	}

	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}
	cmd, ok := lookupCommand(rest[0])
	if !ok {
		fmt.Fprintf(stderr, "eventdeck: unknown command %q\n\n", rest[0])
		printUsage(stderr)
		return 2
	}

	injector := di.NewContainer(cfg)
	defer func() {
		if err := injector.Shutdown(); err != nil {
			fmt.Fprintf(stderr, "eventdeck: shutdown: %v\n", err)
		}
	}()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(stderr, "eventdeck: bootstrap: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, newApp(injector, stdout), rest[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "eventdeck %s: %v\n", cmd.name, err)
		switch domainerrors.CodeOf(err) {
		case domainerrors.CodeUnauthorized, domainerrors.CodeTokenExpired:
			fmt.Fprintln(stderr, "Sign in with: eventdeck login -u <username> -p <password>")
		case domainerrors.CodeForbidden:
			fmt.Fprintln(stderr, "This command needs an admin account.")
		}
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: eventdeck [global flags] <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-20s %s\n", c.name, c.summary)
	}
}
