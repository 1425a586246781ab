// Command bnb drives a Bounties and Berries session from the terminal. The
// token is kept in the configured store so the session survives between
// invocations.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const usage = `usage: bnb [-backend URL] [-store file|memory|redis|postgres] [-v] <command> [flags]

commands:
  login -name NAME -password PASSWORD [-role student|faculty|admin]
  logout
  whoami
  balance
  events [-status upcoming|registered|completed] [-name TEXT] [-category TYPE]
  register EVENT_ID
  rewards
  claim REWARD_ID
  history [-type all|earned|registered]
`

var errUsage = errors.New("invalid usage")

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[MAIN] failed to read .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "bnb:", err)
		}
		os.Exit(1)
	}
}

// run parses global flags and dispatches to the named command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("bnb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	backend := fs.String("backend", "", "backend base URL (default $BNB_BACKEND_URL)")
	storeKind := fs.String("store", "", "token store (default $TOKEN_STORE)")
	verbose := fs.Bool("v", false, "log requests to stderr")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", fs.Arg(0))
		fs.Usage()
		return errUsage
	}

	env, err := newEnv(ctx, envOptions{
		Backend: *backend,
		Store:   *storeKind,
		Verbose: *verbose,
		Stdout:  stdout,
		Stderr:  stderr,
	})
	if err != nil {
		return err
	}
	defer env.Close()

	if !cmd.skipRestore {
		env.sessions.Restore(ctx)
	}
	return cmd.run(ctx, env, fs.Args()[1:])
}
