package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"bnb-client/internal/domain/auth"
	"bnb-client/internal/domain/bounty"
	"bnb-client/internal/domain/participation"
	xerrors "bnb-client/internal/pkg/errors"
)

type command struct {
	// skipRestore is set for commands that start a new session.
	skipRestore bool
	run         func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"login":    {skipRestore: true, run: cmdLogin},
	"logout":   {run: cmdLogout},
	"whoami":   {run: cmdWhoami},
	"balance":  {run: cmdBalance},
	"events":   {run: cmdEvents},
	"register": {run: cmdRegister},
	"rewards":  {run: cmdRewards},
	"claim":    {run: cmdClaim},
	"history":  {run: cmdHistory},
}

var errNoSession = errors.New("not logged in; run `bnb login` first")

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func requireSession(e *env) (*auth.Identity, error) {
	id := e.sessions.Current()
	if id == nil {
		if err := e.sessions.LastError(); err != nil {
			return nil, fmt.Errorf("%w (%v)", errNoSession, err)
		}
		return nil, errNoSession
	}
	return id, nil
}

func requireStudent(e *env) (*auth.Identity, error) {
	id, err := requireSession(e)
	if err != nil {
		return nil, err
	}
	if id.Role != auth.RoleStudent {
		return nil, fmt.Errorf("only students can do that; signed in as %s", id.Role)
	}
	return id, nil
}

// oneArg returns the single positional argument named what.
func oneArg(args []string, what string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", fmt.Errorf("expected exactly one %s", what)
	}
	return args[0], nil
}

func cmdLogin(ctx context.Context, e *env, args []string) error {
	fs := newFlags("login")
	name := fs.String("name", "", "user name")
	password := fs.String("password", os.Getenv("BNB_PASSWORD"), "password (default $BNB_PASSWORD)")
	role := fs.String("role", string(auth.RoleStudent), "student, faculty or admin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *password == "" {
		return errors.New("login needs -name and -password")
	}

	if !e.sessions.Login(ctx, *name, *password, *role) {
		return fmt.Errorf("login failed: %s", xerrors.MessageOrDefault(e.sessions.LastError(), "Login failed"))
	}
	id := e.sessions.Current()
	if id.Role == auth.RoleStudent {
		e.printf("Logged in as %s (%s), %d berries\n", id.Name, id.Role, id.Points())
	} else {
		e.printf("Logged in as %s (%s)\n", id.Name, id.Role)
	}
	return nil
}

func cmdLogout(ctx context.Context, e *env, _ []string) error {
	e.sessions.Logout(ctx)
	e.printf("Logged out\n")
	return nil
}

func cmdWhoami(_ context.Context, e *env, _ []string) error {
	if _, err := requireSession(e); err != nil {
		return err
	}
	return e.print(e.sessions.View())
}

func cmdBalance(ctx context.Context, e *env, _ []string) error {
	if _, err := requireStudent(e); err != nil {
		return err
	}
	e.sessions.RefreshBalance(ctx)
	e.printf("%d berries\n", e.sessions.Current().Points())
	return nil
}

func cmdEvents(ctx context.Context, e *env, args []string) error {
	fs := newFlags("events")
	status := fs.String("status", bounty.StatusUpcoming, "upcoming, registered or completed")
	name := fs.String("name", "", "name contains")
	category := fs.String("category", "", "event type")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := requireSession(e); err != nil {
		return err
	}

	res, err := e.client.SearchBounties(ctx, bounty.SectionSearch(*status, *name, *category))
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tDATE\tPOINTS\tBERRIES\tSPOTS\tREGISTERED")
	for _, b := range res.Items() {
		spots := "unlimited"
		if left := b.SpotsLeft(); left >= 0 {
			spots = fmt.Sprint(left)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%t\n",
			b.ID, b.Name, b.Type, b.ScheduledDate, b.AllotedPoints, b.AllotedBerries, spots, b.IsRegistered)
	}
	return tw.Flush()
}

func cmdRegister(ctx context.Context, e *env, args []string) error {
	id, err := oneArg(args, "event id")
	if err != nil {
		return err
	}
	if _, err := requireStudent(e); err != nil {
		return err
	}

	res, err := e.client.RegisterForBounty(ctx, id)
	if err != nil {
		return err
	}
	e.sessions.RefreshBalance(ctx)
	e.printf("%s\n", res.MessageOr("Registered"))
	return nil
}

func cmdRewards(ctx context.Context, e *env, _ []string) error {
	if _, err := requireSession(e); err != nil {
		return err
	}
	items, err := e.client.ListRewards(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCOST\tLEFT\tEXPIRES")
	for _, r := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n", r.ID, r.Name, r.Cost, r.Quantity, r.ExpiryDate)
	}
	return tw.Flush()
}

func cmdClaim(ctx context.Context, e *env, args []string) error {
	id, err := oneArg(args, "reward id")
	if err != nil {
		return err
	}
	if _, err := requireStudent(e); err != nil {
		return err
	}

	res, err := e.client.ClaimReward(ctx, id)
	if err != nil {
		return err
	}
	e.sessions.RefreshBalance(ctx)

	msg := res.Message
	if msg == "" {
		msg = "Reward claimed"
	}
	e.printf("%s\n", msg)
	if res.RedeemableCode != "" {
		e.printf("Code: %s\n", res.RedeemableCode)
	}
	e.printf("%d berries left\n", e.sessions.Current().Points())
	return nil
}

func cmdHistory(ctx context.Context, e *env, args []string) error {
	fs := newFlags("history")
	txType := fs.String("type", "all", "all, earned or registered")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := requireSession(e); err != nil {
		return err
	}

	res, err := e.client.MyParticipations(ctx)
	if err != nil {
		return err
	}
	txs := participation.History(res.Items(), *txType, time.Now())

	tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tEVENT\tPOINTS")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", tx.Date, tx.Type, tx.Description, tx.Points)
	}
	fmt.Fprintf(tw, "\t\tTotal earned\t%d\n", participation.TotalEarned(txs))
	return tw.Flush()
}
