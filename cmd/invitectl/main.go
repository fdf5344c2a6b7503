// invitectl manages a member's invitation links from the terminal.
//
// Usage:
//
//	invitectl [--url U] [--token T] list
//	invitectl [--url U] [--token T] create NAME
//	invitectl [--url U] [--token T] revoke ID
//	invitectl [--url U] [--token T] copy ID
//
// The token is an access token from the auth service carrying the
// invites:read and invites:write scopes. INVITES_URL and INVITES_TOKEN are
// used when the flags are omitted.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/aussiebroadwan/invitelinks/pkg/lifecycle"
	"github.com/aussiebroadwan/invitelinks/pkg/linksdk"
	"github.com/aussiebroadwan/invitelinks/pkg/policy"
	"github.com/aussiebroadwan/invitelinks/pkg/slogx"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/pflag"
)

const defaultURL = "http://localhost:8081"

var errUsage = errors.New("usage: invitectl [--url U] [--token T] <list|create NAME|revoke ID|copy ID>")

// cli bundles what a command needs so tests can swap the terminal out.
type cli struct {
	stdout    io.Writer
	stderr    io.Writer
	clock     clockwork.Clock
	clipboard lifecycle.Clipboard
	getenv    func(string) string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli{
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		clock:     clockwork.NewRealClock(),
		clipboard: terminalClipboard(os.Stderr, os.Getenv),
		getenv:    os.Getenv,
	}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describe(err))
		os.Exit(1)
	}
}

func (c cli) run(ctx context.Context, args []string) error {
	var baseURL, token string
	var verbose bool

	flagSet := pflag.NewFlagSet("invitectl", pflag.ContinueOnError)
	flagSet.SetOutput(c.stderr)
	flagSet.StringVar(&baseURL, "url", "", "link service URL (env INVITES_URL)")
	flagSet.StringVar(&token, "token", "", "access token (env INVITES_TOKEN)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log collaborator failures to stderr")

	flagSet.Usage = func() {
		fmt.Fprintln(c.stderr, errUsage)
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if baseURL == "" {
		baseURL = c.getenv("INVITES_URL")
	}
	if baseURL == "" {
		baseURL = defaultURL
	}
	if token == "" {
		token = c.getenv("INVITES_TOKEN")
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		return errUsage
	}
	if token == "" {
		return errors.New("no access token: pass --token or set INVITES_TOKEN")
	}

	session, err := linksdk.NewClient(baseURL).NewSession(token)
	if err != nil {
		return err
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	logger := slogx.New(slogx.Config{Service: "invitectl", Level: level, Format: "text", Output: c.stderr})
	m := lifecycle.New(linksdk.NewLinkStore(session), session.UserID(),
		lifecycle.WithClock(c.clock),
		lifecycle.WithClipboard(c.clipboard),
		lifecycle.WithLogger(logger),
	)

	switch cmd, params := rest[0], rest[1:]; cmd {
	case "list", "ls":
		if len(params) != 0 {
			return errUsage
		}
		return c.list(ctx, m)
	case "create":
		if len(params) == 0 {
			return errUsage
		}
		return c.create(ctx, m, strings.Join(params, " "))
	case "revoke", "rm":
		if len(params) != 1 {
			return errUsage
		}
		return c.revoke(ctx, m, params[0])
	case "copy":
		if len(params) != 1 {
			return errUsage
		}
		return c.copy(ctx, m, params[0])
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func (c cli) list(ctx context.Context, m *lifecycle.Manager) error {
	snap, err := m.ListLinks(ctx)
	if err != nil {
		return err
	}
	renderSnapshot(c.stdout, snap, c.clock.Now())
	return nil
}

func (c cli) create(ctx context.Context, m *lifecycle.Manager, name string) error {
	created, err := m.CreateLink(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Invitation for %s created\n%s\n", created.Link.InviteeName, created.Link.URL)
	fmt.Fprintln(c.stdout, remainingLine(created.Remaining))
	return nil
}

func (c cli) revoke(ctx context.Context, m *lifecycle.Manager, id string) error {
	if err := m.RevokeLink(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Revoked %s\n", id)
	return nil
}

func (c cli) copy(ctx context.Context, m *lifecycle.Manager, id string) error {
	snap, err := m.ListLinks(ctx)
	if err != nil {
		return err
	}
	link, ok := snap.Find(id)
	if !ok {
		return lifecycle.ErrLinkNotFound
	}
	if err := m.CopyShareableURL(ctx, link); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Copied link for %s to the clipboard\n", link.InviteeName)
	return nil
}

// describe turns lifecycle errors into something a member can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, lifecycle.ErrInvalidName):
		return fmt.Sprintf("invitee name must be 1 to %d characters", policy.MaxInviteeNameLength)
	case errors.Is(err, lifecycle.ErrQuotaExceeded):
		return fmt.Sprintf("you already have %d invitation links, revoke one first", policy.MaxLinks)
	case errors.Is(err, lifecycle.ErrLinkNotFound):
		return "no such invitation link, run 'invitectl list' to see your links"
	case errors.Is(err, lifecycle.ErrLinkExpired):
		return "that invitation link has expired, revoke it and create a new one"
	case errors.Is(err, lifecycle.ErrStoreUnavailable):
		return "the invitation service is unavailable, try again later"
	default:
		return err.Error()
	}
}
