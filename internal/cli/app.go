// Package cli implements the notestack command line front end on top of
// the API client. Tokens persist in a session file so expired access
// tokens are renewed silently between invocations.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/iliyamo/notestack/internal/client"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// App runs one CLI command.
type App struct {
	api         *client.Client
	in          *bufio.Reader
	out         io.Writer
	sessionPath string
}

// NewApp builds an App talking to serverURL and persisting tokens at
// sessionPath.
func NewApp(serverURL, sessionPath string, in io.Reader, out io.Writer) (*App, error) {
	tokens, err := loadSession(sessionPath)
	if err != nil {
		return nil, err
	}
	api, err := client.New(serverURL, client.WithTokens(tokens))
	if err != nil {
		return nil, err
	}
	a := &App{api: api, in: bufio.NewReader(in), out: out, sessionPath: sessionPath}
	api.OnTokens = func(t client.Tokens) {
		if err := saveSession(sessionPath, t); err != nil {
			log.Warn().Err(err).Str("path", sessionPath).Msg("save session")
		}
	}
	return a, nil
}

const usage = `usage: notestack [flags] <command> [args]

commands:
  register
  login [username|email]
  logout
  whoami
  notes list [fav] | search <text> | show <id> | add <title> | rm <id> | fav <id>
  bookmarks list [fav] | search <text> | add <url> [title] | rm <id> | fav <id> | visit <id>
`

// Run executes the command in args.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errors.New("missing command")
	}
	err := a.dispatch(ctx, args[0], args[1:])
	if errors.Is(err, client.ErrLoginRequired) {
		var lr *client.LoginRequiredError
		path := client.LoginPath
		if errors.As(err, &lr) {
			path = lr.LoginPath
		}
		return fmt.Errorf("session expired, log in again (%s): run `notestack login`", path)
	}
	return err
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx, args)
	case "logout":
		if err := a.api.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "logged out")
		return nil
	case "whoami":
		u, err := a.api.Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s <%s> %s\n", u.Username, u.Email, u.FullName)
		return nil
	case "notes":
		return a.notes(ctx, args)
	case "bookmarks":
		return a.bookmarks(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	fmt.Fprint(a.out, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprintf(a.out, "%s: ", label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (a *App) password() (string, error) {
	fmt.Fprint(a.out, "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (a *App) register(ctx context.Context) error {
	var in client.RegisterInput
	var err error
	if in.FullName, err = a.prompt("Full name"); err != nil {
		return err
	}
	if in.Email, err = a.prompt("Email"); err != nil {
		return err
	}
	if in.Username, err = a.prompt("Username"); err != nil {
		return err
	}
	if in.Password, err = a.password(); err != nil {
		return err
	}
	u, err := a.api.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "registered %s, now run `notestack login`\n", u.Username)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	var who string
	if len(args) > 0 {
		who = args[0]
	} else {
		var err error
		if who, err = a.prompt("Username or email"); err != nil {
			return err
		}
	}
	pw, err := a.password()
	if err != nil {
		return err
	}
	u, err := a.api.Login(ctx, who, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s\n", u.Username)
	return nil
}

func parseID(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}

func star(fav bool) string {
	if fav {
		return "*"
	}
	return ""
}
