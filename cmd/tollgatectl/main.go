// Command tollgatectl is a command line client for a tollgate server.
//
//	tollgatectl [-url URL] [-token TOKEN] [-json] <command> [flags]
//
// Commands:
//
//	register      -u USERNAME [-qr FILE]   create an account, password read from stdin
//	login         -u USERNAME [-otp CODE]  print a bearer token
//	profile                                show the authenticated account
//	categories                             list categories
//	add-category  -name NAME -label LABEL  create a category (admin)
//	logout                                 revoke the token (opaque mode)
//	health                                 show server readiness
//	hash                                   print the bcrypt hash of a password read from stdin
//
// The server URL defaults to TOLLGATE_URL and the token to TOLLGATE_TOKEN.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/aussiebroadwan/tollgate/pkg/authsdk"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	defaultURL = "http://localhost:3000"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries global options into each command.
type cli struct {
	client *authsdk.SDKClient
	token  string
	json   bool

	prompt *prompter
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, c *cli, args []string) error
}

var commands = map[string]command{
	"register":     {"create an account", cmdRegister},
	"login":        {"log in and print a bearer token", cmdLogin},
	"profile":      {"show the authenticated account", cmdProfile},
	"categories":   {"list categories", cmdCategories},
	"add-category": {"create a category (admin)", cmdAddCategory},
	"logout":       {"revoke the current token", cmdLogout},
	"health":       {"show server readiness", cmdHealth},
	"hash":         {"print the bcrypt hash of a password", cmdHash},
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tollgatectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", envOr("TOLLGATE_URL", defaultURL), "server base URL")
	token := fs.String("token", os.Getenv("TOLLGATE_TOKEN"), "bearer token")
	asJSON := fs.Bool("json", false, "print raw JSON responses")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		fs.Usage()
		return exitUsage
	}

	c := &cli{
		client: authsdk.NewSDKClient(*baseURL),
		token:  *token,
		json:   *asJSON,
		prompt: newPrompter(stdin, stderr),
		stdout: stdout,
		stderr: stderr,
	}

	if err := cmd.run(ctx, c, fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return exitUsage
		}
		printError(stderr, err)
		return exitError
	}
	return exitOK
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintln(w, "usage: tollgatectl [flags] <command> [command flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-14s %s\n", name, commands[name].summary)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "flags:")
	fs.PrintDefaults()
}

func printError(w io.Writer, err error) {
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) {
		fmt.Fprintf(w, "error: %s (%s)\n", apiErr.Message, apiErr.Code)
		if apiErr.RetryAfter > 0 {
			fmt.Fprintf(w, "retry after %ds\n", apiErr.RetryAfter)
		}
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
