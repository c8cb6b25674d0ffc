package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/tollgate/pkg/authsdk"
	"github.com/aussiebroadwan/tollgate/pkg/cryptox"
)

var (
	errUsage   = errors.New("usage")
	errNoToken = errors.New("no token: pass -token or set TOLLGATE_TOKEN")
)

const pngDataURIPrefix = "data:image/png;base64,"

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) session() (*authsdk.Session, error) {
	if c.token == "" {
		return nil, errNoToken
	}
	return c.client.NewSessionFromToken(c.token), nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) username(value string) (string, error) {
	if value != "" {
		return value, nil
	}
	return c.prompt.Line("Username: ")
}

func cmdRegister(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("register")
	user := fs.String("u", "", "username")
	qrFile := fs.String("qr", "", "write the enrollment QR code PNG to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	username, err := c.username(*user)
	if err != nil {
		return err
	}
	password, err := c.prompt.Secret("Password: ")
	if err != nil {
		return err
	}

	res, err := c.client.Register(ctx, authsdk.RegisterRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	if *qrFile != "" && res.QRCode != "" {
		if err := writeDataURI(*qrFile, res.QRCode); err != nil {
			return err
		}
	}

	if c.json {
		return c.printJSON(res)
	}

	fmt.Fprintf(c.stdout, "%s: %s (%s)\n", res.Message, res.User.Username, res.User.ID)
	if res.Secret != "" {
		fmt.Fprintln(c.stdout, "Add this account to your authenticator app. It will not be shown again.")
		fmt.Fprintf(c.stdout, "secret: %s\n", res.Secret)
		fmt.Fprintf(c.stdout, "uri:    %s\n", res.ProvisioningURI)
		if *qrFile != "" {
			fmt.Fprintf(c.stdout, "qr:     %s\n", *qrFile)
		}
	}
	return nil
}

func writeDataURI(path, uri string) error {
	encoded, ok := strings.CutPrefix(uri, pngDataURIPrefix)
	if !ok {
		return fmt.Errorf("unexpected QR code encoding")
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("decode QR code: %w", err)
	}
	return os.WriteFile(path, png, 0o600)
}

// cmdLogin prints only the token on stdout so it can be captured:
//
//	export TOLLGATE_TOKEN=$(tollgatectl login -u alice)
func cmdLogin(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("login")
	user := fs.String("u", "", "username")
	otp := fs.String("otp", "", "one-time code from the authenticator app")
	if err := fs.Parse(args); err != nil {
		return err
	}

	username, err := c.username(*user)
	if err != nil {
		return err
	}
	password, err := c.prompt.Secret("Password: ")
	if err != nil {
		return err
	}

	req := authsdk.LoginRequest{Username: username, Password: password, OTP: *otp}
	res, err := c.client.LoginRaw(ctx, req)
	if authsdk.IsCode(err, authsdk.CodeOTPRequired) && c.prompt.tty {
		if req.OTP, err = c.prompt.Line("One-time code: "); err != nil {
			return err
		}
		res, err = c.client.LoginRaw(ctx, req)
	}
	if err != nil {
		return err
	}

	if c.json {
		return c.printJSON(res)
	}

	fmt.Fprintf(c.stderr, "%s as %s (%s)\n", res.Message, res.User.Username, res.Role)
	fmt.Fprintln(c.stdout, res.Token)
	return nil
}

func cmdProfile(ctx context.Context, c *cli, args []string) error {
	if err := c.flags("profile").Parse(args); err != nil {
		return err
	}
	sess, err := c.session()
	if err != nil {
		return err
	}

	res, err := sess.Profile(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(res)
	}

	fmt.Fprintf(c.stdout, "id:       %s\n", res.User.ID)
	fmt.Fprintf(c.stdout, "username: %s\n", res.User.Username)
	fmt.Fprintf(c.stdout, "role:     %s\n", res.User.Role)
	return nil
}

func cmdCategories(ctx context.Context, c *cli, args []string) error {
	if err := c.flags("categories").Parse(args); err != nil {
		return err
	}
	sess, err := c.session()
	if err != nil {
		return err
	}

	cats, err := sess.ListCategories(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(cats)
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLABEL")
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", cat.ID, cat.Name, cat.Label)
	}
	return tw.Flush()
}

func cmdAddCategory(ctx context.Context, c *cli, args []string) error {
	fs := c.flags("add-category")
	name := fs.String("name", "", "category name")
	label := fs.String("label", "", "display label")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *label == "" {
		fmt.Fprintln(c.stderr, "add-category requires -name and -label")
		return errUsage
	}

	sess, err := c.session()
	if err != nil {
		return err
	}

	cat, err := sess.CreateCategory(ctx, authsdk.CreateCategoryRequest{Name: *name, Label: *label})
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(cat)
	}

	fmt.Fprintf(c.stdout, "created %s (%s)\n", cat.Name, cat.ID)
	return nil
}

func cmdLogout(ctx context.Context, c *cli, args []string) error {
	if err := c.flags("logout").Parse(args); err != nil {
		return err
	}
	sess, err := c.session()
	if err != nil {
		return err
	}

	if err := sess.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Logged out")
	return nil
}

func cmdHealth(ctx context.Context, c *cli, args []string) error {
	if err := c.flags("health").Parse(args); err != nil {
		return err
	}

	res, err := c.client.GetReadiness(ctx)
	if err != nil {
		return err
	}
	if c.json {
		return c.printJSON(res)
	}

	fmt.Fprintf(c.stdout, "status:  %s\n", res.Status)
	if res.Version != "" {
		fmt.Fprintf(c.stdout, "version: %s\n", res.Version)
	}
	if res.Uptime != "" {
		fmt.Fprintf(c.stdout, "uptime:  %s\n", res.Uptime)
	}
	if res.Checks != nil {
		fmt.Fprintf(c.stdout, "database: %s\n", res.Checks.Database)
		if res.Checks.Redis != "" {
			fmt.Fprintf(c.stdout, "redis:    %s\n", res.Checks.Redis)
		}
		fmt.Fprintf(c.stdout, "tokens:   %s\n", res.Checks.TokenMode)
	}
	return nil
}

// cmdHash hashes locally, for seeding password_hash columns by hand. It
// never contacts the server.
func cmdHash(_ context.Context, c *cli, args []string) error {
	if err := c.flags("hash").Parse(args); err != nil {
		return err
	}

	password, err := c.prompt.Secret("Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("empty password")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, hash)
	return nil
}
