// Command tollgate serves registration, login and the protected API.
//
// Configuration is read from the environment and an optional .env file. Run
// with -bootstrap-admin <username> once to create the first admin account;
// the password is read from the terminal and the TOTP enrollment URI is
// printed to stdout.
package main

//go:generate swag init -g internal/auth/http/router.go -d ../../ -o ../../api/tollgate --packageName tollgate

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aussiebroadwan/tollgate/internal/auth/app"
	"github.com/aussiebroadwan/tollgate/internal/auth/service"
)

func main() {
	bootstrapAdmin := flag.String("bootstrap-admin", "", "create an admin account with this username and exit")
	flag.Parse()

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if *bootstrapAdmin != "" {
		err := runBootstrap(application.AuthService(), *bootstrapAdmin)
		_ = application.Close()
		if err != nil {
			log.Fatalf("bootstrap failed: %v", err)
		}
		return
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func runBootstrap(svc *service.AuthService, username string) error {
	password, err := readPassword("Admin password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	res, err := svc.BootstrapAdmin(context.Background(), service.RegisterInput{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("admin %q created (id %s)\n", res.User.Username, res.User.ID)
	if res.Enrollment != nil {
		fmt.Println("Add this account to your authenticator app:")
		fmt.Println(res.Enrollment.ProvisioningURI)
	}
	return nil
}

// readPassword prompts without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var stdin = bufio.NewReader(os.Stdin)
