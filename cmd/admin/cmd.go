package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	"github.com/noah-isme/tutor-desk-api/internal/service"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type migrationRunner interface {
	Run(ctx context.Context, command string, args ...string) error
}

type userAdmin interface {
	Create(ctx context.Context, req service.CreateUserRequest) (*models.User, error)
	ResetPassword(ctx context.Context, email, password string) error
}

type sessionPruner interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type commandLine struct {
	migrator migrationRunner
	users    userAdmin
	sessions sessionPruner
	logger   *zap.Logger
	now      func() time.Time
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]          - run a goose command (up, down, status, redo, version, ...)")
	fmt.Fprintln(cli.out, "  adduser -email EMAIL -name NAME - create a tutor account; the password is prompted")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL      - set a new password and revoke open sessions")
	fmt.Fprintln(cli.out, "  prune-sessions [-grace 24h]     - delete sessions expired longer than the grace period")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrator.Run(ctx, args[2], args[3:]...)
	case "adduser":
		fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		email := fs.String("email", "", "Login email of the tutor.")
		name := fs.String("name", "", "Full name shown in the app.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if strings.TrimSpace(*email) == "" || strings.TrimSpace(*name) == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		user, err := cli.users.Create(ctx, service.CreateUserRequest{Email: *email, FullName: *name, Password: pwd})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created user %s (%s)\n", user.Email, user.ID)
		return nil
	case "resetpassword":
		fs := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		email := fs.String("email", "", "Login email of the tutor. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if strings.TrimSpace(*email) == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if err := cli.users.ResetPassword(ctx, *email, pwd); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "password updated")
		return nil
	case "prune-sessions":
		fs := flag.NewFlagSet("prune-sessions", flag.ContinueOnError)
		fs.SetOutput(cli.out)
		grace := fs.Duration("grace", 24*time.Hour, "Keep sessions expired less than this long ago.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		removed, err := cli.sessions.DeleteExpired(ctx, cli.now().Add(-*grace))
		if err != nil {
			return err
		}
		cli.logger.Info("expired sessions pruned", zap.Int64("count", removed))
		fmt.Fprintf(cli.out, "removed %d sessions\n", removed)
		return nil
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}
