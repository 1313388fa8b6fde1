package main

import (
	"alcyxob/trainer-app/internal/service"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out        io.Writer
	migrate    func(ctx context.Context) error
	authSvc    service.AuthService
	trainerSvc service.TrainerService
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                                       - create tables and indexes")
	fmt.Fprintln(cli.out, "  adduser -name NAME -email EMAIL [-password P] - create a trainer account")
	fmt.Fprintln(cli.out, "  resetpassword -email EMAIL [-password P]      - set a trainer's password")
	fmt.Fprintln(cli.out, "The password is prompted when -password is omitted.")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	migrateCmd := flag.NewFlagSet("migrate", flag.ContinueOnError)

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserName := addUserCmd.String("name", "", "The trainer's name.")
	addUserEmail := addUserCmd.String("email", "", "The trainer's email, used to log in.")
	addUserPwd := addUserCmd.String("password", "", "The password. Prompted when empty.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordEmail := resetPasswordCmd.String("email", "", "The trainer's email.")
	resetPasswordPwd := resetPasswordCmd.String("password", "", "The new password. Prompted when empty.")

	for _, fs := range []*flag.FlagSet{migrateCmd, addUserCmd, resetPasswordCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "migrate":
		if err := migrateCmd.Parse(args[2:]); err != nil {
			return err
		}
		if err := cli.migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "migrations applied")
		return nil

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserName == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.password(*addUserPwd)
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(ctx, *addUserName, *addUserEmail, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordEmail == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.password(*resetPasswordPwd)
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *resetPasswordEmail, pwd)

	default:
		cli.printUsage()
		return errHelp
	}
}

// password returns flagValue, or prompts for one without echo.
func (cli *commandLine) password(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
