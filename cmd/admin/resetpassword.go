package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	if err := cli.trainerSvc.ResetPassword(ctx, email, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password updated for %s\n", email)
	return nil
}
