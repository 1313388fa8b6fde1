package main

import (
	"alcyxob/trainer-app/internal/service"
	"context"
	"fmt"
)

func (cli *commandLine) addUser(ctx context.Context, name, email, pwd string) error {
	trainer, err := cli.authSvc.Register(ctx, service.RegisterInput{
		Name:     name,
		Email:    email,
		Password: pwd,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created trainer %s (%s)\n", trainer.Email, trainer.ID)
	return nil
}
