package main

import (
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/repository/memory"
	"alcyxob/trainer-app/internal/service"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T) (*commandLine, repository.Repositories, *int) {
	t.Helper()
	repos := memory.NewRepositories()
	migrations := 0
	cli := &commandLine{
		out: &bytes.Buffer{},
		migrate: func(context.Context) error {
			migrations++
			return nil
		},
		authSvc:    service.NewAuthService(repos.Trainers, "test-secret", time.Hour),
		trainerSvc: service.NewTrainerService(repos.Trainers, repos.Plans, nil, nil, 0),
	}
	return cli, repos, &migrations
}

type cliTest struct {
	name    string
	args    []string // without program name
	prompt  string   // what the password prompt returns
	wantErr error
}

func runCLI(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readPasswordFunc = func(int) ([]byte, error) { return []byte(tt.prompt), nil }
			err := cli.run(context.Background(), append([]string{"admin"}, tt.args...))
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, _, _ := setup(t)
	runCLI(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
	})
	assert.Contains(t, cli.out.(*bytes.Buffer).String(), "resetpassword")
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _, migrations := setup(t)
	runCLI(t, cli, []cliTest{{name: "migrate", args: []string{"migrate"}}})
	assert.Equal(t, 1, *migrations)

	cli.migrate = func(context.Context) error { return errors.New("db down") }
	err := cli.run(context.Background(), []string{"admin", "migrate"})
	assert.EqualError(t, err, "db down")
}

func Test_commandLine_addUser(t *testing.T) {
	cli, repos, _ := setup(t)
	runCLI(t, cli, []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no email", args: []string{"adduser", "-name", "Coach"}, wantErr: errHelp},
		{name: "empty prompt", args: []string{"adduser", "-name", "Coach", "-email", "coach@test.test"}, wantErr: errHelp},
		{name: "short password", args: []string{"adduser", "-name", "Coach", "-email", "coach@test.test", "-password", "short"}, wantErr: service.ErrValidation},
		{name: "password flag", args: []string{"adduser", "-name", "Coach", "-email", "Coach@Test.test", "-password", "password123"}},
		{name: "duplicate", args: []string{"adduser", "-name", "Coach", "-email", "coach@test.test", "-password", "password123"}, wantErr: service.ErrUserAlreadyExists},
		{name: "prompted password", args: []string{"adduser", "-name", "Ana", "-email", "ana@test.test"}, prompt: "prompted123"},
	})

	coach, err := repos.Trainers.GetByEmail(context.Background(), "coach@test.test")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(coach.PasswordHash), []byte("password123")))
	ana, err := repos.Trainers.GetByEmail(context.Background(), "ana@test.test")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(ana.PasswordHash), []byte("prompted123")))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, repos, _ := setup(t)
	require.NoError(t, cli.run(context.Background(), []string{"admin", "adduser", "-name", "Coach", "-email", "coach@test.test", "-password", "password123"}))

	runCLI(t, cli, []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "coach@test.test"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-email", "lol@test.test"}, prompt: "newpassword1", wantErr: service.ErrTrainerNotFound},
		{name: "reset", args: []string{"resetpassword", "-email", "coach@test.test"}, prompt: "newpassword1"},
	})

	coach, err := repos.Trainers.GetByEmail(context.Background(), "coach@test.test")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(coach.PasswordHash), []byte("newpassword1")))
}
