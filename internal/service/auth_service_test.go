package service

import (
	"alcyxob/trainer-app/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewAuthService(repos.Trainers, "secret", time.Hour)
	ctx := context.Background()

	trainer, err := svc.Register(ctx, RegisterInput{Name: " Ann ", Email: "Ann@Test.test", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", trainer.Name)
	assert.Equal(t, "ann@test.test", trainer.Email)
	assert.Equal(t, "USD", trainer.Currency)
	assert.Empty(t, trainer.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@test.test", Password: "password123"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	token, got, err := svc.Login(ctx, "ANN@test.test", "password123")
	require.NoError(t, err)
	assert.Equal(t, trainer.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, trainer.ID, id)

	_, _, err = svc.Login(ctx, "ann@test.test", "wrong-password")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = svc.Login(ctx, "nobody@test.test", "password123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc := NewAuthService(memory.NewRepositories().Trainers, "secret", time.Hour)

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{name: "no name", in: RegisterInput{Email: "a@test.test", Password: "password123"}},
		{name: "bad email", in: RegisterInput{Name: "A", Email: "not-an-email", Password: "password123"}},
		{name: "short password", in: RegisterInput{Name: "A", Email: "a@test.test", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_LoginInactiveTrainer(t *testing.T) {
	f := newFixture(t)
	f.trainer.IsActive = false
	require.NoError(t, f.repos.Trainers.Update(context.Background(), f.trainer))

	svc := NewAuthService(f.repos.Trainers, "secret", time.Hour)
	_, _, err := svc.Login(context.Background(), f.trainer.Email, "password123")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestAuthService_ParseToken(t *testing.T) {
	svc := NewAuthService(memory.NewRepositories().Trainers, "secret", time.Hour)

	sign := func(secret string, method jwt.SigningMethod, exp time.Time) string {
		claims := &jwtClaims{UserID: "t1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}}
		token := jwt.NewWithClaims(method, claims)
		s, err := token.SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid", token: sign("secret", jwt.SigningMethodHS256, time.Now().Add(time.Hour))},
		{name: "expired", token: sign("secret", jwt.SigningMethodHS256, time.Now().Add(-time.Hour)), wantErr: true},
		{name: "wrong secret", token: sign("other", jwt.SigningMethodHS256, time.Now().Add(time.Hour)), wantErr: true},
		{name: "garbage", token: "abc.def.ghi", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := svc.ParseToken(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "t1", id)
		})
	}
}
