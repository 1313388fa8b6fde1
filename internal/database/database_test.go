package database

import (
	"alcyxob/trainer-app/internal/config"
	"alcyxob/trainer-app/internal/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	ctx := context.Background()
	backend, err := Open(ctx, config.DatabaseConfig{Driver: config.DriverMemory}, false)
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Migrate(ctx))
	trainer := &domain.Trainer{Name: "Coach", Email: "coach@test.test"}
	require.NoError(t, backend.Repos.Trainers.Create(ctx, trainer))
	got, err := backend.Repos.Trainers.GetByEmail(ctx, "coach@test.test")
	require.NoError(t, err)
	assert.Equal(t, trainer.ID, got.ID)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite"}, false)
	assert.ErrorContains(t, err, "sqlite")
}
