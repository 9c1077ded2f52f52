package sqlite

import (
	"context"
	"testing"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileRepo_UpsertAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepo(newTestDB(t))

	created, err := repo.Upsert(ctx, core.Profile{PhoneNumber: "+91 98765-43210", Name: "Asha"})
	require.NoError(t, err)
	require.NotEmpty(t, created.UserID)
	assert.Equal(t, "+919876543210", created.PhoneNumber)
	assert.False(t, created.OnboardingComplete())

	created.Gender = "female"
	created.Location = "Hyderabad"
	updated, err := repo.Upsert(ctx, *created)
	require.NoError(t, err)
	assert.True(t, updated.OnboardingComplete())

	byPhone, err := repo.GetByPhone(ctx, "+919876543210")
	require.NoError(t, err)
	assert.Equal(t, created.UserID, byPhone.UserID)
	assert.Equal(t, "Hyderabad", byPhone.Location)
}

func TestProfileRepo_NotFound(t *testing.T) {
	repo := NewProfileRepo(newTestDB(t))

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.GetByPhone(context.Background(), "+10000000000")
	assert.ErrorIs(t, err, core.ErrNotFound)
}
