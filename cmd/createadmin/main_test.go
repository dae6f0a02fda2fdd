package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/canteen-engine/auth"
	"github.com/warp/canteen-engine/canteen"
	store "github.com/warp/canteen-engine/canteen/store"
)

func TestCreateAdmin_ProvisionsAccount(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, createAdmin(ctx, mem, "root@campus.edu", "secret123", "Site Admin"))

	user, err := mem.GetUser(ctx, "root@campus.edu")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, canteen.RoleAdmin, user.Role)
	assert.True(t, user.Active)
	assert.True(t, user.Balance.IsZero(), "admin accounts carry no wallet balance")
	assert.True(t, auth.CheckPassword(user.PasswordHash, "secret123"))
}

func TestCreateAdmin_RefusesExistingAccount(t *testing.T) {
	// GIVEN: A student account under the target email
	// WHEN: Bootstrapping an admin with the same email
	// THEN: The account is left untouched

	mem := store.NewMemory()
	ctx := context.Background()
	require.NoError(t, mem.SaveUser(ctx, canteen.User{
		Email:   "alice@campus.edu",
		Role:    canteen.RoleUser,
		Balance: canteen.MoneyFromInt(50),
		Active:  true,
	}))

	err := createAdmin(ctx, mem, "alice@campus.edu", "secret123", "Impostor")
	assert.ErrorIs(t, err, canteen.ErrUserExists)

	user, err := mem.GetUser(ctx, "alice@campus.edu")
	require.NoError(t, err)
	assert.Equal(t, canteen.RoleUser, user.Role, "existing accounts are never promoted")
}
