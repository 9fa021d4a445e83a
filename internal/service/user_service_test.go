package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()

	u, err := env.users.CreateUser(ctx, CreateUserInput{
		FirstName: " Ada ",
		LastName:  "Lovelace",
		Email:     "Ada@Example.COM",
		Password:  "s3cret",
		Country:   "FR",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, domain.RoleClient, u.Role)
	assert.NotEqual(t, "s3cret", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret")))

	raw, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), u.PasswordHash)
}

func TestCreateUser_Errors(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	env.seedUser(t, "ada@example.com")

	_, err := env.users.CreateUser(ctx, CreateUserInput{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.CreateUser(ctx, CreateUserInput{Email: "bob@example.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = env.users.CreateUser(ctx, CreateUserInput{Email: "ADA@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	users, err := env.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com")

	updated, err := env.users.UpdateUser(ctx, u.ID, UpdateUserInput{
		FirstName: "Ada",
		LastName:  "King",
		Email:     "ada.king@example.com",
		Role:      domain.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)

	got, err := env.users.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada.king@example.com", got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	_, err = env.users.UpdateUser(ctx, u.ID, UpdateUserInput{Email: "ada@example.com", Role: "ROOT"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = env.users.UpdateUser(ctx, 99, UpdateUserInput{Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlockAndUnblockUser(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com")

	blocked, err := env.users.BlockUser(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, blocked.Blocked)

	unblocked, err := env.users.UnblockUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, unblocked.Blocked)

	_, err = env.users.BlockUser(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()
	u := env.seedUser(t, "ada@example.com")

	require.NoError(t, env.users.DeleteUser(ctx, u.ID))
	_, err := env.users.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, env.users.DeleteUser(ctx, u.ID), domain.ErrNotFound)
}

func TestSubmitContact_QueuesEvent(t *testing.T) {
	env := newTestEnv(t, RestockConsistent)
	ctx := context.Background()

	require.NoError(t, env.users.SubmitContact(ctx, "Client@Example.com", " Delivery ", "Where is my parcel?"))

	events := env.outbox(t)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventContactSubmitted, events[0].EventType)
	assert.Equal(t, "contact-client@example.com", events[0].AggregateID)

	var payload domain.ContactSubmittedEvent
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "Delivery", payload.Subject)
	assert.NotEmpty(t, payload.EventID)

	assert.ErrorIs(t, env.users.SubmitContact(ctx, "client@example.com", "hi", "  "), domain.ErrInvalidArgument)
	assert.ErrorIs(t, env.users.SubmitContact(ctx, "nope", "hi", "text"), domain.ErrInvalidArgument)
}
