package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finexus/tradedesk/internal/repository/memory"
)

func TestRegisterAndLogin(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store, dec("1000000"), testLogger())
	ctx := context.Background()

	user, err := svc.Register(ctx, "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "1000000", user.CashBalance.String())
	assert.NotEqual(t, "hunter2", user.PasswordHash)

	got, err := svc.Login(ctx, "asha@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store, dec("1000000"), testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAccountService(memory.New(), dec("1000000"), testLogger())
	_, err := svc.Login(context.Background(), "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := memory.New()
	svc := NewAccountService(store, dec("1000000"), testLogger())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Other", "Asha@Example.com", "hunter3")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAccountService(memory.New(), dec("1000000"), testLogger())
	_, err := svc.Register(context.Background(), "", "asha@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register(context.Background(), "Asha", "asha@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}
