package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/formfill-backend/internal/model"
)

type memAdminStore struct {
	users map[int]*model.User
	err   error
}

func (m *memAdminStore) ListPaginated(_ context.Context, role string, _, _ int) ([]model.User, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	var out []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (m *memAdminStore) UpdateRole(_ context.Context, id int, role string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	u.Role = role
	return u, nil
}

func (m *memAdminStore) Delete(_ context.Context, id int) error {
	if _, ok := m.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, id)
	return nil
}

func newAdminStore() *memAdminStore {
	return &memAdminStore{users: map[int]*model.User{
		1: {ID: 1, Email: "admin@example.com", Role: model.RoleAdmin},
		2: {ID: 2, Email: "budi@example.com", Role: model.RoleUser},
	}}
}

func TestAdminUserService_UpdateRole(t *testing.T) {
	store := newAdminStore()
	svc := NewAdminUserService(store, zerolog.Nop())
	ctx := context.Background()

	u, err := svc.UpdateRole(ctx, 1, 2, model.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	_, err = svc.UpdateRole(ctx, 1, 1, model.RoleUser)
	assert.ErrorIs(t, err, ErrSelfAction)
	assert.Equal(t, model.RoleAdmin, store.users[1].Role)

	_, err = svc.UpdateRole(ctx, 1, 42, model.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdminUserService_DeleteUser(t *testing.T) {
	store := newAdminStore()
	svc := NewAdminUserService(store, zerolog.Nop())
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteUser(ctx, 1, 1), ErrSelfAction)
	assert.ErrorIs(t, svc.DeleteUser(ctx, 1, 42), ErrUserNotFound)
	require.NoError(t, svc.DeleteUser(ctx, 1, 2))
	assert.NotContains(t, store.users, 2)
}

func TestAdminUserService_ListUsers(t *testing.T) {
	svc := NewAdminUserService(newAdminStore(), zerolog.Nop())

	users, total, err := svc.ListUsers(context.Background(), model.RoleUser, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "budi@example.com", users[0].Email)

	boom := errors.New("db down")
	svc = NewAdminUserService(&memAdminStore{err: boom}, zerolog.Nop())
	_, _, err = svc.ListUsers(context.Background(), "", 1, 20)
	assert.ErrorIs(t, err, boom)
}
