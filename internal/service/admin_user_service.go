package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/stemsi/formfill-backend/internal/model"
)

// ErrSelfAction is returned when an admin tries to demote or delete themself.
var ErrSelfAction = errors.New("cannot change own account")

// UserAdminStore is the persistence AdminUserService depends on.
type UserAdminStore interface {
	ListPaginated(ctx context.Context, role string, page, perPage int) ([]model.User, int, error)
	UpdateRole(ctx context.Context, id int, role string) (*model.User, error)
	Delete(ctx context.Context, id int) error
}

// AdminUserService lets admins list accounts, change roles and remove accounts.
type AdminUserService struct {
	users UserAdminStore
	log   zerolog.Logger
}

// NewAdminUserService creates a new AdminUserService.
func NewAdminUserService(users UserAdminStore, log zerolog.Logger) *AdminUserService {
	return &AdminUserService{
		users: users,
		log:   log.With().Str("component", "admin_user_service").Logger(),
	}
}

// ListUsers returns one page of accounts. An empty role lists every account.
func (s *AdminUserService) ListUsers(ctx context.Context, role string, page, perPage int) ([]model.User, int, error) {
	users, total, err := s.users.ListPaginated(ctx, role, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// UpdateRole sets the role of account id on behalf of actorID. Admins cannot
// change their own role, so the last admin can never lock everyone out.
func (s *AdminUserService) UpdateRole(ctx context.Context, actorID, id int, role string) (*model.User, error) {
	if actorID == id {
		return nil, ErrSelfAction
	}

	u, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}

	s.log.Info().Int("actor_id", actorID).Int("user_id", id).Str("role", role).Msg("Role updated")
	return u, nil
}

// DeleteUser removes account id and its history on behalf of actorID.
func (s *AdminUserService) DeleteUser(ctx context.Context, actorID, id int) error {
	if actorID == id {
		return ErrSelfAction
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().Int("actor_id", actorID).Int("user_id", id).Msg("User deleted")
	return nil
}
