package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/formfill-backend/internal/model"
)

// ErrDuplicateEmail is returned when an email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository handles user data access.
type UserRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, full_name, role, password_hash, created_at, updated_at`

func userFields(u *model.User) []any {
	return []any{&u.ID, &u.Email, &u.FullName, &u.Role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt}
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	).Scan(userFields(u)...)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves a user by their unique email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = LOWER($1)`, email,
	).Scan(userFields(u)...)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a new user. An empty role defaults to model.RoleUser.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, full_name, password_hash, role)
		 VALUES (LOWER($1), $2, $3, $4)
		 RETURNING id, email, created_at, updated_at`,
		u.Email, u.FullName, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// UpdatePassword updates a user's password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		passwordHash, id,
	)
	return err
}

// ListPaginated returns one page of users ordered by creation, optionally
// filtered by role, plus the total matching count.
func (r *UserRepository) ListPaginated(ctx context.Context, role string, page, perPage int) ([]model.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM users WHERE ($1 = '' OR role = $1)`, role,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE ($1 = '' OR role = $1)
		 ORDER BY created_at ASC, id ASC
		 LIMIT $2 OFFSET $3`,
		role, perPage, (page-1)*perPage,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(userFields(&u)...); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

// UpdateRole sets a user's role and returns the updated row. It returns
// pgx.ErrNoRows when the user does not exist.
func (r *UserRepository) UpdateRole(ctx context.Context, id int, role string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET role = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2
		 RETURNING `+userColumns,
		role, id,
	).Scan(userFields(u)...)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user and, through the foreign key, their history. It
// returns pgx.ErrNoRows when the user does not exist.
func (r *UserRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
