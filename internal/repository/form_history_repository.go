package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/formfill-backend/internal/model"
)

// FormHistoryRepository handles stored answer sets.
type FormHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewFormHistoryRepository creates a new FormHistoryRepository.
func NewFormHistoryRepository(pool *pgxpool.Pool) *FormHistoryRepository {
	return &FormHistoryRepository{pool: pool}
}

// Insert stores an entry. Inserting an ID that already exists is a no-op so
// queue redeliveries stay idempotent.
func (r *FormHistoryRepository) Insert(ctx context.Context, h *model.FormHistory) error {
	questions, err := json.Marshal(h.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	answers, err := json.Marshal(h.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	missed := h.MissedIDs
	if missed == nil {
		missed = []string{}
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO form_history (id, user_id, form_url, form_title, questions, answers, missed_ids, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		h.ID, h.UserID, h.FormURL, h.FormTitle, questions, answers, missed, h.CreatedAt,
	)
	return err
}

// ListByUserPaginated returns a page of a user's entries, newest first, and the total count.
func (r *FormHistoryRepository) ListByUserPaginated(ctx context.Context, userID, limit, offset int) ([]model.FormHistory, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM form_history WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, form_url, form_title, questions, answers, missed_ids, created_at
		 FROM form_history WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []model.FormHistory{}
	for rows.Next() {
		h, err := scanHistory(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *h)
	}
	return entries, total, rows.Err()
}

// GetByID retrieves one entry owned by userID.
func (r *FormHistoryRepository) GetByID(ctx context.Context, userID int, id uuid.UUID) (*model.FormHistory, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, form_url, form_title, questions, answers, missed_ids, created_at
		 FROM form_history WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanHistory(row)
}

// Delete removes one entry owned by userID. It returns pgx.ErrNoRows when
// nothing was deleted.
func (r *FormHistoryRepository) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM form_history WHERE id = $1 AND user_id = $2`, id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanHistory(row pgx.Row) (*model.FormHistory, error) {
	h := &model.FormHistory{}
	var questions, answers []byte
	if err := row.Scan(&h.ID, &h.UserID, &h.FormURL, &h.FormTitle, &questions, &answers, &h.MissedIDs, &h.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &h.Questions); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	if err := json.Unmarshal(answers, &h.Answers); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	return h, nil
}
