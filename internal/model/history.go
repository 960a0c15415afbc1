package model

import (
	"time"

	"github.com/google/uuid"
)

// FormHistory is a stored set of answers for one form.
type FormHistory struct {
	ID        uuid.UUID  `json:"id"`
	UserID    int        `json:"user_id"`
	FormURL   string     `json:"form_url"`
	FormTitle string     `json:"form_title"`
	Questions []Question `json:"questions"`
	Answers   []Answer   `json:"answers"`
	MissedIDs []string   `json:"missed_ids"`
	CreatedAt time.Time  `json:"created_at"`
}
