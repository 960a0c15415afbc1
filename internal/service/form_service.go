package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/stemsi/formfill-backend/internal/formparse"
	"github.com/stemsi/formfill-backend/internal/generate"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/reconcile"
	"github.com/stemsi/formfill-backend/internal/scrape"
)

// Form errors.
var (
	ErrDuplicateQuestionID = errors.New("duplicate question id")
	ErrHistoryNotFound     = errors.New("history entry not found")
)

// Fetcher renders a form page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (scrape.Page, error)
}

// Drafter proposes raw answers for questions.
type Drafter interface {
	Draft(ctx context.Context, questions []model.Question, uc model.UserContext) ([]model.Draft, error)
}

// HistoryStore reads and deletes stored answer sets.
type HistoryStore interface {
	ListByUserPaginated(ctx context.Context, userID, limit, offset int) ([]model.FormHistory, int, error)
	GetByID(ctx context.Context, userID int, id uuid.UUID) (*model.FormHistory, error)
	Delete(ctx context.Context, userID int, id uuid.UUID) error
}

// FormService scrapes and parses forms and produces reconciled answers.
type FormService struct {
	fetcher  Fetcher
	drafter  Drafter
	cache    FormCache
	queue    HistoryQueue
	history  HistoryStore
	cacheTTL time.Duration
	log      zerolog.Logger
}

// FormServiceDeps groups FormService collaborators. Cache, Queue and History
// may be nil, which disables caching, history persistence and history reads.
type FormServiceDeps struct {
	Fetcher  Fetcher
	Drafter  Drafter
	Cache    FormCache
	Queue    HistoryQueue
	History  HistoryStore
	CacheTTL time.Duration
}

// NewFormService creates a new FormService.
func NewFormService(deps FormServiceDeps, log zerolog.Logger) *FormService {
	return &FormService{
		fetcher:  deps.Fetcher,
		drafter:  deps.Drafter,
		cache:    deps.Cache,
		queue:    deps.Queue,
		history:  deps.History,
		cacheTTL: deps.CacheTTL,
		log:      log.With().Str("component", "form_service").Logger(),
	}
}

// ─── Parsing ──────────────────────────────────────────────────────────

// ScrapeForm renders the form at rawURL and extracts its questions. A form
// with no detectable questions is returned as-is, not as an error.
func (s *FormService) ScrapeForm(ctx context.Context, rawURL string) (*model.ParsedForm, error) {
	url := scrape.NormalizeURL(rawURL)

	if s.cache != nil {
		form, err := s.cache.Get(ctx, url)
		if err == nil {
			return form, nil
		}
		if !errors.Is(err, errCacheMiss) {
			s.log.Warn().Err(err).Str("url", url).Msg("Form cache read failed")
		}
	}

	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch form: %w", err)
	}

	form := formparse.ParseDocument(page.Markdown, page.HTML)
	if form.Title == "" {
		form.Title = page.Title
	}

	s.log.Info().
		Str("url", url).
		Int("questions", len(form.Questions)).
		Msg("Form scraped")

	if s.cache != nil && len(form.Questions) > 0 && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, url, &form, s.cacheTTL); err != nil {
			s.log.Warn().Err(err).Str("url", url).Msg("Form cache write failed")
		}
	}
	return &form, nil
}

// ParseText extracts questions from already-scraped text.
func (s *FormService) ParseText(text, html string) *model.ParsedForm {
	form := formparse.ParseDocument(text, html)
	return &form
}

// ParseManual extracts questions from a pasted, numbered quiz.
func (s *FormService) ParseManual(text string) []model.Question {
	return formparse.ParseManual(text)
}

// ParseAny tries the numbered-quiz parser first and falls back to the
// document scanner when it finds nothing.
func (s *FormService) ParseAny(text string) *model.ParsedForm {
	if qs := formparse.ParseManual(text); len(qs) > 0 {
		return &model.ParsedForm{Questions: qs}
	}
	return s.ParseText(text, "")
}

// ─── Answering ────────────────────────────────────────────────────────

// Answer drafts, reconciles and optionally misses answers for req.Questions.
//
// Identity questions are filled from req.UserContext where a value is known
// and are never missed on purpose. Caller-supplied req.Answers replace the
// generator. The result is queued for history when userID is positive.
func (s *FormService) Answer(ctx context.Context, userID int, req model.AnswerFormRequest) (*model.AnswerFormResponse, error) {
	questions := req.Questions
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if seen[q.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateQuestionID, q.ID)
		}
		seen[q.ID] = true
	}

	overrides := make(map[string]string, len(req.Overrides))
	for _, o := range req.Overrides {
		if seen[o.QuestionID] {
			overrides[o.QuestionID] = o.Answer
		}
	}

	protected := make(map[string]bool)
	var drafts []model.Draft
	var pending []model.Question

	for _, q := range questions {
		if categoryOf(q) != model.QuestionCategoryIdentity {
			pending = append(pending, q)
			continue
		}
		protected[q.ID] = true
		if v := identityValue(q, req.UserContext); v != "" {
			drafts = append(drafts, model.Draft{QuestionID: q.ID, Answer: v})
			continue
		}
		pending = append(pending, q)
	}

	switch {
	case len(req.Answers) > 0:
		drafts = append(drafts, req.Answers...)
	default:
		var ask []model.Question
		for _, q := range pending {
			if _, ok := overrides[q.ID]; !ok {
				ask = append(ask, q)
			}
		}
		if len(ask) > 0 {
			generated, err := s.drafter.Draft(ctx, ask, req.UserContext)
			if err != nil {
				if generate.IsProviderLimit(err) {
					s.log.Warn().Err(err).Int("questions", len(ask)).Msg("Generator limit reached")
				}
				return nil, err
			}
			drafts = append(drafts, generated...)
		}
	}

	var rng *rand.Rand
	if req.Seed != nil {
		rng = reconcile.NewSeededRand(*req.Seed)
	}

	out := reconcile.Batch(questions, drafts, reconcile.BatchOptions{
		WrongCount: req.WrongAnswerCount,
		Rand:       rng,
		Overrides:  overrides,
		Protected:  protected,
	})

	resp := &model.AnswerFormResponse{
		Answers:   out.Answers,
		Missed:    out.Missed,
		Unmatched: out.Unmatched,
	}

	if userID > 0 && s.queue != nil {
		entry := &model.FormHistory{
			ID:        uuid.New(),
			UserID:    userID,
			FormURL:   strings.TrimSpace(req.FormURL),
			FormTitle: strings.TrimSpace(req.FormTitle),
			Questions: questions,
			Answers:   out.Answers,
			MissedIDs: out.Missed,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.queue.Enqueue(ctx, entry); err != nil {
			s.log.Error().Err(err).Int("user_id", userID).Msg("Failed to queue history")
		} else {
			resp.HistoryID = entry.ID.String()
		}
	}

	s.log.Info().
		Int("questions", len(questions)).
		Int("missed", len(out.Missed)).
		Int("unmatched", len(out.Unmatched)).
		Msg("Answers reconciled")

	return resp, nil
}

// categoryOf returns q's category, classifying it when the caller left it blank.
func categoryOf(q model.Question) model.QuestionCategory {
	if q.Category != "" {
		return q.Category
	}
	return formparse.Classify(q.Text)
}

// identityValue returns the profile value q asks for, or "" when unknown.
func identityValue(q model.Question, uc model.UserContext) string {
	switch formparse.IdentityFieldOf(q.Text) {
	case formparse.IdentityFullName:
		return strings.TrimSpace(uc.FullName)
	case formparse.IdentityEmail:
		return strings.TrimSpace(uc.Email)
	}
	return ""
}

// ─── History ──────────────────────────────────────────────────────────

// ListHistory returns a page of the user's stored answer sets.
func (s *FormService) ListHistory(ctx context.Context, userID, page, perPage int) ([]model.FormHistory, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	entries, total, err := s.history.ListByUserPaginated(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	return entries, total, nil
}

// GetHistory returns one of the user's stored answer sets.
func (s *FormService) GetHistory(ctx context.Context, userID int, id uuid.UUID) (*model.FormHistory, error) {
	h, err := s.history.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHistoryNotFound
		}
		return nil, fmt.Errorf("get history: %w", err)
	}
	return h, nil
}

// DeleteHistory removes one of the user's stored answer sets.
func (s *FormService) DeleteHistory(ctx context.Context, userID int, id uuid.UUID) error {
	if err := s.history.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrHistoryNotFound
		}
		return fmt.Errorf("delete history: %w", err)
	}
	return nil
}
