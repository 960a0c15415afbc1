package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/generate"
	"github.com/stemsi/formfill-backend/internal/handler"
	"github.com/stemsi/formfill-backend/internal/middleware"
	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/repository"
	"github.com/stemsi/formfill-backend/internal/scrape"
	"github.com/stemsi/formfill-backend/internal/service"
	"github.com/stemsi/formfill-backend/internal/validator"
)

type users struct{ list []*model.User }

func (u *users) GetByID(_ context.Context, id int) (*model.User, error) {
	for _, x := range u.list {
		if x.ID == id {
			return x, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (u *users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, x := range u.list {
		if x.Email == email {
			return x, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (u *users) Create(_ context.Context, x *model.User) error {
	if _, err := u.GetByEmail(context.Background(), x.Email); err == nil {
		return repository.ErrDuplicateEmail
	}
	x.ID = len(u.list) + 1
	u.list = append(u.list, x)
	return nil
}

func (u *users) ListPaginated(_ context.Context, role string, page, perPage int) ([]model.User, int, error) {
	var match []model.User
	for _, x := range u.list {
		if role == "" || x.Role == role {
			match = append(match, *x)
		}
	}
	start := min((page-1)*perPage, len(match))
	end := min(start+perPage, len(match))
	return match[start:end], len(match), nil
}

func (u *users) UpdateRole(_ context.Context, id int, role string) (*model.User, error) {
	x, err := u.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	x.Role = role
	return x, nil
}

func (u *users) Delete(_ context.Context, id int) error {
	for i, x := range u.list {
		if x.ID == id {
			u.list = append(u.list[:i], u.list[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fetcher struct {
	page scrape.Page
	err  error
}

func (f fetcher) Fetch(context.Context, string) (scrape.Page, error) { return f.page, f.err }

type drafter struct{ err error }

func (d drafter) Draft(_ context.Context, qs []model.Question, _ model.UserContext) ([]model.Draft, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := make([]model.Draft, len(qs))
	for i, q := range qs {
		out[i] = model.Draft{QuestionID: q.ID, Answer: "a."}
	}
	return out, nil
}

type queue struct{ n int }

func (q *queue) Enqueue(context.Context, *model.FormHistory) error { q.n++; return nil }

type history struct{}

func (history) ListByUserPaginated(context.Context, int, int, int) ([]model.FormHistory, int, error) {
	return []model.FormHistory{{ID: uuid.New(), FormTitle: "Kuis"}}, 21, nil
}

func (history) GetByID(_ context.Context, userID int, id uuid.UUID) (*model.FormHistory, error) {
	return &model.FormHistory{ID: id, UserID: userID, FormTitle: "Kuis"}, nil
}

func (history) Delete(context.Context, int, uuid.UUID) error { return pgx.ErrNoRows }

type env struct {
	engine *gin.Engine
	queue  *queue
	users  *users
}

func newEnv(t *testing.T, f fetcher, d drafter) *env {
	t.Helper()
	validator.Setup()

	cfg := &config.Config{
		GinMode:    gin.TestMode,
		JWTSecret:  "secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	log := zerolog.Nop()
	q := &queue{}
	u := &users{}

	auth := service.NewAuthService(cfg, u)
	forms := service.NewFormService(service.FormServiceDeps{
		Fetcher: f, Drafter: d, Queue: q, History: history{},
	}, log)

	engine := SetupRouter(auth, middleware.NewRateLimiter(1000, 1000), &Handlers{
		Auth:    handler.NewAuthHandler(auth, log),
		Form:    handler.NewFormHandler(forms, log),
		History: handler.NewHistoryHandler(forms),
		Admin:   handler.NewAdminUserHandler(service.NewAdminUserService(u, log), log),
		System:  handler.NewSystemHandler(map[string]handler.Check{"db": func(context.Context) error { return nil }}, nil, log),
	}, cfg)
	return &env{engine: engine, queue: q, users: u}
}

func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (e *env) token(t *testing.T) string {
	t.Helper()
	return e.register(t, "guru@example.com")
}

func (e *env) register(t *testing.T, email string) string {
	t.Helper()
	w, body := e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": email, "full_name": "Bu Guru", "password": "rahasia123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return body["data"].(map[string]any)["token"].(string)
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	w, body := e.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["data"].(map[string]any)["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	token := e.token(t)

	w, body := e.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["data"].(map[string]any)["user"].(map[string]any)
	assert.Equal(t, "guru@example.com", user["email"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password_hash")

	w, body = e.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email": "guru@example.com", "full_name": "Bu Guru", "password": "rahasia123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", errorCode(body))

	w, body = e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "guru@example.com", "password": "salah123"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(body))

	w, body = e.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "bukan-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))
}

func TestFormsRequireAuth(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	w, body := e.do(t, http.MethodPost, "/api/v1/forms/parse", "", gin.H{"text": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", errorCode(body))
}

func TestParseEndpoints(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	token := e.token(t)

	w, body := e.do(t, http.MethodPost, "/api/v1/forms/manual", token, gin.H{
		"text": "1. Ibu kota Jepang?\na. Tokyo\nb. Kyoto\n2. Jelaskan fotosintesis",
	})
	require.Equal(t, http.StatusOK, w.Code)
	qs := body["data"].(map[string]any)["questions"].([]any)
	assert.Len(t, qs, 2)
	assert.Equal(t, "no-store, private", w.Header().Get("Cache-Control"))

	w, body = e.do(t, http.MethodPost, "/api/v1/forms/parse", token, gin.H{"text": "Sign in\nSubmit"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "NO_QUESTIONS_DETECTED", errorCode(body))
}

func TestScrapeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not configured", scrape.ErrNotConfigured, http.StatusInternalServerError, "SCRAPER_NOT_CONFIGURED"},
		{"upstream", &scrape.APIError{Status: 500, Message: "boom"}, http.StatusBadGateway, "SCRAPE_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, fetcher{err: tt.err}, drafter{})
			w, body := e.do(t, http.MethodPost, "/api/v1/forms/scrape", e.token(t), gin.H{"url": "forms.gle/x"})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(body))
		})
	}
}

func TestAnswerEndpoint(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	token := e.token(t)

	w, body := e.do(t, http.MethodPost, "/api/v1/forms/answers", token, gin.H{
		"questions": []gin.H{
			{"id": "q1", "question": "Ibu kota Jepang?", "type": "multiple_choice", "options": []string{"Tokyo", "Kyoto"}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := body["data"].(map[string]any)
	answers := data["answers"].([]any)
	assert.Equal(t, "Tokyo", answers[0].(map[string]any)["answer"])
	assert.NotEmpty(t, data["historyId"])
	assert.Equal(t, 1, e.queue.n)

	w, body = e.do(t, http.MethodPost, "/api/v1/forms/answers", token, gin.H{
		"questions": []gin.H{{"id": "q1", "question": "Ibu kota?", "type": "essay"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))
}

func TestAnswerProviderLimits(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{generate.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{generate.ErrQuotaExhausted, http.StatusPaymentRequired, "AI_CREDITS_EXHAUSTED"},
		{generate.ErrNotConfigured, http.StatusInternalServerError, "AI_NOT_CONFIGURED"},
	}
	for _, tt := range tests {
		e := newEnv(t, fetcher{}, drafter{err: tt.err})
		w, body := e.do(t, http.MethodPost, "/api/v1/forms/answers", e.token(t), gin.H{
			"questions": []gin.H{{"id": "q1", "question": "1 + 1?", "type": "text"}},
		})
		assert.Equal(t, tt.status, w.Code)
		assert.Equal(t, tt.code, errorCode(body))
	}
}

func TestHistoryEndpoints(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	token := e.token(t)

	w, body := e.do(t, http.MethodGet, "/api/v1/history?page=2&per_page=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["total_pages"])

	id := uuid.NewString()
	w, body = e.do(t, http.MethodGet, "/api/v1/history/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, body["data"].(map[string]any)["history"].(map[string]any)["id"])

	w, body = e.do(t, http.MethodDelete, "/api/v1/history/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(body))

	w, body = e.do(t, http.MethodDelete, "/api/v1/history/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestAdminUsers(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	adminToken := e.register(t, "admin@example.com")
	e.register(t, "siswa@example.com")

	w, body := e.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PERMISSION_DENIED", errorCode(body))

	// Promotion takes effect without a new token.
	e.users.list[0].Role = model.RoleAdmin

	w, body = e.do(t, http.MethodGet, "/api/v1/admin/users?role=user", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	list := body["data"].(map[string]any)["users"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "siswa@example.com", list[0].(map[string]any)["email"])
	assert.Equal(t, float64(1), body["pagination"].(map[string]any)["total_items"])

	w, body = e.do(t, http.MethodGet, "/api/v1/admin/users?role=owner", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	w, body = e.do(t, http.MethodPatch, "/api/v1/admin/users/2/role", adminToken, gin.H{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "admin", body["data"].(map[string]any)["user"].(map[string]any)["role"])

	w, body = e.do(t, http.MethodPatch, "/api/v1/admin/users/2/role", adminToken, gin.H{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))

	w, body = e.do(t, http.MethodPatch, "/api/v1/admin/users/1/role", adminToken, gin.H{"role": "user"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SELF_ACTION_FORBIDDEN", errorCode(body))

	w, body = e.do(t, http.MethodPatch, "/api/v1/admin/users/x/role", adminToken, gin.H{"role": "user"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(body))

	w, body = e.do(t, http.MethodDelete, "/api/v1/admin/users/1", adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SELF_ACTION_FORBIDDEN", errorCode(body))

	w, body = e.do(t, http.MethodDelete, "/api/v1/admin/users/99", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	w, _ = e.do(t, http.MethodDelete, "/api/v1/admin/users/2", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, e.users.list, 1)

	// Demotion also takes effect on the next request.
	e.users.list[0].Role = model.RoleUser
	w, body = e.do(t, http.MethodGet, "/api/v1/admin/users", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "PERMISSION_DENIED", errorCode(body))
}

func TestAdminUsersRequireAuth(t *testing.T) {
	e := newEnv(t, fetcher{}, drafter{})
	w, body := e.do(t, http.MethodGet, "/api/v1/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "TOKEN_REQUIRED", errorCode(body))
}
