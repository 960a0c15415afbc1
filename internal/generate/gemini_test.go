package generate

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/stemsi/formfill-backend/internal/model"
)

func fakeGemini(fn completeFunc) *Gemini {
	g := NewGemini("key", "gemini-test", zerolog.Nop())
	g.complete = fn
	g.backoff = 0
	return g
}

func TestDraft_NotConfigured(t *testing.T) {
	g := NewGemini("", "gemini-test", zerolog.Nop())
	_, err := g.Draft(context.Background(), sample, model.UserContext{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestDraft_NoQuestions(t *testing.T) {
	g := fakeGemini(func(context.Context, string, string) (string, error) {
		t.Fatal("model must not be called")
		return "", nil
	})
	drafts, err := g.Draft(context.Background(), nil, model.UserContext{})
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestDraft_PassesContextAndParses(t *testing.T) {
	g := fakeGemini(func(_ context.Context, system, prompt string) (string, error) {
		assert.Contains(t, system, "Nama: Siti")
		assert.Contains(t, prompt, "[q1]")
		return `[{"questionId":"q1","answer":"Soekarno"}]`, nil
	})

	drafts, err := g.Draft(context.Background(), sample, model.UserContext{FullName: "Siti"})
	require.NoError(t, err)
	assert.Equal(t, []model.Draft{{QuestionID: "q1", Answer: "Soekarno"}}, drafts)
}

func TestDraft_UnreadableReplyIsNotAnError(t *testing.T) {
	g := fakeGemini(func(context.Context, string, string) (string, error) {
		return "tidak tahu", nil
	})
	drafts, err := g.Draft(context.Background(), sample, model.UserContext{})
	require.NoError(t, err)
	assert.Equal(t, Placeholders(sample), drafts)
}

func TestDraft_RetriesTransientFailures(t *testing.T) {
	calls := 0
	g := fakeGemini(func(context.Context, string, string) (string, error) {
		calls++
		if calls < 3 {
			return "", &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return `[]`, nil
	})
	drafts, err := g.Draft(context.Background(), sample, model.UserContext{})
	require.NoError(t, err)
	assert.Empty(t, drafts)
	assert.Equal(t, 3, calls)
}

func TestDraft_LimitsAreSurfacedWithoutRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"http 429", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "Resource has been exhausted"}, ErrRateLimited},
		{"http 402", &googleapi.Error{Code: http.StatusPaymentRequired}, ErrQuotaExhausted},
		{"daily quota", &googleapi.Error{Code: http.StatusTooManyRequests, Message: "Quota exceeded for GenerateRequestsPerDay"}, ErrQuotaExhausted},
		{"grpc throttle", status.Error(codes.ResourceExhausted, "slow down"), ErrRateLimited},
		{"grpc billing", status.Error(codes.ResourceExhausted, "billing account has no credit"), ErrQuotaExhausted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			g := fakeGemini(func(context.Context, string, string) (string, error) {
				calls++
				return "", tt.err
			})
			_, err := g.Draft(context.Background(), sample, model.UserContext{})
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsProviderLimit(err))
			assert.Equal(t, 1, calls)

			var gErr *googleapi.Error
			if errors.As(tt.err, &gErr) {
				assert.ErrorAs(t, err, &gErr)
			}
		})
	}
}

func TestDraft_PermanentFailureStops(t *testing.T) {
	calls := 0
	g := fakeGemini(func(context.Context, string, string) (string, error) {
		calls++
		return "", &googleapi.Error{Code: http.StatusBadRequest, Message: "bad model"}
	})
	_, err := g.Draft(context.Background(), sample, model.UserContext{})
	require.Error(t, err)
	assert.False(t, IsProviderLimit(err))
	assert.Equal(t, 1, calls)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("é", 150)
	got := truncate(s, 100)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 100, utf8.RuneCountInString(got))
	assert.Equal(t, "abc", truncate("abc", 100))
}
