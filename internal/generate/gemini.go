// Package generate drafts answers for form questions with a generative model.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/stemsi/formfill-backend/internal/model"
)

const maxAttempts = 3

// completeFunc sends one system instruction and prompt and returns the reply text.
type completeFunc func(ctx context.Context, system, prompt string) (string, error)

// Gemini drafts answers with the Gemini API.
type Gemini struct {
	apiKey    string
	modelName string
	log       zerolog.Logger

	mu       sync.Mutex
	client   *genai.Client
	complete completeFunc
	backoff  time.Duration
}

// NewGemini creates a Gemini drafter. The API client is dialled lazily on
// first use; an empty apiKey makes Draft return ErrNotConfigured.
func NewGemini(apiKey, modelName string, log zerolog.Logger) *Gemini {
	g := &Gemini{
		apiKey:    strings.TrimSpace(apiKey),
		modelName: strings.TrimSpace(modelName),
		log:       log.With().Str("component", "generator").Logger(),
		backoff:   300 * time.Millisecond,
	}
	g.complete = g.generate
	return g
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

// Draft asks the model for one answer per question. An unreadable reply is
// not an error: each question then gets a placeholder draft.
func (g *Gemini) Draft(ctx context.Context, questions []model.Question, uc model.UserContext) ([]model.Draft, error) {
	if len(questions) == 0 {
		return []model.Draft{}, nil
	}

	system := SystemInstruction(uc)
	prompt := BuildPrompt(questions)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		reply, err := g.complete(ctx, system, prompt)
		if err == nil {
			drafts, ok := ParseDrafts(reply, questions)
			if !ok {
				g.log.Warn().Str("reply", truncate(reply, 200)).Msg("Unreadable model reply, using placeholders")
			}
			return drafts, nil
		}

		lastErr = classify(err)
		if !retryable(lastErr) || ctx.Err() != nil {
			break
		}
		g.log.Warn().Err(err).Int("attempt", attempt).Msg("Generate failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * g.backoff):
		}
	}
	return nil, fmt.Errorf("draft answers: %w", lastErr)
}

func (g *Gemini) generate(ctx context.Context, system, prompt string) (string, error) {
	client, err := g.dial(ctx)
	if err != nil {
		return "", err
	}

	m := client.GenerativeModel(g.modelName)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.2),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	txt := firstText(resp)
	if txt == "" {
		return "", ErrEmptyResponse
	}
	return txt, nil
}

func (g *Gemini) dial(ctx context.Context) (*genai.Client, error) {
	if g.apiKey == "" {
		return nil, ErrNotConfigured
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	g.client = cl
	return cl, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func ptrFloat32(v float32) *float32 { return &v }

// IsProviderLimit reports whether err is a rate or quota limit from the provider.
func IsProviderLimit(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrQuotaExhausted)
}
