package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want time.Duration
	}{
		{"telegram retry after", &tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 5}}, 5 * time.Second},
		{"retry after capped", &tgbotapi.Error{Code: 429, ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 120}}, maxPollDelay},
		{"text retry after", errors.New("Too Many Requests: retry after 4"), 4 * time.Second},
		{"text without hint", errors.New("Too Many Requests"), 3 * time.Second},
		{"network timeout", timeoutErr{}, 2 * time.Second},
		{"other", errors.New("bad gateway"), minPollDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retryDelay(tt.err))
		})
	}
}

type scriptedUpdater struct {
	cancel  context.CancelFunc
	calls   int
	offsets []int
}

func (u *scriptedUpdater) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	u.calls++
	u.offsets = append(u.offsets, cfg.Offset)
	switch u.calls {
	case 1:
		return []tgbotapi.Update{
			{UpdateID: 10, Message: message(ownerID, "/start").Message},
			{UpdateID: 11, Message: message(ownerID, "/help").Message},
		}, nil
	default:
		u.cancel()
		return nil, nil
	}
}

func TestRun_AdvancesOffsetAndStops(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, &fakeForms{}, newMemSessions(), nil, Options{OwnerID: ownerID}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	up := &scriptedUpdater{cancel: cancel}

	done := make(chan struct{})
	go func() {
		b.Run(ctx, up)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	assert.Equal(t, []int{0, 12}, up.offsets)
	assert.Len(t, sender.texts, 2)
}
