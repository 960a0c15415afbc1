package telegram

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Updater is the long-polling half of *tgbotapi.BotAPI.
type Updater interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

const (
	pollTimeoutSeconds = 30
	minPollDelay       = time.Second
	maxPollDelay       = 15 * time.Second
)

var retryAfterRe = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelay picks the pause after a failed GetUpdates call.
func retryDelay(err error) time.Duration {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return clampDelay(time.Duration(tgErr.RetryAfter) * time.Second)
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := retryAfterRe.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return clampDelay(time.Duration(n) * time.Second)
			}
		}
		return 3 * time.Second
	}

	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return minPollDelay
}

func clampDelay(d time.Duration) time.Duration {
	return min(max(d, minPollDelay), maxPollDelay)
}

// Run long-polls api until ctx is cancelled, then waits for in-flight
// updates.
func (b *Bot) Run(ctx context.Context, api Updater) {
	b.log.Info().Msg("Polling started")
	defer func() {
		b.Wait()
		b.log.Info().Msg("Polling stopped")
	}()

	offset := 0
	for {
		if ctx.Err() != nil {
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = pollTimeoutSeconds

		updates, err := api.GetUpdates(u)
		if err != nil {
			d := retryDelay(err)
			b.log.Warn().Err(err).Dur("retry_in", d).Msg("Polling failed")
			if !sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			b.Dispatch(ctx, upd)
		}
	}
}

// sleep waits for d and reports false when ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
