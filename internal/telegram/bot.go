// Package telegram answers forms for chat users through a Telegram bot.
package telegram

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/stemsi/formfill-backend/internal/model"
	"github.com/stemsi/formfill-backend/internal/scrape"
	"github.com/stemsi/formfill-backend/internal/validator"
)

// maxWrong caps /wrong.
const maxWrong = 50

// answerTimeout bounds one scrape-and-answer round.
const answerTimeout = 3 * time.Minute

// Sender is the part of *tgbotapi.BotAPI the bot writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Forms is the form pipeline the bot drives.
type Forms interface {
	ScrapeForm(ctx context.Context, url string) (*model.ParsedForm, error)
	ParseAny(text string) *model.ParsedForm
	Answer(ctx context.Context, userID int, req model.AnswerFormRequest) (*model.AnswerFormResponse, error)
}

// Limiter throttles chats.
type Limiter interface {
	Allow(key string) bool
}

// Options configures a Bot.
type Options struct {
	OwnerID      int64
	AllowedUsers []int64
	// HistoryUserID is the account answers are stored under; 0 disables history.
	HistoryUserID int
}

// Bot routes Telegram updates to the form pipeline.
type Bot struct {
	sender        Sender
	forms         Forms
	sessions      Sessions
	limiter       Limiter
	allowed       map[int64]bool
	historyUserID int
	log           zerolog.Logger

	wg  sync.WaitGroup
	sem chan struct{}
}

// New creates a Bot. limiter may be nil.
func New(sender Sender, forms Forms, sessions Sessions, limiter Limiter, opts Options, log zerolog.Logger) *Bot {
	allowed := make(map[int64]bool, len(opts.AllowedUsers)+1)
	if opts.OwnerID != 0 {
		allowed[opts.OwnerID] = true
	}
	for _, id := range opts.AllowedUsers {
		allowed[id] = true
	}

	return &Bot{
		sender:        sender,
		forms:         forms,
		sessions:      sessions,
		limiter:       limiter,
		allowed:       allowed,
		historyUserID: opts.HistoryUserID,
		log:           log.With().Str("component", "telegram_bot").Logger(),
		sem:           make(chan struct{}, 4),
	}
}

// Authorized reports whether userID may use the bot. With no owner and an
// empty allow-list everyone may.
func (b *Bot) Authorized(userID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	return b.allowed[userID]
}

// Dispatch handles upd in the background, at most four at a time. Handlers
// outlive ctx cancellation so replies in flight are still sent.
func (b *Bot) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	ctx = context.WithoutCancel(ctx)
	b.sem <- struct{}{}
	b.wg.Add(1)
	go func() {
		defer func() {
			<-b.sem
			b.wg.Done()
		}()
		b.HandleUpdate(ctx, upd)
	}()
}

// Wait blocks until every dispatched update is handled.
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleUpdate processes a single update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || msg.From == nil {
		return
	}
	cid := msg.Chat.ID

	if !b.Authorized(msg.From.ID) {
		b.log.Warn().Int64("user_id", msg.From.ID).Msg("Unauthorized chat user")
		b.send(cid, "🚫 Kamu tidak punya akses ke bot ini.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}
	if validator.IsFormURL(text) && !strings.Contains(text, "\n") && strings.Contains(text, "/") {
		b.answerURL(ctx, msg, text)
		return
	}
	b.answerText(ctx, msg, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.send(cid, helpText)

	case "form":
		url := args
		if url == "" {
			last, err := b.sessions.LastForm(ctx, cid)
			if err != nil {
				b.log.Error().Err(err).Int64("chat_id", cid).Msg("Failed to read last form")
			}
			if last == "" {
				b.send(cid, "Gunakan: /form <link>")
				return
			}
			url = last
		}
		if !validator.IsFormURL(url) {
			b.send(cid, "Link tidak valid. Contoh: /form https://forms.gle/abc123")
			return
		}
		b.answerURL(ctx, msg, url)

	case "wrong":
		if args == "" {
			n, err := b.sessions.WrongCount(ctx, cid)
			if err != nil {
				b.log.Error().Err(err).Int64("chat_id", cid).Msg("Failed to read wrong count")
			}
			b.send(cid, "Jawaban salah saat ini: "+strconv.Itoa(n)+"\nGunakan: /wrong <n>")
			return
		}
		n, ok := parseWrongCount(args)
		if !ok {
			b.send(cid, "Angka tidak valid. Gunakan 0 sampai "+strconv.Itoa(maxWrong)+".")
			return
		}
		if err := b.sessions.SetWrongCount(ctx, cid, n); err != nil {
			b.log.Error().Err(err).Int64("chat_id", cid).Msg("Failed to store wrong count")
			b.send(cid, errorText(err))
			return
		}
		b.send(cid, "✅ "+strconv.Itoa(n)+" jawaban akan sengaja dibuat salah.")

	case "reset":
		if err := b.sessions.Reset(ctx, cid); err != nil {
			b.log.Error().Err(err).Int64("chat_id", cid).Msg("Failed to reset session")
			b.send(cid, errorText(err))
			return
		}
		b.send(cid, "✅ Pengaturan direset.")

	default:
		b.send(cid, "Perintah tidak dikenal. Ketik /help.")
	}
}

// parseWrongCount accepts integers in [0, maxWrong].
func parseWrongCount(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > maxWrong {
		return 0, false
	}
	return n, true
}

func (b *Bot) answerURL(ctx context.Context, msg *tgbotapi.Message, url string) {
	cid := msg.Chat.ID
	if !b.allow(cid) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, answerTimeout)
	defer cancel()

	b.typing(cid)
	form, err := b.forms.ScrapeForm(ctx, url)
	if err != nil {
		b.log.Warn().Err(err).Str("url", url).Msg("Scrape failed")
		b.send(cid, errorText(err))
		return
	}
	if len(form.Questions) == 0 {
		b.send(cid, "Tidak ada pertanyaan yang terdeteksi di form ini.")
		return
	}

	normalized := scrape.NormalizeURL(url)
	if err := b.sessions.SetLastForm(ctx, cid, normalized); err != nil {
		b.log.Warn().Err(err).Int64("chat_id", cid).Msg("Failed to remember form")
	}
	b.answer(ctx, msg, form, normalized)
}

func (b *Bot) answerText(ctx context.Context, msg *tgbotapi.Message, text string) {
	cid := msg.Chat.ID
	form := b.forms.ParseAny(text)
	if len(form.Questions) == 0 {
		b.send(cid, "Tidak ada soal yang terdeteksi. Kirim soal bernomor atau link form.\nKetik /help untuk bantuan.")
		return
	}
	if !b.allow(cid) {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, answerTimeout)
	defer cancel()
	b.answer(ctx, msg, form, "")
}

func (b *Bot) answer(ctx context.Context, msg *tgbotapi.Message, form *model.ParsedForm, url string) {
	cid := msg.Chat.ID

	wrong, err := b.sessions.WrongCount(ctx, cid)
	if err != nil {
		b.log.Warn().Err(err).Int64("chat_id", cid).Msg("Failed to read wrong count")
	}

	b.typing(cid)
	res, err := b.forms.Answer(ctx, b.historyUserID, model.AnswerFormRequest{
		Questions:        form.Questions,
		WrongAnswerCount: wrong,
		UserContext:      model.UserContext{FullName: displayName(msg.From)},
		FormURL:          url,
		FormTitle:        form.Title,
	})
	if err != nil {
		b.log.Warn().Err(err).Int64("chat_id", cid).Msg("Answer failed")
		b.send(cid, errorText(err))
		return
	}

	b.log.Info().
		Int64("chat_id", cid).
		Int("questions", len(form.Questions)).
		Int("missed", len(res.Missed)).
		Msg("Form answered")

	for _, chunk := range splitMessage(formatAnswers(form.Title, form.Questions, res), maxMessageRunes) {
		b.send(cid, chunk)
	}
}

func (b *Bot) allow(cid int64) bool {
	if b.limiter == nil || b.limiter.Allow("tg:"+strconv.FormatInt(cid, 10)) {
		return true
	}
	b.send(cid, "⏳ Terlalu banyak permintaan. Tunggu sebentar.")
	return false
}

func (b *Bot) typing(cid int64) {
	if _, err := b.sender.Request(tgbotapi.NewChatAction(cid, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug().Err(err).Int64("chat_id", cid).Msg("Chat action failed")
	}
}

func (b *Bot) send(cid int64, text string) {
	m := tgbotapi.NewMessage(cid, text)
	m.DisableWebPagePreview = true
	if _, err := b.sender.Send(m); err != nil {
		b.log.Error().Err(err).Int64("chat_id", cid).Msg("Send failed")
	}
}
