// Package notify posts finalized rankings and school-year notices to Telegram chats.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/school-discipline/internal/observability"
	"github.com/Spok95/school-discipline/internal/service"
	"github.com/Spok95/school-discipline/internal/week"
)

// Sender is the part of *tgbotapi.BotAPI we use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "429") || strings.Contains(s, "502") ||
		strings.Contains(s, "503") || strings.Contains(s, "timeout")
}

type Telegram struct {
	bot   Sender
	chats []int64
	log   *zap.Logger
}

// NewTelegram connects with token. An empty token or no chats gives a nil announcer,
// which is safe to call.
func NewTelegram(token string, chats []int64, log *zap.Logger) (*Telegram, error) {
	if token == "" || len(chats) == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return NewWithSender(bot, chats, log), nil
}

func NewWithSender(bot Sender, chats []int64, log *zap.Logger) *Telegram {
	if log == nil {
		log = zap.NewNop()
	}
	return &Telegram{bot: bot, chats: chats, log: log}
}

// Finalized posts one message per locked board.
func (t *Telegram) Finalized(ctx context.Context, boards []*service.Board) {
	if t == nil {
		return
	}
	for _, b := range boards {
		if ctx.Err() != nil {
			return
		}
		t.broadcast(FormatBoard(b))
	}
}

// SchoolYearStarted шлёт уведомление о начале учебного года, рейтинги считаются заново.
func (t *Telegram) SchoolYearStarted(_ context.Context, startYear int) {
	if t == nil {
		return
	}
	t.broadcast(fmt.Sprintf(
		"🎓 School year %s has started.\nWeekly rankings start again from week 1; last year's finalized weeks stay available for export.",
		week.SchoolYearLabel(startYear),
	))
}

func (t *Telegram) broadcast(text string) {
	for _, chatID := range t.chats {
		if _, err := t.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			t.log.Warn("telegram send", zap.Int64("chat", chatID), zap.Error(err))
			if isSystemErr(err) {
				observability.CaptureErr(err)
			}
		}
	}
}

// FormatBoard renders the top of a locked board as plain text.
func FormatBoard(b *service.Board) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 Grade %d, week %s finalized\n", b.Grade, b.WeekKey)
	for i, s := range b.Standings {
		if i == 5 {
			fmt.Fprintf(&sb, "… and %d more\n", len(b.Standings)-i)
			break
		}
		fmt.Fprintf(&sb, "%d. %s: %+d (merit %d, demerit %d)\n", s.Rank, s.ClassName, s.Total, s.Merit, s.Demerit)
	}
	fmt.Fprintf(&sb, "Total: %+d", b.Totals.Total)
	return sb.String()
}
