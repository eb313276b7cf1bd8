package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/school-discipline/internal/ranking"
	"github.com/Spok95/school-discipline/internal/service"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, f.err
}

func board() *service.Board {
	st := []ranking.Standing{
		{ClassName: "10A2", Merit: 12, Demerit: 2, Total: 10, Rank: 1},
		{ClassName: "10A1", Merit: 3, Demerit: 5, Total: -2, Rank: 2},
	}
	return &service.Board{WeekKey: "2025-W06", Grade: 10, Locked: true, Standings: st, Totals: ranking.Sum(st)}
}

func TestFormatBoard(t *testing.T) {
	got := FormatBoard(board())
	for _, want := range []string{"Grade 10, week 2025-W06", "1. 10A2: +10", "2. 10A1: -2", "Total: +8"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFinalized_SendsToEveryChat(t *testing.T) {
	bot := &fakeBot{}
	tg := NewWithSender(bot, []int64{101, 202}, nil)
	tg.Finalized(context.Background(), []*service.Board{board(), board()})
	if len(bot.sent) != 4 || bot.sent[1].ChatID != 202 {
		t.Fatalf("sent = %d", len(bot.sent))
	}
}

func TestSendErrorsDoNotStopBroadcast(t *testing.T) {
	bot := &fakeBot{err: errors.New("Bad Request: chat not found")}
	NewWithSender(bot, []int64{1, 2, 3}, nil).SchoolYearStarted(context.Background(), 2025)
	if len(bot.sent) != 3 || !strings.Contains(bot.sent[0].Text, "2025–2026") {
		t.Fatalf("sent = %+v", bot.sent)
	}
}

func TestNilAnnouncerIsSafe(t *testing.T) {
	tg, err := NewTelegram("", []int64{1}, nil)
	if err != nil || tg != nil {
		t.Fatalf("tg = %v, err = %v", tg, err)
	}
	tg.Finalized(context.Background(), []*service.Board{board()})
	tg.SchoolYearStarted(context.Background(), 2025)
}

func TestIsSystemErr(t *testing.T) {
	if !isSystemErr(errors.New("Too Many Requests: 429")) || isSystemErr(errors.New("Bad Request")) || isSystemErr(nil) {
		t.Fatal("classification")
	}
}
