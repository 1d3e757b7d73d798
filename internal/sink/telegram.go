package sink

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-zhipin-crawler/internal/crawl"
)

// Telegram pushes each job as one chat message.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) Emit(ctx context.Context, jobs []crawl.Job) error {
	for _, job := range jobs {
		msg := tgbotapi.NewMessage(t.chatID, formatJob(job))
		msg.ParseMode = "HTML"
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("send job to telegram: %w", err)
		}
		// a flat second between messages keeps the bot API from
		// answering 429
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return nil
}

func (t *Telegram) Close(ctx context.Context) error { return nil }

func formatJob(job crawl.Job) string {
	text := fmt.Sprintf("🔥 <b>%s</b>\n🏢 %s", job.Title, job.Company)
	if job.Salary != "" {
		text += fmt.Sprintf("\n💰 %s", job.Salary)
	}
	if job.Location != "" {
		text += fmt.Sprintf("\n📍 %s", job.Location)
	}
	if job.Experience != "" || job.Degree != "" {
		text += fmt.Sprintf("\n🎓 %s %s", job.Experience, job.Degree)
	}
	if job.URL != "" {
		text += fmt.Sprintf("\n🔗 <a href=\"%s\">查看职位</a>", job.URL)
	}
	return text
}
