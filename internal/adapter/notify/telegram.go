package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vpnstack/backup/internal/config"
	"github.com/vpnstack/backup/internal/domain"
)

// Telegram reports backup outcomes to the operators' chat. It never ships
// the snapshot itself, only a status message.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegram(cfg config.TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", cfg.ChatID, err)
	}

	return &Telegram{bot: bot, chatID: chatID}, nil
}

func (t *Telegram) NotifySuccess(ctx context.Context, res *domain.Result) error {
	message := fmt.Sprintf(
		"✅ Backup Created\n\n"+
			"📁 File: %s\n"+
			"📊 Size: %.2f MB\n"+
			"🕐 Time: %s",
		res.Snapshot.Filename,
		float64(res.Snapshot.Size)/(1024*1024),
		res.Snapshot.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if res.Replicated {
		message += "\n🛰 Replica: " + res.RemotePath
	}

	return t.send(message)
}

func (t *Telegram) NotifyFailure(ctx context.Context, database string, err error) error {
	message := fmt.Sprintf(
		"❌ Backup Failed\n\n"+
			"🗄 Database: %s\n"+
			"⚠️ Error: %v",
		database, err,
	)

	return t.send(message)
}

func (t *Telegram) send(message string) error {
	msg := tgbotapi.NewMessage(t.chatID, message)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}
