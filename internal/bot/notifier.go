package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/voxscribe/internal/dispatcher"
	"github.com/avolkov/voxscribe/internal/logger"
)

// implNotifier delivers pipeline progress messages through the chat
// API. Sends are fire-and-forget: a delivery failure is logged and
// never propagated back into the pipeline.
type implNotifier struct {
	api    *tgbotapi.BotAPI
	logger logger.Logger
}

func NewNotifier(api *tgbotapi.BotAPI, log logger.Logger) dispatcher.Notifier {
	return &implNotifier{api: api, logger: log}
}

func (n *implNotifier) Notify(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn(ctx, "Failed to notify chat %d: %v", chatID, err)
	}
}

// NotifyResult sends the final report with a button to download the
// stored transcription as a document.
func (n *implNotifier) NotifyResult(ctx context.Context, chatID int64, text string, transcriptionID int64) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = docxKeyboard(transcriptionID)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn(ctx, "Failed to deliver result to chat %d: %v", chatID, err)
	}
}
