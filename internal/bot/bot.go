package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Run consumes long-poll updates until ctx is cancelled. Each update is
// handled in its own goroutine so a slow file download never blocks
// other chats.
func (b *implBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info(ctx, "Bot @%s is listening for updates", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *implBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error(ctx, "Panic while handling update %d: %v", update.UpdateID, r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *implBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if att := pickAttachment(msg); att != nil {
		b.handleMedia(ctx, msg, att)
		return
	}
	if msg.Document != nil {
		// A document reached us but carried no supported extension.
		b.reply(ctx, msg.Chat.ID, msgUnsupportedFormat)
		return
	}
	if msg.Text != "" {
		b.handleText(ctx, msg)
	}
}

func (b *implBot) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn(ctx, "Failed to send message: %v", err)
	}
}

func (b *implBot) reply(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	b.send(ctx, msg)
}
