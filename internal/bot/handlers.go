package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/voxscribe/internal/dispatcher"
	"github.com/avolkov/voxscribe/internal/repository"
)

func (b *implBot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.handleStart(ctx, chatID)
	case "help":
		if b.requireAuthorized(ctx, chatID) {
			m := tgbotapi.NewMessage(chatID, msgHelp)
			m.ParseMode = tgbotapi.ModeMarkdown
			b.send(ctx, m)
		}
	case "history":
		if b.requireAuthorized(ctx, chatID) {
			b.handleHistory(ctx, chatID)
		}
	case "status":
		if b.requireAuthorized(ctx, chatID) {
			b.handleStatus(ctx, chatID)
		}
	case "cost":
		if b.requireAuthorized(ctx, chatID) {
			b.handleCost(ctx, chatID)
		}
	case "logout":
		if b.requireAuthorized(ctx, chatID) {
			b.handleLogout(ctx, chatID)
		}
	default:
		b.reply(ctx, chatID, msgUnknown)
	}
}

// requireAuthorized is the access gate every protected handler calls
// first. Unauthorized chats get the password prompt instead of the
// requested action.
func (b *implBot) requireAuthorized(ctx context.Context, chatID int64) bool {
	ok, err := b.repo.IsAuthorized(ctx, chatID)
	if err != nil {
		b.logger.Error(ctx, "Authorization check failed for chat %d: %v", chatID, err)
		return false
	}
	if !ok {
		b.reply(ctx, chatID, msgWelcome)
	}
	return ok
}

func (b *implBot) handleStart(ctx context.Context, chatID int64) {
	ok, err := b.repo.IsAuthorized(ctx, chatID)
	if err != nil {
		b.logger.Error(ctx, "Authorization check failed for chat %d: %v", chatID, err)
		return
	}
	if ok {
		b.reply(ctx, chatID, msgAlreadyAuthorized)
		return
	}
	b.reply(ctx, chatID, msgWelcome)
}

// handleText treats any plain text from an unauthorized chat as a
// password attempt; authorized chats get a usage hint.
func (b *implBot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	ok, err := b.repo.IsAuthorized(ctx, chatID)
	if err != nil {
		b.logger.Error(ctx, "Authorization check failed for chat %d: %v", chatID, err)
		return
	}
	if ok {
		b.reply(ctx, chatID, msgUnknown)
		return
	}

	if strings.TrimSpace(msg.Text) != b.cfg.AccessPassword {
		b.reply(ctx, chatID, msgWrongPassword)
		return
	}

	status, err := b.repo.AuthorizeUser(ctx, chatID, b.cfg.MaxUsers)
	if err != nil {
		b.logger.Error(ctx, "Failed to authorize chat %d: %v", chatID, err)
		return
	}
	switch status {
	case repository.AuthStatusLimitReached:
		b.reply(ctx, chatID, fmt.Sprintf(
			"😔 К сожалению, достигнут лимит пользователей (%d). Обратитесь к администратору.",
			b.cfg.MaxUsers))
	default:
		b.logger.Info(ctx, "Chat %d authorized", chatID)
		b.reply(ctx, chatID, msgAuthorized)
	}
}

func (b *implBot) handleLogout(ctx context.Context, chatID int64) {
	if _, err := b.repo.DeauthorizeUser(ctx, chatID); err != nil {
		b.logger.Error(ctx, "Failed to deauthorize chat %d: %v", chatID, err)
		return
	}
	b.reply(ctx, chatID, msgLoggedOut)
}

func (b *implBot) handleStatus(ctx context.Context, chatID int64) {
	depth := b.dispatcher.QueueDepth()
	users, err := b.repo.AuthorizedCount(ctx)
	if err != nil {
		b.logger.Error(ctx, "Failed to count users: %v", err)
		return
	}
	b.reply(ctx, chatID, fmt.Sprintf(
		"📊 Файлов в очереди: %d\n👥 Авторизованных пользователей: %d", depth, users))
}

func (b *implBot) handleHistory(ctx context.Context, chatID int64) {
	items, err := b.repo.ListTranscriptions(ctx, chatID, historyFetchLimit, 0)
	if err != nil {
		b.logger.Error(ctx, "Failed to list history for chat %d: %v", chatID, err)
		return
	}
	if len(items) == 0 {
		b.reply(ctx, chatID, msgNoHistory)
		return
	}

	m := tgbotapi.NewMessage(chatID, fmt.Sprintf("📋 *История транскрибаций* (%d шт.)", len(items)))
	m.ParseMode = tgbotapi.ModeMarkdown
	m.ReplyMarkup = historyKeyboard(items, 0)
	b.send(ctx, m)
}

func (b *implBot) handleCost(ctx context.Context, chatID int64) {
	items, err := b.repo.ListTranscriptions(ctx, chatID, 1, 0)
	if err != nil {
		b.logger.Error(ctx, "Failed to load last transcription for chat %d: %v", chatID, err)
		return
	}
	if len(items) == 0 {
		b.reply(ctx, chatID, "📭 У вас нет транскрибаций для расчёта.")
		return
	}

	t := items[0]
	b.reply(ctx, chatID, fmt.Sprintf(
		"💰 Стоимость последней транскрибации\n\nФайл: %s\nДлительность: %.1f мин\nРаспознавание: ~%.2f ₽",
		t.FileName, t.DurationSeconds/60, t.CostRubles))
}

func (b *implBot) handleMedia(ctx context.Context, msg *tgbotapi.Message, att *attachment) {
	chatID := msg.Chat.ID
	if !b.requireAuthorized(ctx, chatID) {
		return
	}

	if att.size > b.processing.MaxSizeBytes {
		b.reply(ctx, chatID, fmt.Sprintf(
			"❌ Файл слишком большой. Максимальный размер — %d МБ.",
			b.processing.MaxSizeBytes/(1<<20)))
		return
	}

	b.reply(ctx, chatID, msgFileAccepted)

	localPath, err := b.download(ctx, att, chatID, msg.MessageID)
	if err != nil {
		b.logger.Error(ctx, "Failed to download %s from chat %d: %v", att.fileName, chatID, err)
		b.reply(ctx, chatID, msgDownloadFailed)
		return
	}

	job := dispatcher.NewJob(chatID, localPath, att.fileName)
	position := b.dispatcher.Enqueue(job)
	if position > 1 {
		b.reply(ctx, chatID, fmt.Sprintf("📋 Ваш файл добавлен в очередь. Позиция: %d", position))
	}
}

// download fetches the Telegram file to the local processing directory.
func (b *implBot) download(ctx context.Context, att *attachment, chatID int64, messageID int) (string, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: att.fileID})
	if err != nil {
		return "", fmt.Errorf("get file: %w", err)
	}

	if err := os.MkdirAll(b.processing.TmpDir, 0755); err != nil {
		return "", fmt.Errorf("create tmp dir: %w", err)
	}
	localPath := filepath.Join(b.processing.TmpDir,
		fmt.Sprintf("%d_%d_%s", chatID, messageID, sanitizeFileName(att.fileName)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create local file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("save local file: %w", err)
	}
	return localPath, nil
}
