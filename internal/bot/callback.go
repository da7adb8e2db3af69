package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/voxscribe/internal/repository"
)

const previewRunes = 3500

func (b *implBot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Warn(ctx, "Failed to answer callback: %v", err)
	}
	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	if !b.requireAuthorized(ctx, chatID) {
		return
	}

	action, arg, ok := parseCallback(query.Data)
	if !ok {
		return
	}

	switch action {
	case "history":
		b.showHistoryEntry(ctx, chatID, arg)
	case "hpage":
		b.turnHistoryPage(ctx, chatID, query.Message.MessageID, int(arg))
	case "docx":
		b.sendDocuments(ctx, chatID, arg)
	}
}

// parseCallback splits "action:id" callback data.
func parseCallback(data string) (action string, arg int64, ok bool) {
	action, rest, found := strings.Cut(data, ":")
	if !found {
		return "", 0, false
	}
	arg, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return "", 0, false
	}
	return action, arg, true
}

// loadOwned fetches a transcription and verifies it belongs to the
// requesting chat, so callback data cannot reach other users' records.
func (b *implBot) loadOwned(ctx context.Context, chatID, transcriptionID int64) *repository.Transcription {
	t, err := b.repo.GetTranscription(ctx, transcriptionID)
	if err != nil {
		b.logger.Error(ctx, "Failed to load transcription %d: %v", transcriptionID, err)
		return nil
	}
	if t == nil {
		b.reply(ctx, chatID, msgNotFound)
		return nil
	}
	user, err := b.repo.GetOrCreateUser(ctx, chatID)
	if err != nil {
		b.logger.Error(ctx, "Failed to load user for chat %d: %v", chatID, err)
		return nil
	}
	if t.UserID != user.ID {
		b.reply(ctx, chatID, msgNotFound)
		return nil
	}
	return t
}

func (b *implBot) showHistoryEntry(ctx context.Context, chatID, transcriptionID int64) {
	t := b.loadOwned(ctx, chatID, transcriptionID)
	if t == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📝 *%s*\n\n", t.FileName)
	if t.TranscriptionText != "" {
		fmt.Fprintf(&sb, "*Транскрибация:*\n%s\n\n", truncate(t.TranscriptionText, previewRunes))
	}
	if t.AnalysisText != "" {
		fmt.Fprintf(&sb, "*Анализ:*\n%s", truncate(t.AnalysisText, previewRunes))
	}

	m := tgbotapi.NewMessage(chatID, sb.String())
	m.ParseMode = tgbotapi.ModeMarkdown
	m.ReplyMarkup = docxKeyboard(t.ID)
	b.send(ctx, m)
}

func (b *implBot) turnHistoryPage(ctx context.Context, chatID int64, messageID int, page int) {
	items, err := b.repo.ListTranscriptions(ctx, chatID, historyFetchLimit, 0)
	if err != nil {
		b.logger.Error(ctx, "Failed to list history for chat %d: %v", chatID, err)
		return
	}
	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, historyKeyboard(items, page))
	b.send(ctx, edit)
}

// sendDocuments renders the transcript and analysis as .docx files and
// delivers both, removing the temporary files afterwards.
func (b *implBot) sendDocuments(ctx context.Context, chatID, transcriptionID int64) {
	t := b.loadOwned(ctx, chatID, transcriptionID)
	if t == nil {
		return
	}

	dir, err := os.MkdirTemp(b.processing.TmpDir, "docx-")
	if err != nil {
		b.logger.Error(ctx, "Failed to create document dir: %v", err)
		b.reply(ctx, chatID, msgDocumentFailed)
		return
	}
	defer os.RemoveAll(dir)

	transcriptPath := filepath.Join(dir, fmt.Sprintf("transcript_%d.docx", t.ID))
	if err := b.renderer.RenderTranscript("Транскрибация: "+t.FileName, t.TranscriptionText, transcriptPath); err != nil {
		b.logger.Error(ctx, "Failed to render transcript %d: %v", t.ID, err)
		b.reply(ctx, chatID, msgDocumentFailed)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(transcriptPath))
	doc.Caption = "📄 Транскрибация"
	b.send(ctx, doc)

	if t.AnalysisText != "" {
		analysisPath := filepath.Join(dir, fmt.Sprintf("analysis_%d.docx", t.ID))
		if err := b.renderer.RenderAnalysis("Анализ: "+t.FileName, t.AnalysisText, analysisPath); err != nil {
			b.logger.Error(ctx, "Failed to render analysis %d: %v", t.ID, err)
			b.reply(ctx, chatID, msgDocumentFailed)
			return
		}
		analysisDoc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(analysisPath))
		analysisDoc.Caption = "📊 Анализ"
		b.send(ctx, analysisDoc)
	}
}
