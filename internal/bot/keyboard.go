package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/voxscribe/internal/repository"
)

const (
	historyFetchLimit = 50
	historyPageSize   = 5
)

// docxKeyboard offers the document download button under a result.
func docxKeyboard(transcriptionID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Скачать DOCX", fmt.Sprintf("docx:%d", transcriptionID)),
		),
	)
}

// historyKeyboard builds one page of history entries plus navigation.
func historyKeyboard(items []repository.Transcription, page int) tgbotapi.InlineKeyboardMarkup {
	start := page * historyPageSize
	end := start + historyPageSize
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range items[start:end] {
		label := fmt.Sprintf("📝 %s | %s", t.CreatedAt.Format("02.01 15:04"), truncate(t.FileName, 30))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("history:%d", t.ID)),
		))
	}

	var nav []tgbotapi.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", fmt.Sprintf("hpage:%d", page-1)))
	}
	if end < len(items) {
		nav = append(nav, tgbotapi.NewInlineKeyboardButtonData("Вперёд ➡️", fmt.Sprintf("hpage:%d", page+1)))
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
