package bot

import (
	"fmt"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/avolkov/voxscribe/internal/segmenter"
)

// attachment is the media payload of an incoming message, regardless of
// which Telegram field carried it.
type attachment struct {
	fileID   string
	fileName string
	size     int64
}

// pickAttachment extracts a processable media file from a message, or
// nil when the message carries none. Voice and video notes have no
// original file name, so one is synthesized from the message ID.
func pickAttachment(msg *tgbotapi.Message) *attachment {
	switch {
	case msg.Audio != nil:
		return &attachment{
			fileID:   msg.Audio.FileID,
			fileName: orDefault(msg.Audio.FileName, fmt.Sprintf("audio_%d.mp3", msg.MessageID)),
			size:     int64(msg.Audio.FileSize),
		}
	case msg.Voice != nil:
		return &attachment{
			fileID:   msg.Voice.FileID,
			fileName: fmt.Sprintf("voice_%d.ogg", msg.MessageID),
			size:     int64(msg.Voice.FileSize),
		}
	case msg.Video != nil:
		return &attachment{
			fileID:   msg.Video.FileID,
			fileName: orDefault(msg.Video.FileName, fmt.Sprintf("video_%d.mp4", msg.MessageID)),
			size:     int64(msg.Video.FileSize),
		}
	case msg.VideoNote != nil:
		return &attachment{
			fileID:   msg.VideoNote.FileID,
			fileName: fmt.Sprintf("video_note_%d.mp4", msg.MessageID),
			size:     int64(msg.VideoNote.FileSize),
		}
	case msg.Document != nil:
		name := orDefault(msg.Document.FileName, fmt.Sprintf("document_%d", msg.MessageID))
		if !segmenter.IsSupported(name) {
			return nil
		}
		return &attachment{
			fileID:   msg.Document.FileID,
			fileName: name,
			size:     int64(msg.Document.FileSize),
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// sanitizeFileName keeps only the base name and replaces characters
// that are unsafe in a local path.
func sanitizeFileName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}
