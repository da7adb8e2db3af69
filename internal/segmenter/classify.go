package segmenter

import (
	"path/filepath"
	"strings"
)

var audioExtensions = map[string]bool{
	".ogg":  true,
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// IsVideo reports whether the file is a video based on extension.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsAudio reports whether the file is an audio file based on extension.
func IsAudio(path string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsSupported reports whether the file format is accepted for processing.
func IsSupported(path string) bool {
	return IsAudio(path) || IsVideo(path)
}
