package segmenter

import (
	"context"
	"fmt"
)

// ExtractAudio pulls the audio track out of a video file as OGG/OPUS
// 48kHz mono, the format the recognition service expects.
func (s *implSegmenter) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	s.logger.Info(ctx, "Extracting audio from %s", inputPath)

	_, err := s.executor.Execute(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-vn", // no video
		"-acodec", "libopus",
		"-ar", "48000",
		"-ac", "1", // mono
		"-b:a", "64k",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}

	s.logger.Info(ctx, "Audio extracted to %s", outputPath)
	return nil
}

// ConvertToOgg re-encodes any audio format to OGG/OPUS 48kHz mono.
func (s *implSegmenter) ConvertToOgg(ctx context.Context, inputPath, outputPath string) error {
	s.logger.Info(ctx, "Converting %s to OGG OPUS", inputPath)

	_, err := s.executor.Execute(ctx, "ffmpeg",
		"-y",
		"-i", inputPath,
		"-acodec", "libopus",
		"-ar", "48000",
		"-ac", "1",
		"-b:a", "64k",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("ffmpeg convert: %w", err)
	}

	s.logger.Info(ctx, "Converted to %s", outputPath)
	return nil
}
