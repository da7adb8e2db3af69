package dispatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avolkov/voxscribe/internal/repository"
	"github.com/avolkov/voxscribe/internal/segmenter"
)

// costPerSecond is the recognition price in rubles for deferred mode.
const costPerSecond = 0.002542

// resultTruncateRunes bounds the transcript and analysis previews sent
// back through the chat, which caps message length.
const resultTruncateRunes = 3500

const failureMessage = "❌ Не удалось обработать файл. Попробуйте позже."

// runJob executes the pipeline for one job and owns top-level error
// handling: any stage failure is logged with the job identity and
// reported to the requester exactly once, with no retry and no requeue.
func (d *implDispatcher) runJob(ctx context.Context, job Job) {
	start := time.Now()
	d.logger.Info(ctx, "Job %s: processing %s", job.ID, job.FileName)

	if err := d.process(ctx, job, start); err != nil {
		d.logger.Error(ctx, "Job %s failed: %v", job.ID, err)
		d.notifier.Notify(ctx, job.ChatID, failureMessage)
		return
	}

	d.logger.Info(ctx, "Job %s completed in %.1fs", job.ID, time.Since(start).Seconds())
}

func (d *implDispatcher) process(ctx context.Context, job Job, start time.Time) error {
	if err := os.MkdirAll(d.tmpDir, 0755); err != nil {
		return fmt.Errorf("create tmp dir: %w", err)
	}

	localFiles := []string{job.FilePath}
	var remoteKeys []string
	partsDir := filepath.Join(d.tmpDir, job.ID+"_parts")
	defer func() {
		d.cleanup(ctx, job, localFiles, remoteKeys, partsDir)
	}()

	// Normalize to OGG/OPUS so every downstream stage sees one format.
	var oggPath string
	fileType := "audio"
	if segmenter.IsVideo(job.FilePath) {
		fileType = "video"
		d.notifier.Notify(ctx, job.ChatID, "🔊 Извлекаю аудиодорожку...")
		oggPath = filepath.Join(d.tmpDir, job.ID+"_audio.ogg")
		if err := d.segmenter.ExtractAudio(ctx, job.FilePath, oggPath); err != nil {
			return err
		}
	} else {
		oggPath = filepath.Join(d.tmpDir, job.ID+"_converted.ogg")
		if err := d.segmenter.ConvertToOgg(ctx, job.FilePath, oggPath); err != nil {
			return err
		}
	}
	localFiles = append(localFiles, oggPath)

	duration, err := d.segmenter.Probe(ctx, oggPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(partsDir, 0755); err != nil {
		return fmt.Errorf("create parts dir: %w", err)
	}
	parts, err := d.segmenter.Segment(ctx, oggPath, partsDir)
	if err != nil {
		return err
	}
	if len(parts) > 1 {
		d.notifier.Notify(ctx, job.ChatID, fmt.Sprintf("✂️ Файл разделён на %d частей", len(parts)))
		localFiles = append(localFiles, parts...)
	}

	d.notifier.Notify(ctx, job.ChatID, "☁️ Загружаю в облако...")
	for _, part := range parts {
		key := fmt.Sprintf("audio/%s/%s", job.ID, filepath.Base(part))
		if _, err := d.storage.Upload(ctx, part, key); err != nil {
			return err
		}
		remoteKeys = append(remoteKeys, key)
	}

	// Recognize every part strictly in order; transcripts are
	// concatenated in the same order further down.
	texts := make([]string, 0, len(remoteKeys))
	for i, key := range remoteKeys {
		if len(remoteKeys) > 1 {
			d.notifier.Notify(ctx, job.ChatID,
				fmt.Sprintf("🎙 Распознаю речь... (часть %d из %d)", i+1, len(remoteKeys)))
		} else {
			d.notifier.Notify(ctx, job.ChatID, "🎙 Распознаю речь...")
		}

		stopWatch := d.watchSlow(ctx, job.ChatID, duration, start)
		text, err := d.recognizer.Recognize(ctx, d.storage.StorageURI(key))
		stopWatch()
		if err != nil {
			return err
		}
		texts = append(texts, text)
	}
	transcript := strings.Join(texts, " ")

	d.notifier.Notify(ctx, job.ChatID, "🤖 Анализирую текст...")
	analysis, err := d.analyzer.Analyze(ctx, transcript)
	if err != nil {
		return err
	}

	user, err := d.repo.GetOrCreateUser(ctx, job.ChatID)
	if err != nil {
		return err
	}
	transcriptionID, err := d.repo.SaveTranscription(ctx, repository.Transcription{
		UserID:            user.ID,
		FileName:          job.FileName,
		FileType:          fileType,
		DurationSeconds:   duration,
		TranscriptionText: transcript,
		AnalysisText:      analysis,
		CostRubles:        duration * costPerSecond,
	})
	if err != nil {
		return err
	}

	d.notifier.NotifyResult(ctx, job.ChatID, resultMessage(transcript, analysis), transcriptionID)
	d.notifier.Notify(ctx, job.ChatID, "✅ Готово!")
	return nil
}

// watchSlow starts the per-segment side task that emits a single
// "taking longer than expected" notification if recognition is still
// running past the expected processing time. The returned stop function
// must be called the moment recognition returns, success or failure,
// so a stray late notification cannot fire.
func (d *implDispatcher) watchSlow(ctx context.Context, chatID int64, durationSeconds float64, start time.Time) func() {
	watchCtx, cancel := context.WithCancel(ctx)

	go func() {
		select {
		case <-time.After(d.expectedWait(durationSeconds)):
			elapsed := time.Since(start)
			d.notifier.Notify(ctx, chatID, fmt.Sprintf(
				"⚠️ Обработка занимает больше времени, чем ожидалось (%.0f мин). Пожалуйста, подождите...",
				elapsed.Minutes()))
		case <-watchCtx.Done():
		}
	}()

	return cancel
}

// cleanup releases every artifact the job produced. It always runs,
// tolerates already-missing files, and never masks a pipeline error.
func (d *implDispatcher) cleanup(ctx context.Context, job Job, localFiles, remoteKeys []string, partsDir string) {
	// Cleanup proceeds even when the pipeline context was cancelled.
	ctx = context.WithoutCancel(ctx)

	for _, key := range remoteKeys {
		if err := d.storage.Delete(ctx, key); err != nil {
			d.logger.Warn(ctx, "Job %s: failed to delete remote %s: %v", job.ID, key, err)
		}
	}

	for _, path := range localFiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			d.logger.Warn(ctx, "Job %s: failed to remove %s: %v", job.ID, path, err)
		}
	}

	if err := os.RemoveAll(partsDir); err != nil {
		d.logger.Warn(ctx, "Job %s: failed to remove parts dir: %v", job.ID, err)
	}
}

func resultMessage(transcript, analysis string) string {
	var b strings.Builder
	if transcript != "" {
		b.WriteString("📝 *Транскрибация:*\n")
		b.WriteString(truncateRunes(transcript, resultTruncateRunes))
		b.WriteString("\n\n")
	}
	if analysis != "" {
		b.WriteString("📊 *Анализ:*\n")
		b.WriteString(truncateRunes(analysis, resultTruncateRunes))
	}
	if b.Len() == 0 {
		return "⚠️ Не удалось распознать речь в файле."
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
