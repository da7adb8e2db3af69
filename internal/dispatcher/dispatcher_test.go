package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avolkov/voxscribe/internal/config"
	"github.com/avolkov/voxscribe/internal/logger"
	"github.com/avolkov/voxscribe/internal/repository"
	"github.com/avolkov/voxscribe/internal/speechkit"
)

// ---- collaborator fakes ----

type fakeSegmenter struct {
	duration float64
	parts    int
}

func (f *fakeSegmenter) Probe(ctx context.Context, path string) (float64, error) {
	return f.duration, nil
}

func (f *fakeSegmenter) ExtractAudio(ctx context.Context, in, out string) error {
	return os.WriteFile(out, []byte("ogg"), 0644)
}

func (f *fakeSegmenter) ConvertToOgg(ctx context.Context, in, out string) error {
	return os.WriteFile(out, []byte("ogg"), 0644)
}

func (f *fakeSegmenter) Segment(ctx context.Context, path, outDir string) ([]string, error) {
	if f.parts <= 1 {
		return []string{path}, nil
	}
	var parts []string
	for i := 0; i < f.parts; i++ {
		p := filepath.Join(outDir, fmt.Sprintf("part_%03d.ogg", i))
		if err := os.WriteFile(p, []byte("ogg"), 0644); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
}

func (f *fakeStorage) Upload(ctx context.Context, localPath, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, key)
	return "s3://bucket/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStorage) StorageURI(key string) string {
	return "https://storage.test/bucket/" + key
}

type fakeRecognizer struct {
	mu      sync.Mutex
	uris    []string
	text    string
	err     error
	delay   time.Duration
	blockOn bool // block until ctx is cancelled
	started chan struct{}
}

func (f *fakeRecognizer) Recognize(ctx context.Context, uri string) (string, error) {
	f.mu.Lock()
	f.uris = append(f.uris, uri)
	f.mu.Unlock()

	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.blockOn {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeRecognizer) Submit(ctx context.Context, uri string) (string, error) { return "op", nil }
func (f *fakeRecognizer) Poll(ctx context.Context, id string) (*speechkit.Operation, error) {
	return &speechkit.Operation{}, nil
}
func (f *fakeRecognizer) ExtractText(op *speechkit.Operation) string { return "" }

func (f *fakeRecognizer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uris)
}

type fakeAnalyzer struct {
	mu    sync.Mutex
	calls int
	input string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.input = text
	return "## Краткое резюме\nанализ", nil
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRepo struct {
	mu    sync.Mutex
	saved []repository.Transcription
}

func (f *fakeRepo) GetOrCreateUser(ctx context.Context, chatID int64) (repository.User, error) {
	return repository.User{ID: 7, ChatID: chatID, IsAuthorized: true}, nil
}

func (f *fakeRepo) AuthorizeUser(ctx context.Context, chatID int64, maxUsers int) (repository.AuthStatus, error) {
	return repository.AuthStatusAuthorized, nil
}

func (f *fakeRepo) DeauthorizeUser(ctx context.Context, chatID int64) (bool, error) {
	return true, nil
}

func (f *fakeRepo) IsAuthorized(ctx context.Context, chatID int64) (bool, error) { return true, nil }
func (f *fakeRepo) AuthorizedCount(ctx context.Context) (int, error)             { return 1, nil }

func (f *fakeRepo) SaveTranscription(ctx context.Context, t repository.Transcription) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, t)
	return int64(len(f.saved)), nil
}

func (f *fakeRepo) ListTranscriptions(ctx context.Context, chatID int64, limit, offset int) ([]repository.Transcription, error) {
	return nil, nil
}

func (f *fakeRepo) GetTranscription(ctx context.Context, id int64) (*repository.Transcription, error) {
	return nil, nil
}

func (f *fakeRepo) Close() error { return nil }

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, chatID int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakeNotifier) NotifyResult(ctx context.Context, chatID int64, text string, transcriptionID int64) {
	f.Notify(ctx, chatID, text)
}

func (f *fakeNotifier) countContaining(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.messages {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

// ---- helpers ----

type testEnv struct {
	dispatcher *implDispatcher
	segmenter  *fakeSegmenter
	storage    *fakeStorage
	recognizer *fakeRecognizer
	analyzer   *fakeAnalyzer
	repo       *fakeRepo
	notifier   *fakeNotifier
}

func newTestEnv(t *testing.T, workers int, shutdown string) *testEnv {
	t.Helper()
	env := &testEnv{
		segmenter:  &fakeSegmenter{duration: 120},
		storage:    &fakeStorage{},
		recognizer: &fakeRecognizer{text: "распознанный текст"},
		analyzer:   &fakeAnalyzer{},
		repo:       &fakeRepo{},
		notifier:   &fakeNotifier{},
	}
	cfg := config.ProcessingConfig{
		Workers:  workers,
		TmpDir:   t.TempDir(),
		Shutdown: shutdown,
	}
	env.dispatcher = New(cfg, env.segmenter, env.storage, env.recognizer,
		env.analyzer, env.repo, env.notifier, logger.Nop()).(*implDispatcher)
	return env
}

func (e *testEnv) newJobFile(t *testing.T, name string) Job {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("media"), 0644); err != nil {
		t.Fatal(err)
	}
	return NewJob(42, path, name)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// ---- tests ----

func TestEnqueueDepths(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")

	// No workers running: depths reflect pure insertion order.
	for want := 1; want <= 3; want++ {
		if got := env.dispatcher.Enqueue(env.newJobFile(t, fmt.Sprintf("f%d.ogg", want))); got != want {
			t.Errorf("Enqueue #%d depth = %d, want %d", want, got, want)
		}
	}
	if got := env.dispatcher.QueueDepth(); got != 3 {
		t.Errorf("QueueDepth() = %d, want 3", got)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")
	job := env.newJobFile(t, "meeting.ogg")

	env.dispatcher.Start(context.Background())
	defer env.dispatcher.Stop()

	env.dispatcher.Enqueue(job)
	waitFor(t, "job completion", func() bool { return env.repo.count() == 1 })

	if got := env.recognizer.calls(); got != 1 {
		t.Errorf("recognition calls = %d, want 1", got)
	}
	if env.analyzer.callCount() != 1 {
		t.Errorf("analysis calls = %d, want 1", env.analyzer.callCount())
	}

	saved := env.repo.saved[0]
	if saved.DurationSeconds != 120.0 {
		t.Errorf("duration = %f, want 120.0", saved.DurationSeconds)
	}
	if saved.TranscriptionText == "" {
		t.Error("transcript is empty")
	}
	if saved.FileType != "audio" {
		t.Errorf("file type = %q, want audio", saved.FileType)
	}
	if want := 120 * costPerSecond; saved.CostRubles != want {
		t.Errorf("cost = %f, want %f", saved.CostRubles, want)
	}

	waitFor(t, "cleanup", func() bool {
		env.storage.mu.Lock()
		defer env.storage.mu.Unlock()
		return len(env.storage.deletes) == len(env.storage.uploads)
	})
	if _, err := os.Stat(job.FilePath); !os.IsNotExist(err) {
		t.Error("input file was not removed during cleanup")
	}

	if got := env.notifier.countContaining("✅"); got != 1 {
		t.Errorf("done notifications = %d, want 1", got)
	}
}

func TestMultiPartTranscriptOrder(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")
	env.segmenter.parts = 3
	env.recognizer.text = "часть"

	env.dispatcher.Start(context.Background())
	defer env.dispatcher.Stop()

	env.dispatcher.Enqueue(env.newJobFile(t, "long.mp4"))
	waitFor(t, "job completion", func() bool { return env.repo.count() == 1 })

	if got := env.recognizer.calls(); got != 3 {
		t.Errorf("recognition calls = %d, want 3", got)
	}
	// Recognition URIs must follow segment order.
	for i, uri := range env.recognizer.uris {
		if !strings.Contains(uri, fmt.Sprintf("part_%03d.ogg", i)) {
			t.Errorf("recognition %d used %q, out of segment order", i, uri)
		}
	}

	saved := env.repo.saved[0]
	if saved.TranscriptionText != "часть часть часть" {
		t.Errorf("transcript = %q, want space-joined parts", saved.TranscriptionText)
	}
	if saved.FileType != "video" {
		t.Errorf("file type = %q, want video", saved.FileType)
	}
	if env.analyzer.callCount() != 1 {
		t.Errorf("analysis calls = %d, want exactly 1 per job", env.analyzer.callCount())
	}
}

func TestFailureNotifiesOnceAndCleansUp(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")
	env.recognizer.err = errors.New("remote recognition unavailable")
	job := env.newJobFile(t, "bad.ogg")

	env.dispatcher.Start(context.Background())
	defer env.dispatcher.Stop()

	env.dispatcher.Enqueue(job)
	waitFor(t, "failure notification", func() bool {
		return env.notifier.countContaining("❌") == 1
	})

	if env.repo.count() != 0 {
		t.Error("failed job must not be persisted")
	}

	// The generic failure message must not leak the internal error.
	env.notifier.mu.Lock()
	for _, m := range env.notifier.messages {
		if strings.Contains(m, "unavailable") {
			t.Errorf("notification leaks internal detail: %q", m)
		}
	}
	env.notifier.mu.Unlock()

	waitFor(t, "remote cleanup", func() bool {
		env.storage.mu.Lock()
		defer env.storage.mu.Unlock()
		return len(env.storage.deletes) == len(env.storage.uploads) && len(env.storage.uploads) > 0
	})
}

func TestJobsServedInEnqueueOrder(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")

	env.dispatcher.Start(context.Background())
	defer env.dispatcher.Stop()

	names := []string{"a.ogg", "b.ogg", "c.ogg"}
	for _, name := range names {
		env.dispatcher.Enqueue(env.newJobFile(t, name))
	}
	waitFor(t, "all jobs", func() bool { return env.repo.count() == 3 })

	for i, name := range names {
		if env.repo.saved[i].FileName != name {
			t.Errorf("job %d = %q, want %q (FIFO violated)", i, env.repo.saved[i].FileName, name)
		}
	}
}

func TestStopCancelAbandonsInFlight(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")
	env.recognizer.blockOn = true
	env.recognizer.started = make(chan struct{}, 1)

	env.dispatcher.Start(context.Background())
	env.dispatcher.Enqueue(env.newJobFile(t, "stuck.ogg"))

	<-env.recognizer.started

	done := make(chan struct{})
	go func() {
		env.dispatcher.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop() with cancel policy did not return while a job was in flight")
	}

	if env.repo.count() != 0 {
		t.Error("abandoned job was persisted")
	}
}

func TestStopDrainFinishesInFlight(t *testing.T) {
	env := newTestEnv(t, 2, "drain")
	env.recognizer.delay = 30 * time.Millisecond

	env.dispatcher.Start(context.Background())
	for i := 0; i < 3; i++ {
		env.dispatcher.Enqueue(env.newJobFile(t, fmt.Sprintf("d%d.ogg", i)))
	}

	env.dispatcher.Stop()

	if got := env.repo.count(); got != 3 {
		t.Errorf("completed jobs after drain = %d, want 3", got)
	}
}

func TestWatchSlowNotifiesAndStops(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")
	env.dispatcher.expectedWait = func(float64) time.Duration { return 5 * time.Millisecond }
	env.recognizer.delay = 80 * time.Millisecond

	env.dispatcher.Start(context.Background())
	defer env.dispatcher.Stop()

	env.dispatcher.Enqueue(env.newJobFile(t, "slow.ogg"))
	waitFor(t, "job completion", func() bool { return env.repo.count() == 1 })

	if got := env.notifier.countContaining("больше времени"); got != 1 {
		t.Errorf("slow notifications = %d, want 1", got)
	}
}

func TestWatchSlowCancelledOnFastCompletion(t *testing.T) {
	env := newTestEnv(t, 1, "cancel")
	env.dispatcher.expectedWait = func(float64) time.Duration { return 80 * time.Millisecond }

	env.dispatcher.Start(context.Background())
	defer env.dispatcher.Stop()

	env.dispatcher.Enqueue(env.newJobFile(t, "fast.ogg"))
	waitFor(t, "job completion", func() bool { return env.repo.count() == 1 })

	time.Sleep(150 * time.Millisecond)
	if got := env.notifier.countContaining("больше времени"); got != 0 {
		t.Errorf("slow notifications = %d, want 0 after fast completion", got)
	}
}

func TestExpectedProcessingTime(t *testing.T) {
	// 10 seconds per minute of audio plus a five-minute buffer.
	if got := expectedProcessingTime(120); got != 320*time.Second {
		t.Errorf("expectedProcessingTime(120) = %v, want 320s", got)
	}
	if got := expectedProcessingTime(0); got != 300*time.Second {
		t.Errorf("expectedProcessingTime(0) = %v, want 300s", got)
	}
}

func TestNewJobGeneratesUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		job := NewJob(1, "/tmp/x.ogg", "x.ogg")
		if len(job.ID) != 8 {
			t.Fatalf("job ID %q length = %d, want 8", job.ID, len(job.ID))
		}
		if seen[job.ID] {
			t.Fatalf("duplicate job ID %q", job.ID)
		}
		seen[job.ID] = true
	}
}
