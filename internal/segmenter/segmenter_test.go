package segmenter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/avolkov/voxscribe/internal/logger"
)

// fakeExecutor simulates ffprobe and the ffmpeg segment muxer. For the
// segment command it creates one output file per full or partial chunk
// of the probed duration, like the real tool would.
type fakeExecutor struct {
	duration    float64
	failProbe   bool
	noOutputs   bool
	segmentTime int
	calls       []string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name)
	if name == "ffprobe" {
		if f.failProbe {
			return "", errors.New("ffprobe exploded")
		}
		return fmt.Sprintf(`{"format":{"duration":"%f"}}`, f.duration), nil
	}
	return "", nil
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name)
	if name != "ffmpeg" {
		return "", nil
	}

	var pattern string
	for i, a := range args {
		if a == "-segment_time" && i+1 < len(args) {
			f.segmentTime, _ = strconv.Atoi(args[i+1])
		}
	}
	pattern = args[len(args)-1]

	if f.noOutputs {
		return "", nil
	}

	parts := int(math.Ceil(f.duration / float64(f.segmentTime)))
	for i := 0; i < parts; i++ {
		fileName := strings.Replace(pattern, "%03d", fmt.Sprintf("%03d", i), 1)
		if err := os.WriteFile(filepath.Join(dir, fileName), []byte("ogg"), 0644); err != nil {
			return "", err
		}
	}
	return "", nil
}

func newTestSegmenter(exec *fakeExecutor, size int64, maxDuration int, maxSize int64) *implSegmenter {
	s := New(exec, logger.Nop(), maxDuration, maxSize).(*implSegmenter)
	s.fileSize = func(string) (int64, error) { return size, nil }
	return s
}

func TestSegmentWithinCeilingsReturnsInputUnchanged(t *testing.T) {
	exec := &fakeExecutor{duration: 120}
	s := newTestSegmenter(exec, 5<<20, 14400, 1<<30)

	parts, err := s.Segment(context.Background(), "/tmp/in/short.ogg", t.TempDir())
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if len(parts) != 1 || parts[0] != "/tmp/in/short.ogg" {
		t.Errorf("parts = %v, want sole input path", parts)
	}
	for _, call := range exec.calls {
		if call == "ffmpeg" {
			t.Error("ffmpeg was invoked for a file within ceilings")
		}
	}
}

func TestSegmentDurationBranch(t *testing.T) {
	// 2h audio against a 1h ceiling, size well under the limit:
	// segment time stays at the duration ceiling, two parts come out.
	exec := &fakeExecutor{duration: 7200}
	s := newTestSegmenter(exec, 500<<20, 3600, 1<<30)

	parts, err := s.Segment(context.Background(), "/tmp/in/long.ogg", t.TempDir())
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if exec.segmentTime != 3600 {
		t.Errorf("segment time = %d, want 3600", exec.segmentTime)
	}
	if len(parts) != 2 {
		t.Errorf("parts = %d, want 2", len(parts))
	}
}

func TestSegmentSizeBranch(t *testing.T) {
	// 30min audio at 2GB against a 1GB ceiling: ratio 0.5 with the 10%
	// margin gives 1800*0.5*0.9 = 810s per part, three parts.
	exec := &fakeExecutor{duration: 1800}
	s := newTestSegmenter(exec, 2<<30, 14400, 1<<30)

	parts, err := s.Segment(context.Background(), "/tmp/in/fat.ogg", t.TempDir())
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if exec.segmentTime != 810 {
		t.Errorf("segment time = %d, want 810", exec.segmentTime)
	}
	if len(parts) != 3 {
		t.Errorf("parts = %d, want 3", len(parts))
	}
}

func TestSegmentDurationFloor(t *testing.T) {
	s := newTestSegmenter(&fakeExecutor{}, 0, 14400, 1<<30)

	// Absurd size ratio would give a sub-60s segment; the floor holds.
	got := s.segmentDuration(3600, 1<<40)
	if got != 60 {
		t.Errorf("segmentDuration = %d, want 60", got)
	}
}

func TestSegmentOrderingIsStable(t *testing.T) {
	exec := &fakeExecutor{duration: 7200}
	s := newTestSegmenter(exec, 500<<20, 1800, 1<<30)

	parts, err := s.Segment(context.Background(), "/tmp/in/long.ogg", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(parts); i++ {
		if parts[i-1] >= parts[i] {
			t.Errorf("parts out of order: %q >= %q", parts[i-1], parts[i])
		}
	}
}

func TestSegmentNoPartsError(t *testing.T) {
	exec := &fakeExecutor{duration: 7200, noOutputs: true}
	s := newTestSegmenter(exec, 500<<20, 3600, 1<<30)

	_, err := s.Segment(context.Background(), "/tmp/in/long.ogg", t.TempDir())
	if !errors.Is(err, ErrNoParts) {
		t.Errorf("Segment() error = %v, want ErrNoParts", err)
	}
}

func TestProbeFailure(t *testing.T) {
	exec := &fakeExecutor{failProbe: true}
	s := newTestSegmenter(exec, 0, 3600, 1<<30)

	_, err := s.Probe(context.Background(), "/tmp/in/broken.ogg")
	if !errors.Is(err, ErrProbe) {
		t.Errorf("Probe() error = %v, want ErrProbe", err)
	}
}

func TestProbeMalformedOutput(t *testing.T) {
	exec := &fakeExecutor{} // duration 0 serializes but fails validation
	s := newTestSegmenter(exec, 0, 3600, 1<<30)

	_, err := s.Probe(context.Background(), "/tmp/in/empty.ogg")
	if !errors.Is(err, ErrProbe) {
		t.Errorf("Probe() error = %v, want ErrProbe", err)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		path      string
		video     bool
		audio     bool
		supported bool
	}{
		{"talk.mp4", true, false, true},
		{"TALK.MOV", true, false, true},
		{"note.ogg", false, true, true},
		{"note.mp3", false, true, true},
		{"readme.txt", false, false, false},
	}

	for _, tt := range tests {
		if got := IsVideo(tt.path); got != tt.video {
			t.Errorf("IsVideo(%q) = %v", tt.path, got)
		}
		if got := IsAudio(tt.path); got != tt.audio {
			t.Errorf("IsAudio(%q) = %v", tt.path, got)
		}
		if got := IsSupported(tt.path); got != tt.supported {
			t.Errorf("IsSupported(%q) = %v", tt.path, got)
		}
	}
}
