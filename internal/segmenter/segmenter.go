package segmenter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ErrProbe is returned when the duration of a media file cannot be
// determined (malformed media or ffprobe failure).
var ErrProbe = errors.New("probe media")

// ErrNoParts is returned when the split step produced zero output files.
// This signals a tooling failure distinct from plain I/O errors.
var ErrNoParts = errors.New("split produced no output parts")

// minSegmentSeconds is the floor applied to the computed segment duration
// to avoid degenerate micro-segments under aggressive size scaling.
const minSegmentSeconds = 60

// Probe returns the duration of an audio/video file in seconds.
func (s *implSegmenter) Probe(ctx context.Context, path string) (float64, error) {
	out, err := s.executor.Execute(ctx, "ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProbe, err)
	}

	var parsed struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return 0, fmt.Errorf("%w: parse ffprobe output: %v", ErrProbe, err)
	}

	duration, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil || duration <= 0 {
		return 0, fmt.Errorf("%w: no duration in ffprobe output", ErrProbe)
	}
	return duration, nil
}

// Segment splits the file into parts bounded by the configured duration
// and size ceilings. If the file is already within both ceilings it is
// returned unchanged as the sole part, with no transformation or copy.
// Output parts are uniform OGG/OPUS mono so recognition sees consistent
// input across every part.
func (s *implSegmenter) Segment(ctx context.Context, path, outDir string) ([]string, error) {
	duration, err := s.Probe(ctx, path)
	if err != nil {
		return nil, err
	}

	size, err := s.fileSize(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if duration <= float64(s.maxDuration) && size <= s.maxSize {
		return []string{path}, nil
	}

	segmentDuration := s.segmentDuration(duration, size)

	s.logger.Info(ctx, "Splitting %s (%.1fs, %d bytes) into %d-second segments",
		path, duration, size, segmentDuration)

	baseName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	// Run in the output directory so the segment pattern stays relative.
	pattern := fmt.Sprintf("%s_part_%%03d.ogg", baseName)
	_, err = s.executor.ExecuteInDir(ctx, outDir, "ffmpeg",
		"-y",
		"-i", absPath,
		"-f", "segment",
		"-segment_time", strconv.Itoa(segmentDuration),
		"-acodec", "libopus",
		"-ar", "48000",
		"-ac", "1",
		"-b:a", "64k",
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg segment: %w", err)
	}

	parts, err := filepath.Glob(filepath.Join(outDir, baseName+"_part_*.ogg"))
	if err != nil {
		return nil, fmt.Errorf("collect parts: %w", err)
	}
	sort.Strings(parts)

	if len(parts) == 0 {
		return nil, ErrNoParts
	}

	s.logger.Info(ctx, "Split into %d parts", len(parts))
	return parts, nil
}

// segmentDuration computes the per-part duration in seconds. It starts
// from the duration ceiling and, when the file is over the size ceiling,
// scales down proportionally with a 10% margin against encoding variance.
func (s *implSegmenter) segmentDuration(duration float64, size int64) int {
	segmentDuration := s.maxDuration
	if size > s.maxSize {
		sizeRatio := float64(s.maxSize) / float64(size)
		sizeBased := int(duration * sizeRatio * 0.9)
		if sizeBased < segmentDuration {
			segmentDuration = sizeBased
		}
	}
	if segmentDuration < minSegmentSeconds {
		segmentDuration = minSegmentSeconds
	}
	return segmentDuration
}
