package segmenter

import "context"

// Segmenter prepares local media for remote recognition: it normalizes
// audio, probes duration, and splits files that exceed the configured
// duration or size ceilings into uniform bounded parts.
type Segmenter interface {
	Probe(ctx context.Context, path string) (float64, error)
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
	ConvertToOgg(ctx context.Context, inputPath, outputPath string) error
	Segment(ctx context.Context, path, outDir string) ([]string, error)
}
