package report

// Renderer produces downloadable .docx documents from a stored
// transcription. It is constructed once at startup and shared; the
// methods are safe for concurrent use.
type Renderer interface {
	// RenderAnalysis writes the markdown analysis as a styled document.
	RenderAnalysis(title, markdown, outputPath string) error
	// RenderTranscript writes the plain transcript broken into
	// readable paragraphs.
	RenderTranscript(title, transcript, outputPath string) error
}
