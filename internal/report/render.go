package report

import (
	"context"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	fontName = "Times New Roman"
	fontSize = 13

	// transcriptParagraphRunes is the soft ceiling for one transcript
	// paragraph; breaks land on sentence ends where possible.
	transcriptParagraphRunes = 800
)

var (
	reHeading = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBullet  = regexp.MustCompile(`^[\-\*]\s+(.+)$`)
	reNumberd = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// RenderAnalysis converts markdown produced by the analysis stage into
// a styled docx file.
func (r *implRenderer) RenderAnalysis(title, markdown, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)

	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || trimmed == "---" {
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			p := doc.AddParagraph("")
			addStyledRun(p, m[2], true, headingSize(len(m[1])))
			continue
		}

		if m := reBullet.FindStringSubmatch(trimmed); m != nil {
			p := doc.AddParagraph("")
			addRichText(p, "• "+m[1])
			continue
		}

		if reNumberd.MatchString(trimmed) {
			p := doc.AddParagraph("")
			addRichText(p, trimmed)
			continue
		}

		p := doc.AddParagraph("")
		addRichText(p, trimmed)
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return err
	}
	r.logger.Debug(context.Background(), "Rendered analysis document %s", outputPath)
	return nil
}

// RenderTranscript writes the raw transcript as plain paragraphs, broken
// on sentence ends so the document stays readable.
func (r *implRenderer) RenderTranscript(title, transcript, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyledRun(doc.AddParagraph(""), title, true, 16)
	doc.AddParagraph("")

	for _, para := range splitParagraphs(transcript, transcriptParagraphRunes) {
		p := doc.AddParagraph("")
		p.AddText(para).Font(fontName).Size(fontSize).Color("000000")
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return err
	}
	r.logger.Debug(context.Background(), "Rendered transcript document %s", outputPath)
	return nil
}

// splitParagraphs cuts text into chunks of at most limit runes,
// preferring a break right after a sentence end, then after a space.
func splitParagraphs(text string, limit int) []string {
	runes := []rune(strings.TrimSpace(text))
	var paras []string

	for len(runes) > 0 {
		if len(runes) <= limit {
			paras = append(paras, strings.TrimSpace(string(runes)))
			break
		}

		cut := -1
		for i := limit - 1; i > 0; i-- {
			if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
				cut = i + 1
				break
			}
		}
		if cut == -1 {
			for i := limit - 1; i > 0; i-- {
				if runes[i] == ' ' {
					cut = i
					break
				}
			}
		}
		if cut <= 0 {
			cut = limit
		}

		paras = append(paras, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
		for len(runes) > 0 && runes[0] == ' ' {
			runes = runes[1:]
		}
	}

	return paras
}

func headingSize(level int) uint64 {
	switch level {
	case 1:
		return 16
	case 2:
		return 15
	case 3:
		return 14
	default:
		return fontSize
	}
}

func addStyledRun(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(cleanMarkdownInline(text)).Font(fontName).Size(size).Color("000000")
	if bold {
		run.Bold(true)
	}
}

func addRichText(p *docx.Paragraph, text string) {
	parts := reBold.Split(text, -1)
	matches := reBold.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(cleanMarkdownInline(part)).Font(fontName).Size(fontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(cleanMarkdownInline(matches[i][1])).Font(fontName).Size(fontSize).Color("000000").Bold(true)
		}
	}
}

func cleanMarkdownInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
