package gpt

// splitText cuts the text into ordered chunks of at most maxInputChars
// runes. The cut point prefers the last sentence boundary in the back
// half of the window, then the last whitespace, then a hard cut. Each
// subsequent chunk starts overlap runes before the previous cut so
// context carries across the boundary.
func (c *implClient) splitText(text string) []string {
	runes := []rune(text)
	var chunks []string

	start := 0
	for start < len(runes) {
		end := start + c.maxInputChars
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		lo := start + c.maxInputChars/2
		cut := lastSentenceEnd(runes, lo, end)
		if cut == -1 {
			cut = lastSpace(runes, lo, end)
		}
		if cut == -1 {
			cut = end
		}

		hi := cut + 1
		if hi > len(runes) {
			hi = len(runes)
		}
		chunks = append(chunks, string(runes[start:hi]))
		start = cut + 1 - c.overlap
	}

	return chunks
}

// lastSentenceEnd returns the index of the period of the last
// period-space pair starting within [lo, end), or -1.
func lastSentenceEnd(runes []rune, lo, end int) int {
	for i := end - 2; i >= lo; i-- {
		if runes[i] == '.' && runes[i+1] == ' ' {
			return i
		}
	}
	return -1
}

// lastSpace returns the index of the last space in [lo, end), or -1.
func lastSpace(runes []rune, lo, end int) int {
	for i := end - 1; i >= lo; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
