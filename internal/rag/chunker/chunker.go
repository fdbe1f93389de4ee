package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/clearpathhq/supportbot/internal/config"
)

// Split segments page text into overlapping chunks using the configured
// size and overlap. Chunking is pure string work and runs only at ingest
// time, never on the query path.
func Split(text string) []string {
	return SplitWithLimits(text, config.ChunkSize, config.ChunkOverlap)
}

// SplitWithLimits packs whole sentences greedily into chunks of at most
// maxSize characters. Each chunk after the first starts with the last
// overlap characters of the one before it, so no sentence boundary
// context is lost at a chunk edge.
//
// Sentences keep their trailing whitespace, which means the emitted
// chunks are exact substrings of the input (plus the repeated overlap
// seams). A sentence that alone exceeds maxSize is cut at whitespace,
// never mid-word; a single unbroken token longer than maxSize is kept
// whole and the chunk is allowed to overflow.
func SplitWithLimits(text string, maxSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxSize <= 0 {
		maxSize = config.ChunkSize
	}
	if overlap < 0 || overlap >= maxSize {
		overlap = maxSize / 4
	}
	if len(text) <= maxSize {
		return []string{text}
	}

	var chunks []string
	current := ""
	for _, sentence := range splitSentences(text) {
		if current != "" && len(current)+len(sentence) > maxSize {
			chunks = append(chunks, current)
			current = overlapTail(current, overlap)
		}
		if len(current)+len(sentence) > maxSize {
			closed, rest := packOversized(current, sentence, maxSize, overlap)
			chunks = append(chunks, closed...)
			current = rest
			continue
		}
		current += sentence
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentences cuts text after runs of terminal punctuation followed by
// whitespace. The whitespace stays attached to the preceding sentence, so
// concatenating the returned slice reproduces the input exactly. Text
// without a terminator comes back as a single sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	i := 0
	for i < len(text) {
		if !isTerminal(text[i]) {
			i++
			continue
		}
		j := i + 1
		for j < len(text) && isTerminal(text[j]) {
			j++
		}
		if j >= len(text) || !isSpace(text[j]) {
			i = j
			continue
		}
		for j < len(text) && isSpace(text[j]) {
			j++
		}
		sentences = append(sentences, text[start:j])
		start = j
		i = j
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// packOversized windows a sentence that cannot fit into the current chunk
// budget. buf is the running chunk (at most the overlap seed), closed
// pieces chain with the same overlap rule, and the final remainder comes
// back as the new running chunk.
func packOversized(buf, sentence string, maxSize, overlap int) ([]string, string) {
	var pieces []string
	rest := sentence
	for len(buf)+len(rest) > maxSize {
		limit := maxSize - len(buf)
		cut := -1
		for i := limit - 1; i >= 0; i-- {
			if isSpace(rest[i]) {
				cut = i + 1
				break
			}
		}
		if cut <= 0 {
			//token longer than the budget, extend to the next whitespace
			for i := limit; i < len(rest); i++ {
				if isSpace(rest[i]) {
					cut = i + 1
					break
				}
			}
		}
		if cut <= 0 {
			break
		}
		piece := buf + rest[:cut]
		pieces = append(pieces, piece)
		buf = overlapTail(piece, overlap)
		rest = rest[cut:]
	}
	return pieces, buf + rest
}

// overlapTail returns the last n bytes of s aligned to a rune boundary,
// so a multi-byte character is never torn at the seam.
func overlapTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}

func isTerminal(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
