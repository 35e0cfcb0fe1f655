package indexer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxTokens is the per-chunk token budget (targets 800-1200).
	DefaultMaxTokens = 1000
	// DefaultOverlapTokens is the overlap carried between consecutive chunks (targets 120-200).
	DefaultOverlapTokens = 160
)

var paragraphSplit = regexp.MustCompile(`\n\n+`)

// TokenEstimate approximates the token count of s as ceil(runes/4).
// This is a budgeting heuristic, not a real tokenizer; the ratio is fixed so
// chunking stays reproducible across runs.
func TokenEstimate(s string) int {
	return (utf8.RuneCountInString(s) + 3) / 4
}

// HybridChunker splits normalized text into token-budgeted chunks.
// It accumulates paragraphs greedily, drops to sentence-level accumulation for
// paragraphs that overflow the budget on their own, and finally prepends a
// word-tail overlap from each chunk's predecessor.
type HybridChunker struct {
	maxTokens     int
	overlapTokens int
}

// NewHybridChunker creates a chunker with the given budgets.
// Non-positive maxTokens and negative overlapTokens fall back to the defaults.
func NewHybridChunker(maxTokens, overlapTokens int) *HybridChunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	return &HybridChunker{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
	}
}

// Chunk produces the full ordered chunk sequence for text.
// Empty input yields an empty sequence.
func (c *HybridChunker) Chunk(text string) []Chunk {
	base := c.accumulate(text)
	if len(base) == 0 {
		return nil
	}

	chunks := make([]Chunk, len(base))
	for i, content := range base {
		final := content
		if c.overlapTokens > 0 && i > 0 {
			// The overlap tail comes from the predecessor as it was finalized
			// by accumulation, before any overlap was applied to it.
			final = strings.TrimSpace(overlapTail(base[i-1], c.overlapTokens) + " " + content)
		}
		chunks[i] = Chunk{
			Content: final,
			Index:   i,
			Tokens:  TokenEstimate(final),
		}
	}
	return chunks
}

// accumulate builds the pre-overlap chunk contents by greedy accumulation:
// paragraphs first, sentences for paragraphs that exceed the budget alone.
// A single sentence over the budget is emitted as-is, unsplit.
func (c *HybridChunker) accumulate(text string) []string {
	paragraphs := paragraphSplit.Split(text, -1)

	var out []string
	current := ""
	for _, p := range paragraphs {
		candidate := p
		if current != "" {
			candidate = current + "\n\n" + p
		}
		if TokenEstimate(candidate) <= c.maxTokens {
			current = candidate
			continue
		}

		if current != "" {
			out = append(out, current)
		}
		if TokenEstimate(p) <= c.maxTokens {
			current = p
			continue
		}

		// Paragraph alone blows the budget: accumulate its sentences instead.
		// The trailing sentence buffer stays open so following paragraphs can
		// still join it.
		sBuf := ""
		for _, s := range splitSentences(p) {
			sc := s
			if sBuf != "" {
				sc = sBuf + " " + s
			}
			if TokenEstimate(sc) <= c.maxTokens {
				sBuf = sc
				continue
			}
			if sBuf != "" {
				out = append(out, sBuf)
			}
			sBuf = s
		}
		current = sBuf
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

// overlapTail returns the trailing ceil(overlapTokens*4) whitespace-separated
// words of content. The width reuses the 4-chars-per-token heuristic but is
// measured in words, not tokens.
func overlapTail(content string, overlapTokens int) string {
	words := strings.Fields(content)
	n := overlapTokens * 4
	if n > len(words) {
		n = len(words)
	}
	return strings.Join(words[len(words)-n:], " ")
}

// splitSentences splits a paragraph on sentence-ending punctuation followed by
// whitespace. The terminator stays attached to its sentence.
func splitSentences(p string) []string {
	var sentences []string
	runes := []rune(p)
	start := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			sentences = append(sentences, string(runes[start:i+1]))
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}
