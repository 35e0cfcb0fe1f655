package indexer

import (
	"strings"
	"testing"
)

func TestTokenEstimate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "empty", input: "", want: 0},
		{name: "exact multiple", input: "abcd", want: 1},
		{name: "rounds up", input: "abcde", want: 2},
		{name: "counts runes not bytes", input: "ééé", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenEstimate(tt.input); got != tt.want {
				t.Errorf("TokenEstimate(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewHybridChunker_Defaults(t *testing.T) {
	chunker := NewHybridChunker(0, -1)
	if chunker.maxTokens != DefaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", chunker.maxTokens, DefaultMaxTokens)
	}
	if chunker.overlapTokens != DefaultOverlapTokens {
		t.Errorf("overlapTokens = %d, want %d", chunker.overlapTokens, DefaultOverlapTokens)
	}
}

func TestHybridChunker_Chunk(t *testing.T) {
	tests := []struct {
		name          string
		maxTokens     int
		overlapTokens int
		input         string
		wantContents  []string
	}{
		{
			name:          "empty input yields no chunks",
			maxTokens:     5,
			overlapTokens: 0,
			input:         "",
			wantContents:  nil,
		},
		{
			name:          "single short paragraph",
			maxTokens:     5,
			overlapTokens: 0,
			input:         "aaaa bbbb cccc",
			wantContents:  []string{"aaaa bbbb cccc"},
		},
		{
			name:          "paragraphs split when joint size exceeds budget",
			maxTokens:     5,
			overlapTokens: 0,
			input:         "aaaa bbbb cccc\n\ndddd eeee",
			wantContents:  []string{"aaaa bbbb cccc", "dddd eeee"},
		},
		{
			name:          "oversized paragraph falls back to sentences",
			maxTokens:     5,
			overlapTokens: 0,
			input:         "First sentence here. Second one follows. Third closes it.",
			wantContents:  []string{"First sentence here.", "Second one follows.", "Third closes it."},
		},
		{
			name:          "oversized single sentence emitted whole",
			maxTokens:     5,
			overlapTokens: 0,
			input:         strings.Repeat("a", 100),
			wantContents:  []string{strings.Repeat("a", 100)},
		},
		{
			name:          "trailing sentence buffer joins next paragraph",
			maxTokens:     10,
			overlapTokens: 0,
			input:         "Aaaa bbbb cccc dddd eeee ffff. Gggg hhhh iiii jjjj kkkk llll.\n\nmm nn.",
			wantContents:  []string{"Aaaa bbbb cccc dddd eeee ffff.", "Gggg hhhh iiii jjjj kkkk llll.\n\nmm nn."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunker := NewHybridChunker(tt.maxTokens, tt.overlapTokens)
			chunks := chunker.Chunk(tt.input)

			if len(chunks) != len(tt.wantContents) {
				t.Fatalf("Chunk() produced %d chunks, want %d: %#v", len(chunks), len(tt.wantContents), chunks)
			}
			for i, chunk := range chunks {
				if chunk.Content != tt.wantContents[i] {
					t.Errorf("chunk %d content = %q, want %q", i, chunk.Content, tt.wantContents[i])
				}
				if chunk.Index != i {
					t.Errorf("chunk %d index = %d, want %d", i, chunk.Index, i)
				}
				if chunk.Tokens != TokenEstimate(chunk.Content) {
					t.Errorf("chunk %d tokens = %d, want %d", i, chunk.Tokens, TokenEstimate(chunk.Content))
				}
			}
		})
	}
}

func TestHybridChunker_BudgetRespected(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 50; i++ {
		b.WriteString("Una frase corta con palabras normales. Otra frase igual de corta aqui.\n\n")
	}

	chunker := NewHybridChunker(50, 0)
	chunks := chunker.Chunk(b.String())
	if len(chunks) < 2 {
		t.Fatalf("Chunk() produced %d chunks, want several", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.Tokens > 50 {
			t.Errorf("chunk %d has %d tokens, budget is 50", i, chunk.Tokens)
		}
	}
}

func TestHybridChunker_BudgetExceptionIsSingleSentence(t *testing.T) {
	// A long run of words with no sentence terminator cannot be split further.
	monster := strings.TrimSpace(strings.Repeat("palabrota ", 40))

	var b strings.Builder
	for i := 0; i < 5; i++ {
		b.WriteString("Una frase corta con palabras normales. Otra frase igual de corta aqui.\n\n")
	}
	b.WriteString(monster)
	b.WriteString("\n\n")
	for i := 0; i < 5; i++ {
		b.WriteString("Una frase corta con palabras normales. Otra frase igual de corta aqui.\n\n")
	}

	chunks := NewHybridChunker(50, 0).Chunk(b.String())
	if len(chunks) < 3 {
		t.Fatalf("Chunk() produced %d chunks, want several", len(chunks))
	}

	overBudget := 0
	for i, chunk := range chunks {
		if chunk.Tokens <= 50 {
			continue
		}
		overBudget++
		// The only chunks allowed over the budget are single undividable
		// sentences, emitted whole.
		if chunk.Content != monster {
			t.Errorf("chunk %d over budget with splittable content %q", i, chunk.Content)
		}
	}
	if overBudget != 1 {
		t.Errorf("got %d over-budget chunks, want exactly the undividable sentence", overBudget)
	}
}

func TestHybridChunker_OverlapPrefix(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("Una frase corta con palabras normales que sirve para llenar el texto.\n\n")
	}

	maxTokens := 40
	overlapTokens := 2
	withOverlap := NewHybridChunker(maxTokens, overlapTokens).Chunk(b.String())
	base := NewHybridChunker(maxTokens, 0).Chunk(b.String())

	if len(withOverlap) != len(base) {
		t.Fatalf("overlap changed chunk count: %d vs %d", len(withOverlap), len(base))
	}
	if len(withOverlap) < 2 {
		t.Fatalf("Chunk() produced %d chunks, want several", len(withOverlap))
	}

	if withOverlap[0].Content != base[0].Content {
		t.Errorf("first chunk should carry no overlap: %q vs %q", withOverlap[0].Content, base[0].Content)
	}

	// Each later chunk starts with the trailing words of its predecessor as it
	// was before overlap was applied to it.
	wantTailWords := overlapTokens * 4
	for i := 1; i < len(withOverlap); i++ {
		prevWords := strings.Fields(base[i-1].Content)
		n := wantTailWords
		if n > len(prevWords) {
			n = len(prevWords)
		}
		tail := strings.Join(prevWords[len(prevWords)-n:], " ")
		if !strings.HasPrefix(withOverlap[i].Content, tail) {
			t.Errorf("chunk %d does not start with predecessor tail %q: %q", i, tail, withOverlap[i].Content)
		}
		if !strings.HasSuffix(withOverlap[i].Content, base[i].Content) {
			t.Errorf("chunk %d does not end with its own base content", i)
		}
	}
}
