package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/clearpathhq/supportbot/internal/config"
)

func TestSplit_EmptyAndShort(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "Empty", text: "", want: nil},
		{name: "Whitespace_Only", text: "  \n\t  ", want: nil},
		{name: "Short_Single_Chunk", text: "Reset your password from the account page.", want: []string{"Reset your password from the account page."}},
		{name: "Short_Trimmed", text: "  Billing runs monthly.  ", want: []string{"Billing runs monthly."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) got %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplit_SizeAndOverlapInvariants(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("The quick brown fox jumps over the lazy dog near the riverbank. ", 30))

	chunks := Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks for %d chars, got %d", len(text), len(chunks))
	}

	for i, c := range chunks {
		if len(c) > config.ChunkSize {
			t.Errorf("chunk %d is %d chars, limit %d", i, len(c), config.ChunkSize)
		}
	}

	for i := 1; i < len(chunks); i++ {
		seed := overlapTail(chunks[i-1], config.ChunkOverlap)
		if !strings.HasPrefix(chunks[i], seed) {
			t.Errorf("chunk %d does not start with the tail of chunk %d:\nseed %q\nhead %q",
				i, i-1, seed, chunks[i][:min(len(chunks[i]), len(seed))])
		}
	}
}

func TestSplit_Reconstruction(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Projects sync every five minutes! Webhooks fire on change? Exports are nightly. ", 25))

	chunks := Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		seed := overlapTail(chunks[i-1], config.ChunkOverlap)
		rebuilt.WriteString(chunks[i][len(seed):])
	}
	if rebuilt.String() != text {
		t.Errorf("de-overlapped chunks do not rebuild the input:\ngot  %d chars\nwant %d chars", rebuilt.Len(), len(text))
	}
}

func TestSplit_NoTerminatorText(t *testing.T) {
	// one long "sentence" with no terminal punctuation gets cut at
	// whitespace, never mid-word
	text := strings.TrimSpace(strings.Repeat("alpha beta gamma delta epsilon ", 40))

	chunks := Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > config.ChunkSize {
			t.Errorf("chunk %d is %d chars, limit %d", i, len(c), config.ChunkSize)
		}
		if i < len(chunks)-1 && !isSpace(c[len(c)-1]) {
			t.Errorf("chunk %d does not end at a word boundary: ...%q", i, c[len(c)-20:])
		}
	}
}

func TestSplit_UnbrokenTokenOverflows(t *testing.T) {
	token := strings.Repeat("x", config.ChunkSize+150)

	chunks := Split(token)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 overflowing chunk, got %d", len(chunks))
	}
	if chunks[0] != token {
		t.Errorf("token was altered: got %d chars, want %d", len(chunks[0]), len(token))
	}
}

func TestSplitWithLimits_OverlapGuard(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("one two three four five. ", 20))

	// overlap >= size would never make progress, it falls back to size/4
	chunks := SplitWithLimits(text, 100, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		seed := overlapTail(chunks[i-1], 25)
		if !strings.HasPrefix(chunks[i], seed) {
			t.Errorf("chunk %d missing fallback overlap seed %q", i, seed)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Invoices are generated monthly. Seats are billed upfront! Refunds take five days? ", 20))

	first := Split(text)
	second := Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs over the same text diverged")
	}
}

func TestSplit_MultiByteOverlapSeam(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("Vælg præferencer før eksport. Ændringer gemmes løbende. ", 25))

	chunks := Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d contains a torn rune", i)
		}
	}
}
