package voice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading", "## Onze visie\nTekst", "Onze visie\nTekst"},
		{"bold", "Dit is **belangrijk**!", "Dit is belangrijk!"},
		{"italic", "Een *klein* detail", "Een klein detail"},
		{"link", "Kijk op [onze site](https://example.com) nu", "Kijk op onze site nu"},
		{"fenced code", "Voor\n```go\nfmt.Println()\n```\nNa", "Voor\n\nNa"},
		{"inline code", "Gebruik `sticks` hier", "Gebruik sticks hier"},
		{"bullets", "- een\n* twee\n+ drie", "een\ntwee\ndrie"},
		{"numbered", "1. eerste\n2. tweede", "eerste\ntweede"},
		{"blank line runs", "a\n\n\n\nb", "a\n\nb"},
		{"trimmed", "  \n**Hallo**\n  ", "Hallo"},
		{"plain text untouched", "Hallo, hoe gaat het?", "Hallo, hoe gaat het?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkdown(tt.input))
		})
	}
}

func TestStripMarkdown_PlainTextIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[A-Za-zëé0-9,!?]{1,12}`), 1, 20).Draw(t, "words")
		text := strings.Join(words, " ")

		once := StripMarkdown(text)
		if once != text {
			t.Fatalf("plain text changed: %q -> %q", text, once)
		}
		if twice := StripMarkdown(once); twice != once {
			t.Fatalf("not idempotent: %q -> %q", once, twice)
		}
	})
}
