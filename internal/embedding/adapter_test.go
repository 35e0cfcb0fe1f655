package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

type stubProvider struct {
	lastInput []string
	vectors   [][]float32
	err       error
}

func (s *stubProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	s.lastInput = texts
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors, nil
}

func TestAdapter_Embed(t *testing.T) {
	provider := &stubProvider{vectors: [][]float32{{0.1, 0.2}}}
	adapter := NewAdapter(provider)

	vec := adapter.Embed(context.Background(), "hola")
	if len(vec) != 2 {
		t.Fatalf("Embed() = %v, want 2-dim vector", vec)
	}
	if len(provider.lastInput) != 1 || provider.lastInput[0] != "hola" {
		t.Errorf("provider received %v, want [hola]", provider.lastInput)
	}
}

func TestAdapter_Embed_TruncatesLongInput(t *testing.T) {
	provider := &stubProvider{vectors: [][]float32{{0.1}}}
	adapter := NewAdapter(provider)

	long := strings.Repeat("é", MaxInputChars+500)
	adapter.Embed(context.Background(), long)

	if len(provider.lastInput) != 1 {
		t.Fatalf("provider received %d inputs, want 1", len(provider.lastInput))
	}
	if got := utf8.RuneCountInString(provider.lastInput[0]); got != MaxInputChars {
		t.Errorf("truncated input has %d runes, want %d", got, MaxInputChars)
	}
}

func TestAdapter_Embed_NilOnProviderFailure(t *testing.T) {
	provider := &stubProvider{err: errors.New("service down")}
	adapter := NewAdapter(provider)

	if vec := adapter.Embed(context.Background(), "hola"); vec != nil {
		t.Errorf("Embed() = %v, want nil on provider failure", vec)
	}
}

func TestAdapter_Embed_NilOnEmptyResponse(t *testing.T) {
	provider := &stubProvider{vectors: nil}
	adapter := NewAdapter(provider)

	if vec := adapter.Embed(context.Background(), "hola"); vec != nil {
		t.Errorf("Embed() = %v, want nil on empty response", vec)
	}
}
