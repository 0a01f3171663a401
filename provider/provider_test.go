package provider

import (
	"testing"

	"github.com/mohammad-safakhou/newsreel/config"
)

func TestNewProvider(t *testing.T) {
	cfg := config.LLMConfig{Provider: "openai", ScriptWords: 60}

	p, err := NewProvider(OpenAI, "sk-test", cfg)
	if err != nil {
		t.Fatalf("NewProvider(openai): %v", err)
	}
	if p.Name() != "openai" {
		t.Fatalf("expected openai provider, got %s", p.Name())
	}

	p, err = NewProvider("Gemini", "gm-test", cfg)
	if err != nil {
		t.Fatalf("NewProvider(gemini): %v", err)
	}
	if p.Name() != "gemini" {
		t.Fatalf("expected gemini provider, got %s", p.Name())
	}

	if _, err := NewProvider(OpenAI, " ", cfg); err == nil {
		t.Fatalf("expected error without key")
	}
	if _, err := NewProvider("anthropic", "key", cfg); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}
}
