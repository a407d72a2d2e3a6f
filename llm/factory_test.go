package llm

import (
	"testing"
)

func TestParseProviderType(t *testing.T) {
	tests := []struct {
		input   string
		want    ProviderType
		wantErr bool
	}{
		{"openai", ProviderOpenAI, false},
		{"GPT", ProviderOpenAI, false},
		{"anthropic", ProviderAnthropic, false},
		{"Claude", ProviderAnthropic, false},
		{"deepseek", ProviderDeepSeek, false},
		{"gemini", ProviderGemini, false},
		{"google", ProviderGemini, false},
		{"mistral", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseProviderType(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseProviderType(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseProviderType(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProviderType(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestProviderTypeString(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "openai"},
		{ProviderAnthropic, "anthropic"},
		{ProviderDeepSeek, "deepseek"},
		{ProviderGemini, "gemini"},
		{ProviderType(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.provider.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", int(tt.provider), got, tt.want)
		}
	}
}

func TestProviderTypeEnvVar(t *testing.T) {
	tests := []struct {
		provider ProviderType
		want     string
	}{
		{ProviderOpenAI, "OPENAI_API_KEY"},
		{ProviderAnthropic, "ANTHROPIC_API_KEY"},
		{ProviderDeepSeek, "DEEPSEEK_API_KEY"},
		{ProviderGemini, "GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		if got := tt.provider.EnvVar(); got != tt.want {
			t.Errorf("%s.EnvVar() = %q, want %q", tt.provider, got, tt.want)
		}
	}
}

func TestBuilderAppliesDefaults(t *testing.T) {
	provider, err := ProviderOpenAI.APIKey("sk-test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.Name() != "openai" {
		t.Errorf("expected openai provider, got %s", provider.Name())
	}
	if provider.Model() != ModelOpenAIGPT4o {
		t.Errorf("expected default model %s, got %s", ModelOpenAIGPT4o, provider.Model())
	}
}

func TestBuilderCustomModel(t *testing.T) {
	provider, err := ProviderAnthropic.
		Model(ModelAnthropicClaudeHaiku4).
		MaxTokens(8192).
		Temperature(0.3).
		APIKey("sk-ant-test-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.Model() != ModelAnthropicClaudeHaiku4 {
		t.Errorf("expected model %s, got %s", ModelAnthropicClaudeHaiku4, provider.Model())
	}
}

func TestFromEnvMissingKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")

	_, err := ProviderDeepSeek.FromEnv()
	if err == nil {
		t.Fatal("expected error when API key env var is unset")
	}
}
