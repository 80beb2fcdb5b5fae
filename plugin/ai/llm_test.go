package ai

import (
	"testing"
	"time"
)

// TestNewLLMService tests service creation.
func TestNewLLMService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *LLMConfig
		expectError bool
	}{
		{
			name: "OpenAI config",
			cfg: &LLMConfig{
				APIKey:      "test-key",
				BaseURL:     "https://api.openai.com/v1",
				Model:       "gpt-4o-mini",
				MaxTokens:   2048,
				Temperature: 0.7,
			},
			expectError: false,
		},
		{
			name: "Compatible endpoint config",
			cfg: &LLMConfig{
				APIKey:  "test-key",
				BaseURL: "http://localhost:11434/v1",
				Model:   "llama3",
			},
			expectError: false,
		},
		{
			name: "Missing API key",
			cfg: &LLMConfig{
				Model: "gpt-4o-mini",
			},
			expectError: true,
		},
		{
			name: "Missing model",
			cfg: &LLMConfig{
				APIKey: "test-key",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMService(tt.cfg)
			if (err != nil) != tt.expectError {
				t.Errorf("NewLLMService() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

// TestMessageHelpers tests helper functions.
func TestMessageHelpers(t *testing.T) {
	sys := SystemPrompt("System prompt")
	if sys.Role != "system" {
		t.Errorf("SystemPrompt() Role = %s, want 'system'", sys.Role)
	}

	user := UserMessage("User message")
	if user.Role != "user" {
		t.Errorf("UserMessage() Role = %s, want 'user'", user.Role)
	}

	asst := AssistantMessage("Assistant message")
	if asst.Role != "assistant" {
		t.Errorf("AssistantMessage() Role = %s, want 'assistant'", asst.Role)
	}
}

// TestConvertMessages tests message conversion.
func TestConvertMessages(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "You are a pitch coach"},
		{Role: "user", Content: "Hello"},
		{Role: "assistant", Content: "Hi there"},
	}

	llmMessages := convertMessages(messages)

	if len(llmMessages) != len(messages) {
		t.Fatalf("convertMessages() length = %d, want %d", len(llmMessages), len(messages))
	}
	for i := range messages {
		if llmMessages[i].Role != messages[i].Role {
			t.Errorf("llmMessages[%d].Role = %s, want %s", i, llmMessages[i].Role, messages[i].Role)
		}
	}
}

// TestFormatMessages tests message formatting.
func TestFormatMessages(t *testing.T) {
	history := []Message{
		{Role: "user", Content: "Previous message"},
		{Role: "assistant", Content: "Previous response"},
	}

	messages := FormatMessages("System prompt", "Current message", history)

	if len(messages) != 4 {
		t.Errorf("FormatMessages() length = %d, want 4", len(messages))
	}

	if messages[0].Role != "system" {
		t.Errorf("messages[0].Role = %s, want 'system'", messages[0].Role)
	}

	if messages[len(messages)-1].Content != "Current message" {
		t.Errorf("last message Content = %s, want 'Current message'", messages[len(messages)-1].Content)
	}
}

// TestNewLLMConfigDefaults tests config defaults applied at construction.
func TestNewLLMConfigDefaults(t *testing.T) {
	cfg := &LLMConfig{
		APIKey: "test-key",
		Model:  "gpt-4o-mini",
	}
	svc, err := NewLLMService(cfg)
	if err != nil {
		t.Fatalf("NewLLMService() error = %v", err)
	}

	impl, ok := svc.(*llmService)
	if !ok {
		t.Fatal("service is not *llmService")
	}
	if impl.maxRetries != 3 {
		t.Errorf("maxRetries = %d, want 3", impl.maxRetries)
	}
	if impl.maxTokens != 2048 {
		t.Errorf("maxTokens = %d, want 2048", impl.maxTokens)
	}
}

// TestLLMConfigFromProfileTimeout keeps the profile-derived timeout in range.
func TestLLMConfigTimeout(t *testing.T) {
	cfg := &LLMConfig{
		APIKey:  "k",
		Model:   "m",
		Timeout: 60 * time.Second,
	}
	if cfg.Timeout <= 0 {
		t.Error("Timeout should be positive")
	}
}
