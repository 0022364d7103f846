package factory

import (
	"testing"

	"legalai-be/pkg/llm/gemini"
	"legalai-be/pkg/llm/huggingface"
	"legalai-be/pkg/llm/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	p, err := NewLLMProvider(Settings{Provider: "gemini", GeminiAPIKey: "k", Model: "gemini-1.5-flash"})
	require.NoError(t, err)
	assert.IsType(t, &gemini.GeminiProvider{}, p)

	p, err = NewLLMProvider(Settings{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	require.IsType(t, &ollama.OllamaProvider{}, p)
	assert.Equal(t, "http://localhost:11434", p.(*ollama.OllamaProvider).BaseURL)

	p, err = NewLLMProvider(Settings{Provider: "huggingface", Model: "m"})
	require.NoError(t, err)
	assert.IsType(t, &huggingface.HuggingFaceProvider{}, p)

	_, err = NewLLMProvider(Settings{Provider: "gemini"})
	assert.Error(t, err)

	_, err = NewLLMProvider(Settings{Provider: "openai"})
	assert.EqualError(t, err, "unsupported LLM provider: openai")
}
