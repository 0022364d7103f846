package factory

import (
	"fmt"

	"legalai-be/pkg/llm"
	"legalai-be/pkg/llm/gemini"
	"legalai-be/pkg/llm/huggingface"
	"legalai-be/pkg/llm/ollama"
)

// Settings carries every knob a provider might need; each provider reads its own.
type Settings struct {
	Provider      string
	Model         string
	GeminiBaseURL string
	GeminiAPIKey  string
	OllamaBaseURL string
	HFBaseURL     string
	HFAPIKey      string
}

func NewLLMProvider(s Settings) (llm.LLMProvider, error) {
	switch s.Provider {
	case "gemini", "":
		if s.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires an API key")
		}
		return gemini.NewGeminiProvider(s.GeminiBaseURL, s.GeminiAPIKey, s.Model), nil
	case "ollama":
		baseURL := s.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, s.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(s.HFAPIKey, s.HFBaseURL, s.Model), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", s.Provider)
	}
}
