package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/trafficmanagerhub/hub/internal/config"
)

// Provider gera texto a partir de instruções de sistema e prompt.
type Provider interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// NewProvider escolhe o provedor conforme a configuração. Sem chave, o
// diagnóstico segue apenas com o plano B.
func NewProvider(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY ausente; diagnósticos usarão o modo fallback")
			return NoopProvider{}, nil
		}
		return NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, nil), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			log.Warn().Msg("GEMINI_API_KEY ausente; diagnósticos usarão o modo fallback")
			return NoopProvider{}, nil
		}
		return NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
	default:
		return NoopProvider{}, nil
	}
}

// NoopProvider sempre recusa; usado quando a IA está desligada.
type NoopProvider struct{}

func (NoopProvider) Generate(context.Context, string, string) (string, error) {
	return "", ErrProviderDisabled
}

func (NoopProvider) Model() string { return "" }

// OpenAIProvider chama a API de chat completions.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIProvider cria o cliente; httpClient nil usa http.DefaultClient.
// O timeout fica a cargo do contexto.
func NewOpenAIProvider(apiKey, baseURL, model string, httpClient *http.Client) *OpenAIProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

func (p *OpenAIProvider) Model() string { return p.model }

// Generate envia a conversa e devolve o conteúdo da primeira escolha.
func (p *OpenAIProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.4,
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("openai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("openai: resposta ilegível: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReport
	}
	return out.Choices[0].Message.Content, nil
}

// GeminiProvider usa o SDK oficial do Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider cria o cliente do SDK uma única vez.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Model() string { return p.model }

// Generate pede resposta em JSON com a instrução de sistema informada.
func (p *GeminiProvider) Generate(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.4)),
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyReport
	}
	return text, nil
}
