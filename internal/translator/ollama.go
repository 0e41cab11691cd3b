// Package translator implements the translation collaborator (C1): an HTTP
// client for Ollama's chat completion endpoint, used to translate English
// instructions into natural Japanese before they reach the TTS stage.
// Grounded on the teacher's internal/tts/openai.go net/http client shape,
// adapted to Ollama's /api/chat contract per original_source's
// server/core/translation.py.
package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/voxbridge/voxbridge/internal/logging"
)

// Translator translates English text to Japanese.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// ErrEmptyInput is returned when the text to translate is empty or
// whitespace-only.
type ErrEmptyInput struct{}

func (ErrEmptyInput) Error() string { return "translator: input text is empty" }

// Client is an HTTP client for a local Ollama server.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// New builds a Client pointed at baseURL, using model for chat completions.
func New(baseURL, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

const systemPrompt = "You are a translator. Translate the user's message into natural, " +
	"conversational Japanese suitable for text-to-speech. Reply with the translation only."

// Translate sends text to Ollama's /api/chat and returns the Japanese
// translation. It returns ErrEmptyInput without making a request when text
// is blank, matching the reference's short-circuit for empty hook payloads.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput{}
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		Stream: false,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("translator: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("translator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logging.Debug().Str("request_text", logging.Preview(text, 50)).Msg("translating")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translator: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator: ollama returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("translator: decode response: %w", err)
	}

	translated := strings.TrimSpace(out.Message.Content)
	if translated == "" {
		return "", fmt.Errorf("translator: ollama returned an empty translation")
	}
	return translated, nil
}
