// Package voicevox implements the synthesis collaborator (C2): a client for
// a local VOICEVOX engine's two-step synthesis contract. Grounded on
// original_source's server/core/tts_voicevox.py, wrapped in the teacher's
// net/http client idiom from internal/tts/openai.go.
package voicevox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/voxbridge/voxbridge/internal/logging"
)

// Synthesizer turns Japanese text into a WAV file on disk.
type Synthesizer interface {
	SynthesizeToFile(ctx context.Context, text string, requestID string) (string, error)
	CheckHealth(ctx context.Context) bool
	Cleanup() error
}

// Client is an HTTP client for a local VOICEVOX engine.
type Client struct {
	baseURL    string
	speakerID  int
	tmpDir     string
	httpClient *http.Client
}

// New builds a Client. tmpDir is where synthesized WAV files are written;
// it must already exist (internal/config creates it at load time).
func New(baseURL string, speakerID int, timeout time.Duration, tmpDir string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		speakerID: speakerID,
		tmpDir:    tmpDir,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CheckHealth pings the engine's version endpoint. Used at startup per
// spec.md §4.5: the server refuses to start Running if this fails.
func (c *Client) CheckHealth(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/version", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// SynthesizeToFile runs the two-step VOICEVOX pipeline — audio_query then
// synthesis — and writes the resulting WAV under c.tmpDir, named with
// requestID so concurrent jobs never collide.
func (c *Client) SynthesizeToFile(ctx context.Context, text string, requestID string) (string, error) {
	query, err := c.audioQuery(ctx, text)
	if err != nil {
		return "", err
	}

	wav, err := c.synthesis(ctx, query)
	if err != nil {
		return "", err
	}

	path := filepath.Join(c.tmpDir, fmt.Sprintf("voxbridge-%s.wav", requestID))
	if err := os.WriteFile(path, wav, 0644); err != nil {
		return "", fmt.Errorf("voicevox: write wav: %w", err)
	}

	logging.Debug().Str("request_id", requestID).Str("path", path).Msg("synthesized audio")
	return path, nil
}

func (c *Client) audioQuery(ctx context.Context, text string) ([]byte, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(c.speakerID))

	reqURL := c.baseURL + "/audio_query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("voicevox: build audio_query request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voicevox: audio_query request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voicevox: audio_query returned status %d", resp.StatusCode)
	}

	query, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("voicevox: read audio_query response: %w", err)
	}
	return query, nil
}

func (c *Client) synthesis(ctx context.Context, query []byte) ([]byte, error) {
	params := url.Values{}
	params.Set("speaker", strconv.Itoa(c.speakerID))

	reqURL := c.baseURL + "/synthesis?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("voicevox: build synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voicevox: synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voicevox: synthesis returned status %d", resp.StatusCode)
	}

	wav, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("voicevox: read synthesis response: %w", err)
	}
	return wav, nil
}

// Cleanup closes the client's idle HTTP connections to the engine. It does
// not touch the temp directory: spec.md §6.5 is explicit that the temp
// directory is not cleaned at shutdown, and a return_audio WAV left on
// disk is the caller's responsibility to remove, not this client's.
func (c *Client) Cleanup() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
