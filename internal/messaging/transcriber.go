package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Transcriber turns a voice note into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string) (string, error)
}

// TranscriberConfig describes how to reach the transcription API.
type TranscriberConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAITranscriber downloads a voice note and runs it through the audio
// transcriptions endpoint.
type OpenAITranscriber struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

// NewOpenAITranscriber validates the configuration and returns a ready-to-use client.
func NewOpenAITranscriber(cfg TranscriberConfig) (*OpenAITranscriber, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("transcriber: API key required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAITranscriber{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// Transcribe fetches the audio and returns the recognized text.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioURL string) (string, error) {
	audio, err := t.download(ctx, audioURL)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "voice-note.ogg")
	if err != nil {
		return "", fmt.Errorf("transcriber: build form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("transcriber: write form: %w", err)
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("transcriber: write form: %w", err)
	}
	if err := writer.WriteField("language", "pt"); err != nil {
		return "", fmt.Errorf("transcriber: write form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("transcriber: close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return "", fmt.Errorf("transcriber: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcriber: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("transcriber: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("transcriber: %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}

	var decoded struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("transcriber: decode response: %w", err)
	}
	return strings.TrimSpace(decoded.Text), nil
}

func (t *OpenAITranscriber) download(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("transcriber: build download: %w", err)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcriber: download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("transcriber: download: %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("transcriber: read audio: %w", err)
	}
	return data, nil
}
