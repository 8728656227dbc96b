package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// MessageSender delivers outbound texts to the customer.
type MessageSender interface {
	SendText(ctx context.Context, to, text string) error
}

// WhatsAppConfig describes how to reach the WhatsApp gateway.
type WhatsAppConfig struct {
	BaseURL  string
	APIKey   string
	Instance string
	Timeout  time.Duration
}

// WhatsAppClient sends messages through an Evolution API instance.
type WhatsAppClient struct {
	baseURL  string
	apiKey   string
	instance string
	http     *http.Client
}

// NewWhatsAppClient validates the configuration and returns a ready-to-use client.
func NewWhatsAppClient(cfg WhatsAppConfig) (*WhatsAppClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("whatsapp: base URL required")
	}
	if strings.TrimSpace(cfg.Instance) == "" {
		return nil, errors.New("whatsapp: instance name required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WhatsAppClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		instance: cfg.Instance,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

// SendText posts a plain text message to the given number.
func (c *WhatsAppClient) SendText(ctx context.Context, to, text string) error {
	if strings.TrimSpace(to) == "" {
		return errors.New("whatsapp: destination number required")
	}
	payload := map[string]any{
		"number": to,
		"text":   text,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp: encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/message/sendText/%s", c.baseURL, c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
