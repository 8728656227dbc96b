package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWhatsAppClientSendText(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := NewWhatsAppClient(WhatsAppConfig{
		BaseURL:  server.URL,
		APIKey:   "secret",
		Instance: "loja",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.SendText(context.Background(), "5585999999999", "Oi!"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/message/sendText/loja" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("apikey header missing, got %q", gotKey)
	}
	if gotBody["number"] != "5585999999999" || gotBody["text"] != "Oi!" {
		t.Fatalf("unexpected body %v", gotBody)
	}
}

func TestWhatsAppClientSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "instance offline", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewWhatsAppClient(WhatsAppConfig{BaseURL: server.URL, Instance: "loja"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.SendText(context.Background(), "5585999999999", "Oi!"); err == nil {
		t.Fatal("expected error from 503 response")
	}
}

func TestWhatsAppClientValidatesConfig(t *testing.T) {
	if _, err := NewWhatsAppClient(WhatsAppConfig{Instance: "loja"}); err == nil {
		t.Fatal("expected error without base URL")
	}
	if _, err := NewWhatsAppClient(WhatsAppConfig{BaseURL: "http://x"}); err == nil {
		t.Fatal("expected error without instance")
	}
}
