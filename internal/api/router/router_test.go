package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/garagemdigital/autovendas-ai-platform/internal/conversation"
	"github.com/garagemdigital/autovendas-ai-platform/internal/leads"
	"github.com/garagemdigital/autovendas-ai-platform/internal/messaging"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

type echoEngine struct{}

func (echoEngine) ProcessMessage(_ context.Context, req conversation.MessageRequest) (*conversation.Response, error) {
	return &conversation.Response{
		ConversationID: req.ConversationID,
		Message:        "ok",
		Timestamp:      time.Now().UTC(),
	}, nil
}

type noopSender struct{}

func (noopSender) SendText(context.Context, string, string) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *leads.InMemoryRepository) {
	t.Helper()
	logger := logging.Default()
	leadRepo := leads.NewInMemoryRepository()
	webhookHandler := messaging.NewHandler(echoEngine{}, noopSender{}, nil, nil, logger)
	handler := New(&Config{
		Logger:         logger,
		WebhookHandler: webhookHandler,
		LeadsHandler:   leads.NewHandler(leadRepo, logger),
		CacheBackend:   "memory",
	})
	return handler, leadRepo
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["cache_backend"] != "memory" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestLeadLookupNotFound(t *testing.T) {
	handler, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/85999999999", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLeadLookupFound(t *testing.T) {
	handler, leadRepo := newTestRouter(t)
	if _, err := leadRepo.UpsertByPhone(context.Background(), &leads.UpsertLeadRequest{
		Name:  "Ana Souza",
		Phone: "85999999999",
	}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leads/85999999999", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var lead leads.Lead
	if err := json.NewDecoder(rec.Body).Decode(&lead); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if lead.Name != "Ana Souza" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler, _ := newTestRouter(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
