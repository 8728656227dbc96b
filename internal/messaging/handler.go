package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/garagemdigital/autovendas-ai-platform/internal/conversation"
	"github.com/garagemdigital/autovendas-ai-platform/internal/observability/metrics"
	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

var whatsappTracer = otel.Tracer("autovendas.internal.messaging.whatsapp")

// audioRetryReply is sent when a voice note cannot be transcribed. The turn
// never reaches the model in that case.
const audioRetryReply = "Não consegui ouvir seu áudio agora. Pode escrever sua mensagem, por favor?"

// eventMessagesUpsert is the only webhook event that carries new inbound
// messages; everything else is acknowledged and dropped.
const eventMessagesUpsert = "messages.upsert"

// Handler receives WhatsApp webhooks, acknowledges them immediately and
// processes the turn off the request path.
type Handler struct {
	engine      conversation.Service
	sender      MessageSender
	transcriber Transcriber
	metrics     *metrics.MessagingMetrics
	logger      *logging.Logger
}

// NewHandler creates the webhook handler. transcriber and m may be nil;
// voice notes then get the retry reply without a transcription attempt.
func NewHandler(engine conversation.Service, sender MessageSender, transcriber Transcriber, m *metrics.MessagingMetrics, logger *logging.Logger) *Handler {
	if engine == nil {
		panic("messaging: conversation engine cannot be nil")
	}
	if sender == nil {
		panic("messaging: sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		engine:      engine,
		sender:      sender,
		transcriber: transcriber,
		metrics:     m,
		logger:      logger,
	}
}

// webhookPayload mirrors the Evolution API messages.upsert shape, reduced
// to the fields the agent consumes.
type webhookPayload struct {
	Event    string `json:"event"`
	Instance string `json:"instance"`
	Data     struct {
		Key struct {
			RemoteJID string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
			ID        string `json:"id"`
		} `json:"key"`
		PushName string `json:"pushName"`
		Message  struct {
			Conversation        string `json:"conversation"`
			ExtendedTextMessage struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
			AudioMessage struct {
				URL      string `json:"url"`
				Mimetype string `json:"mimetype"`
			} `json:"audioMessage"`
		} `json:"message"`
	} `json:"data"`
}

type inboundMessage struct {
	Phone     string
	Name      string
	Text      string
	AudioURL  string
	MessageID string
}

// Webhook handles POST /webhooks/whatsapp. The gateway retries on anything
// but a 2xx, so every parseable event is acknowledged before processing.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := whatsappTracer.Start(r.Context(), "messaging.whatsapp.webhook")
	defer span.End()
	start := time.Now()

	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.Error("messaging: webhook decode failed", "error", err)
		h.metrics.ObserveInbound("unknown", "bad_request")
		span.RecordError(err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	span.SetAttributes(
		attribute.String("autovendas.webhook.event", payload.Event),
		attribute.String("autovendas.webhook.instance", payload.Instance),
	)

	if payload.Event != eventMessagesUpsert || payload.Data.Key.FromMe {
		h.metrics.ObserveInbound(payload.Event, "ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	inbound := inboundMessage{
		Phone:     PhoneFromJID(payload.Data.Key.RemoteJID),
		Name:      payload.Data.PushName,
		Text:      firstNonEmpty(payload.Data.Message.Conversation, payload.Data.Message.ExtendedTextMessage.Text),
		AudioURL:  payload.Data.Message.AudioMessage.URL,
		MessageID: payload.Data.Key.ID,
	}
	if inbound.Phone == "" || (inbound.Text == "" && inbound.AudioURL == "") {
		err := errors.New("missing sender or content")
		h.logger.Warn("messaging: webhook dropped", "error", err, "event", payload.Event)
		h.metrics.ObserveInbound(payload.Event, "dropped")
		span.RecordError(err)
		w.WriteHeader(http.StatusOK)
		return
	}
	span.SetAttributes(attribute.String("autovendas.webhook.message_id", inbound.MessageID))

	h.metrics.ObserveInbound(payload.Event, "accepted")
	h.metrics.ObserveWebhookLatency(payload.Event, time.Since(start).Seconds())
	w.WriteHeader(http.StatusAccepted)

	go h.process(context.WithoutCancel(ctx), inbound)
}

// process runs the conversation turn and delivers the reply. It owns its
// own deadline because the webhook request is long gone.
func (h *Handler) process(ctx context.Context, inbound inboundMessage) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	text := inbound.Text
	if text == "" && inbound.AudioURL != "" {
		transcribed, err := h.transcribe(ctx, inbound.AudioURL)
		if err != nil {
			h.logger.Warn("messaging: transcription failed", "error", err, "phone", inbound.Phone)
			h.deliver(ctx, inbound.Phone, audioRetryReply)
			return
		}
		text = transcribed
	}

	resp, err := h.engine.ProcessMessage(ctx, conversation.MessageRequest{
		ConversationID: inbound.Phone,
		From:           inbound.Phone,
		Message:        text,
		Timestamp:      time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("messaging: turn failed", "error", err, "phone", inbound.Phone)
		return
	}
	h.deliver(ctx, inbound.Phone, resp.Message)
}

func (h *Handler) transcribe(ctx context.Context, audioURL string) (string, error) {
	if h.transcriber == nil {
		return "", errors.New("messaging: no transcriber configured")
	}
	text, err := h.transcriber.Transcribe(ctx, audioURL)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("messaging: empty transcription")
	}
	return text, nil
}

func (h *Handler) deliver(ctx context.Context, to, text string) {
	if err := h.sender.SendText(ctx, to, text); err != nil {
		h.logger.Error("messaging: send failed", "error", err, "phone", to)
		h.metrics.ObserveOutbound("error")
		return
	}
	h.metrics.ObserveOutbound("sent")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
