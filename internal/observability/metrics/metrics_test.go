package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMessagingMetricsObserve(t *testing.T) {
	m := NewMessagingMetrics(prometheus.NewRegistry())
	m.ObserveInbound("messages.upsert", "accepted")
	m.ObserveOutbound("sent")
	m.ObserveWebhookLatency("messages.upsert", 0.5)
}

func TestConversationMetricsObserve(t *testing.T) {
	m := NewConversationMetrics(prometheus.NewRegistry())
	m.ObserveTurn("ok")
	m.ObserveToolCall("find_vehicles", "ok")
	m.ObserveVerdict("warning")
	m.ObserveLLMLatency("anthropic", 1.2)
}

func TestMetricsNilSafe(t *testing.T) {
	var mm *MessagingMetrics
	mm.ObserveInbound("event", "status")
	mm.ObserveOutbound("sent")
	mm.ObserveWebhookLatency("event", 0.1)

	var cm *ConversationMetrics
	cm.ObserveTurn("ok")
	cm.ObserveToolCall("tool", "ok")
	cm.ObserveVerdict("ok")
	cm.ObserveLLMLatency("openai", 0.1)
}
