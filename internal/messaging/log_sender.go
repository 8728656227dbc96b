package messaging

import (
	"context"

	"github.com/garagemdigital/autovendas-ai-platform/pkg/logging"
)

// LogSender writes outbound messages to the log instead of a gateway. Used
// in development when no WhatsApp instance is configured.
type LogSender struct {
	logger *logging.Logger
}

func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendText(_ context.Context, to, text string) error {
	s.logger.Info("messaging: outbound (log only)", "to", to, "text", text)
	return nil
}
