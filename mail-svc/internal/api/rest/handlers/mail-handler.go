package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/mail-svc/internal/services"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, ev dto.PortalEvent) error
}

type MailHandler struct {
	Notifier Notifier
}

func NewMailHandler(n Notifier) *MailHandler {
	return &MailHandler{Notifier: n}
}

// HandleMessage decodes one portal event and mails the member.
// Events without a mail template are skipped.
func (h *MailHandler) HandleMessage(ctx context.Context, message []byte) error {
	var ev dto.PortalEvent
	if err := json.Unmarshal(message, &ev); err != nil {
		logger.Warn("invalid event payload", zap.ByteString("payload", message))
		return err
	}

	logger.Info("event received",
		zap.String("type", ev.Type),
		zap.String("member_id", ev.MemberID),
	)

	err := h.Notifier.Notify(ctx, ev)
	if errors.Is(err, services.ErrUnknownEvent) {
		logger.Debug("no mail for event", zap.String("type", ev.Type))
		return nil
	}
	return err
}
