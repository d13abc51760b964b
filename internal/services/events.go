package services

import (
	"encoding/json"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/internal/interfaces"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"go.uber.org/zap"
)

// publish is best effort: a broker outage never fails the request.
func publish(p interfaces.ProducerHandler, ev dto.PortalEvent) {
	if p == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()

	b, err := json.Marshal(ev)
	if err != nil {
		logger.Error("marshal event failed", err, zap.String("type", ev.Type))
		return
	}
	if err := p.PublishMessage([]byte(ev.MemberID), b); err != nil {
		logger.Warn("publish event failed", zap.String("type", ev.Type), zap.Error(err))
	}
}

func memberEvent(typ string, m *domain.Member) dto.PortalEvent {
	return dto.PortalEvent{
		Type:     typ,
		MemberID: m.ID,
		Email:    m.Email,
		Name:     m.Name,
	}
}
