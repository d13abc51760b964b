package services

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnknownEvent = errors.New("no mail for event type")

// Mailer delivers one rendered email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type mailKind struct {
	template string
	subject  func(ev dto.PortalEvent) string
}

var kinds = map[string]mailKind{
	dto.EventMemberRegistered: {"member-registered.html", func(dto.PortalEvent) string {
		return "Welcome to Lending Portal"
	}},
	dto.EventKYCSubmitted: {"kyc-submitted.html", func(dto.PortalEvent) string {
		return "We received your identity verification"
	}},
	dto.EventKYCReviewed: {"kyc-reviewed.html", func(ev dto.PortalEvent) string {
		if ev.Status == "approved" {
			return "Your identity is verified"
		}
		return "Your identity verification needs attention"
	}},
	dto.EventLoanSubmitted: {"loan-submitted.html", func(dto.PortalEvent) string {
		return "Your loan application was submitted"
	}},
	dto.EventPaymentSubmitted: {"payment-submitted.html", func(dto.PortalEvent) string {
		return "Payment received for review"
	}},
}

type MailService struct {
	mailer    Mailer
	portalURL string
	templates *template.Template
}

func NewMailService(mailer Mailer, portalURL string) (*MailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &MailService{
		mailer:    mailer,
		portalURL: strings.TrimRight(portalURL, "/"),
		templates: tmpl,
	}, nil
}

// Render returns the subject and HTML body for an event.
func (s *MailService) Render(ev dto.PortalEvent) (string, string, error) {
	kind, ok := kinds[ev.Type]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	data := map[string]any{
		"Name":      ev.Name,
		"Reference": ev.Reference,
		"Status":    ev.Status,
		"Note":      ev.Note,
		"Amount":    "",
		"PortalURL": s.portalURL,
	}
	if ev.Amount != nil {
		data["Amount"] = ev.Amount.StringFixed(0)
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, kind.template, data); err != nil {
		return "", "", err
	}
	return kind.subject(ev), buf.String(), nil
}

func (s *MailService) Notify(ctx context.Context, ev dto.PortalEvent) error {
	if ev.Email == "" {
		return errors.New("event has no recipient")
	}

	subject, body, err := s.Render(ev)
	if err != nil {
		return err
	}

	logger.Info("sending mail", zap.String("type", ev.Type), zap.String("to", ev.Email))
	if err := s.mailer.Send(ctx, ev.Email, subject, body); err != nil {
		return fmt.Errorf("send %s mail: %w", ev.Type, err)
	}
	logger.Info("mail sent", zap.String("type", ev.Type), zap.String("to", ev.Email))
	return nil
}
