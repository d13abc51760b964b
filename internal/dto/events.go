package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventMemberRegistered = "member.registered"
	EventKYCSubmitted     = "kyc.submitted"
	EventKYCReviewed      = "kyc.reviewed"
	EventLoanSubmitted    = "loan.submitted"
	EventPaymentSubmitted = "payment.submitted"
)

// PortalEvent is published to Kafka and consumed by mail-svc.
type PortalEvent struct {
	Type       string           `json:"type"`
	MemberID   string           `json:"member_id"`
	Email      string           `json:"email"`
	Name       string           `json:"name"`
	Reference  string           `json:"reference,omitempty"`
	Status     string           `json:"status,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Note       string           `json:"note,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
