package portal

import (
	"context"
	"sync"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/shopspring/decimal"
)

var PaymentMethods = []domain.PaymentMethod{
	domain.PaymentBankTransfer,
	domain.PaymentVirtualAccount,
	domain.PaymentQRIS,
	domain.PaymentCreditCard,
}

// PaymentForm submits one payment against a loan.
type PaymentForm struct {
	session *Session
	encoder Encoder
	guard   submitGuard

	mu     sync.Mutex
	loanID string
	amount decimal.Decimal
	method domain.PaymentMethod
	proof  string
}

func NewPaymentForm(session *Session, encoder Encoder, loanID string) *PaymentForm {
	return &PaymentForm{session: session, encoder: encoder, loanID: loanID}
}

func (f *PaymentForm) Set(amount decimal.Decimal, method domain.PaymentMethod) {
	f.mu.Lock()
	f.amount, f.method = amount, method
	f.mu.Unlock()
}

// AttachProof encodes a transfer receipt, image or PDF.
func (f *PaymentForm) AttachProof(ctx context.Context, file File) error {
	res := <-f.encoder.EncodeAsync(ctx, file, false)
	if res.Err != nil {
		return res.Err
	}
	f.mu.Lock()
	f.proof = res.Payload
	f.mu.Unlock()
	return nil
}

func (f *PaymentForm) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.loanID == "" {
		return invalid("loan_id", "is required")
	}
	if !f.amount.IsPositive() {
		return invalid("amount", "must be positive")
	}
	for _, m := range PaymentMethods {
		if m == f.method {
			return nil
		}
	}
	return invalid("method", "is not supported")
}

func (f *PaymentForm) Submit(ctx context.Context) (dto.PaymentResponse, error) {
	done, err := f.guard.begin()
	if err != nil {
		return dto.PaymentResponse{}, err
	}
	defer done()

	if err := f.Validate(); err != nil {
		return dto.PaymentResponse{}, err
	}
	c, err := f.session.Client()
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	f.mu.Lock()
	req := dto.PaymentRequest{Amount: f.amount, Method: string(f.method), ProofFile: f.proof}
	loanID := f.loanID
	f.mu.Unlock()

	payment, err := c.SubmitPayment(ctx, f.session.MemberID, loanID, req)
	if err != nil {
		return dto.PaymentResponse{}, err
	}

	f.mu.Lock()
	f.amount, f.method, f.proof = decimal.Zero, "", ""
	f.mu.Unlock()
	return payment, nil
}
