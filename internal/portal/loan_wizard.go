package portal

import (
	"context"
	"strings"
	"sync"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type WizardStep string

const (
	StepTerms     WizardStep = "STEP_1_TERMS"
	StepPersonal  WizardStep = "STEP_2_PERSONAL"
	StepSubmitted WizardStep = "SUBMITTED"
)

type LoanTerms struct {
	Amount  decimal.Decimal
	Tenor   int
	Purpose string
}

type LoanPersonal struct {
	Occupation string
	Salary     decimal.Decimal
	FamilyCard string // optional data URL
	SalarySlip string // optional data URL
}

// LoanWizard walks a loan application through terms, personal details and
// submission. Going back never discards entered data.
type LoanWizard struct {
	session *Session
	encoder Encoder
	guard   submitGuard

	mu       sync.Mutex
	step     WizardStep
	terms    LoanTerms
	personal LoanPersonal
	result   *dto.LoanResponse
}

func NewLoanWizard(session *Session, encoder Encoder) *LoanWizard {
	return &LoanWizard{session: session, encoder: encoder, step: StepTerms}
}

func (w *LoanWizard) Step() WizardStep {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

func (w *LoanWizard) Terms() LoanTerms {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.terms
}

func (w *LoanWizard) Personal() LoanPersonal {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.personal
}

// Result is the created application once the wizard reached SUBMITTED.
func (w *LoanWizard) Result() (dto.LoanResponse, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.result == nil {
		return dto.LoanResponse{}, false
	}
	return *w.result, true
}

func (w *LoanWizard) SetTerms(t LoanTerms) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepSubmitted {
		return ErrInvalidTransition
	}
	w.terms = t
	return nil
}

func (w *LoanWizard) UpdatePersonal(fn func(*LoanPersonal)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepSubmitted {
		return ErrInvalidTransition
	}
	fn(&w.personal)
	return nil
}

// Installment is the monthly amount for the current terms.
func (w *LoanWizard) Installment() (decimal.Decimal, error) {
	t := w.Terms()
	return domain.Installment(t.Amount, t.Tenor)
}

// Next moves from terms to personal details once the terms are filled in.
func (w *LoanWizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepTerms {
		return ErrInvalidTransition
	}
	if err := checkTerms(w.terms); err != nil {
		return err
	}
	w.step = StepPersonal
	return nil
}

// Back returns to the terms step. On the terms step it does nothing.
func (w *LoanWizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch w.step {
	case StepSubmitted:
		return ErrInvalidTransition
	case StepPersonal:
		w.step = StepTerms
	}
	return nil
}

func checkTerms(t LoanTerms) error {
	switch {
	case !domain.ValidLoanAmount(t.Amount):
		return invalid("amount", "must be between "+domain.MinLoanAmount.String()+" and "+
			domain.MaxLoanAmount.String()+" in steps of "+domain.LoanAmountStep.String())
	case !domain.ValidTenor(t.Tenor):
		return invalid("tenor", "must be 1, 3, 6 or 12 months")
	case strings.TrimSpace(t.Purpose) == "":
		return invalid("purpose", "is required")
	}
	return nil
}

// AttachDocuments encodes the optional family card and salary slip
// concurrently. Documents may be images or PDFs.
func (w *LoanWizard) AttachDocuments(ctx context.Context, familyCard, salarySlip *File) error {
	g, ctx := errgroup.WithContext(ctx)

	attach := func(file *File, set func(*LoanPersonal, string)) {
		if file == nil {
			return
		}
		ch := w.encoder.EncodeAsync(ctx, *file, false)
		g.Go(func() error {
			res := <-ch
			if res.Err != nil {
				return res.Err
			}
			return w.UpdatePersonal(func(p *LoanPersonal) { set(p, res.Payload) })
		})
	}
	attach(familyCard, func(p *LoanPersonal, v string) { p.FamilyCard = v })
	attach(salarySlip, func(p *LoanPersonal, v string) { p.SalarySlip = v })

	return g.Wait()
}

// Submit sends the application from the personal step. Reaching SUBMITTED
// clears the entered data and cannot be undone.
func (w *LoanWizard) Submit(ctx context.Context) (dto.LoanResponse, error) {
	done, err := w.guard.begin()
	if err != nil {
		return dto.LoanResponse{}, err
	}
	defer done()

	w.mu.Lock()
	step, terms, personal := w.step, w.terms, w.personal
	w.mu.Unlock()

	if step != StepPersonal {
		return dto.LoanResponse{}, ErrInvalidTransition
	}
	if err := checkTerms(terms); err != nil {
		return dto.LoanResponse{}, err
	}
	if strings.TrimSpace(personal.Occupation) == "" {
		return dto.LoanResponse{}, invalid("occupation", "is required")
	}
	if personal.Salary.IsNegative() {
		return dto.LoanResponse{}, invalid("salary", "must not be negative")
	}

	c, err := w.session.Client()
	if err != nil {
		return dto.LoanResponse{}, err
	}
	loan, err := c.ApplyLoan(ctx, w.session.MemberID, dto.LoanApplicationRequest{
		Amount:         terms.Amount,
		Tenor:          terms.Tenor,
		Purpose:        strings.TrimSpace(terms.Purpose),
		Occupation:     strings.TrimSpace(personal.Occupation),
		Salary:         personal.Salary,
		FamilyCardFile: personal.FamilyCard,
		SalarySlipFile: personal.SalarySlip,
	})
	if err != nil {
		return dto.LoanResponse{}, err
	}

	w.mu.Lock()
	w.step = StepSubmitted
	w.terms = LoanTerms{}
	w.personal = LoanPersonal{}
	w.result = &loan
	w.mu.Unlock()
	return loan, nil
}
