package portal

import (
	"context"
	"testing"

	"github.com/SundayYogurt/lending_portal/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTerms() LoanTerms {
	return LoanTerms{Amount: decimal.NewFromInt(500_000), Tenor: 3, Purpose: "education"}
}

func TestWizardNavigationPreservesData(t *testing.T) {
	w := NewLoanWizard(nil, NewEncoder(0))
	assert.Equal(t, StepTerms, w.Step())

	require.NoError(t, w.Back(), "back on the first step is a no-op")
	assert.Equal(t, StepTerms, w.Step())

	require.NoError(t, w.SetTerms(validTerms()))
	require.NoError(t, w.Next())
	assert.Equal(t, StepPersonal, w.Step())
	assert.ErrorIs(t, w.Next(), ErrInvalidTransition)

	require.NoError(t, w.UpdatePersonal(func(p *LoanPersonal) {
		p.Occupation = "Mechanic"
		p.Salary = decimal.NewFromInt(3_500_000)
	}))

	require.NoError(t, w.Back())
	assert.Equal(t, StepTerms, w.Step())
	assert.Equal(t, validTerms(), w.Terms())
	assert.Equal(t, "Mechanic", w.Personal().Occupation)
	assert.True(t, w.Personal().Salary.Equal(decimal.NewFromInt(3_500_000)))

	require.NoError(t, w.Next())
	assert.Equal(t, "Mechanic", w.Personal().Occupation)
}

func TestWizardNextRequiresTerms(t *testing.T) {
	w := NewLoanWizard(nil, NewEncoder(0))

	var ve *ValidationError
	require.ErrorAs(t, w.Next(), &ve)
	assert.Equal(t, "amount", ve.Field)

	terms := validTerms()
	terms.Tenor = 5
	require.NoError(t, w.SetTerms(terms))
	require.ErrorAs(t, w.Next(), &ve)
	assert.Equal(t, "tenor", ve.Field)
	assert.Equal(t, StepTerms, w.Step())
}

func TestWizardInstallment(t *testing.T) {
	w := NewLoanWizard(nil, NewEncoder(0))
	require.NoError(t, w.SetTerms(validTerms()))

	inst, err := w.Installment()
	require.NoError(t, err)
	assert.Equal(t, "176667", inst.String())

	for _, p := range []int64{500_000, 750_000, 1_000_000, 2_350_000, 10_000_000} {
		for _, tenor := range domain.LoanTenors {
			require.NoError(t, w.SetTerms(LoanTerms{Amount: decimal.NewFromInt(p), Tenor: tenor, Purpose: "other"}))
			got, err := w.Installment()
			require.NoError(t, err)

			total := p + p*2*int64(tenor)/100
			want := (total + int64(tenor) - 1) / int64(tenor)
			assert.Equal(t, want, got.IntPart(), "P=%d T=%d", p, tenor)
		}
	}
}

func TestWizardSubmitFromTermsIsRejected(t *testing.T) {
	w := NewLoanWizard(nil, NewEncoder(0))
	require.NoError(t, w.SetTerms(validTerms()))

	_, err := w.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestWizardSubmitAgainstServer(t *testing.T) {
	h := newHarness(t)
	m := h.register(t, "rina@example.com")
	s := h.login(t, "rina@example.com")
	admin := h.adminSession(t)
	ctx := context.Background()

	// approve identity first
	form := NewKYCForm(s, nil, NewEncoder(0))
	fillKYC(t, form)
	updated, err := form.Submit(ctx)
	require.NoError(t, err)
	ac, err := admin.Client()
	require.NoError(t, err)
	_, err = call[any](ctx, ac, "approve", "POST", "/kyc/"+updated.LatestKYC().ID+"/approve", nil, nil)
	require.NoError(t, err)

	w := NewLoanWizard(s, NewEncoder(0))
	require.NoError(t, w.SetTerms(validTerms()))
	require.NoError(t, w.Next())
	require.NoError(t, w.UpdatePersonal(func(p *LoanPersonal) {
		p.Occupation = "Mechanic"
		p.Salary = decimal.NewFromInt(3_500_000)
	}))
	slip := &File{Name: "slip.pdf", MIMEType: "application/pdf", Data: []byte("%PDF-1.4\nslip\n")}
	require.NoError(t, w.AttachDocuments(ctx, pngFile(t, "kk.png"), slip))
	assert.Contains(t, w.Personal().SalarySlip, "data:application/pdf;base64,")

	loan, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "176667", loan.Installment.String())
	assert.Equal(t, StepSubmitted, w.Step())
	assert.Equal(t, LoanTerms{}, w.Terms(), "data is cleared after submit")

	got, ok := w.Result()
	require.True(t, ok)
	assert.Equal(t, loan.ID, got.ID)

	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)
	assert.ErrorIs(t, w.SetTerms(validTerms()), ErrInvalidTransition)
	_, err = w.Submit(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	c, err := s.Client()
	require.NoError(t, err)
	loans, err := c.ListLoans(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, loans, 1)
}
