// Package portal is the member-facing workflow of the lending portal:
// session, form state, attachment encoding, the KYC status gate and the
// loan wizard, all talking to the members API over HTTP.
package portal

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SundayYogurt/lending_portal/internal/dto"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 15 * time.Second

// Client talks to the members API. The zero token sends anonymous
// requests; Session hands out authenticated copies.
type Client struct {
	rest  *resty.Client
	token string
}

type Option func(*resty.Client)

// WithHTTPClient routes requests through hc, e.g. an httptest server client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *resty.Client) {
		c.SetTransport(hc.Transport)
		if hc.Timeout > 0 {
			c.SetTimeout(hc.Timeout)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// NewClient builds a client for the API root, e.g. http://localhost:3000/api.
func NewClient(baseURL string, opts ...Option) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(defaultTimeout)
	for _, opt := range opts {
		opt(rc)
	}
	return &Client{rest: rc}
}

func (c *Client) withToken(token string) *Client {
	return &Client{rest: c.rest, token: token}
}

// call performs one request and unwraps the {"data": ...} envelope.
func call[T any](ctx context.Context, c *Client, op, method, path string, body any, query url.Values) (T, error) {
	var (
		out    dto.Envelope[T]
		apiErr dto.APIError
	)

	req := c.rest.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr)
	if c.token != "" {
		req.SetAuthToken(c.token)
	}
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return out.Data, &NetworkError{Op: op, Err: err}
	}
	if !resp.IsSuccess() {
		return out.Data, statusError(op, resp.StatusCode(), apiErr.Error)
	}
	return out.Data, nil
}

func memberPath(memberID string, parts ...string) string {
	var b strings.Builder
	b.WriteString("/members/")
	b.WriteString(url.PathEscape(memberID))
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// ===== Members =====

// FetchAll reads the member collection visible to the caller.
func (c *Client) FetchAll(ctx context.Context) ([]dto.MemberResponse, error) {
	return call[[]dto.MemberResponse](ctx, c, "fetch members", http.MethodGet, "/members", nil, nil)
}

// FindByEmail is the public uniqueness check used before registering.
func (c *Client) FindByEmail(ctx context.Context, email string) ([]dto.MemberSummary, error) {
	return call[[]dto.MemberSummary](ctx, c, "find member", http.MethodGet, "/members", nil, url.Values{"email": {email}})
}

func (c *Client) Create(ctx context.Context, req dto.RegisterRequest) (dto.MemberResponse, error) {
	return call[dto.MemberResponse](ctx, c, "create member", http.MethodPost, "/members", req, nil)
}

func (c *Client) Get(ctx context.Context, memberID string) (dto.MemberResponse, error) {
	return call[dto.MemberResponse](ctx, c, "get member", http.MethodGet, memberPath(memberID), nil, nil)
}

// Patch sends a partial update. Without patch.Version the last write wins.
func (c *Client) Patch(ctx context.Context, memberID string, patch dto.MemberPatch) (dto.MemberResponse, error) {
	return call[dto.MemberResponse](ctx, c, "patch member", http.MethodPatch, memberPath(memberID), patch, nil)
}

// Replace overwrites the profile fields of a member.
func (c *Client) Replace(ctx context.Context, memberID string, req dto.MemberReplace) (dto.MemberResponse, error) {
	return call[dto.MemberResponse](ctx, c, "replace member", http.MethodPut, memberPath(memberID), req, nil)
}

// ===== KYC =====

func (c *Client) LatestKYC(ctx context.Context, memberID string) (dto.KYCSubmissionResponse, error) {
	return call[dto.KYCSubmissionResponse](ctx, c, "latest kyc", http.MethodGet, memberPath(memberID, "kyc"), nil, nil)
}

func (c *Client) SubmitKYC(ctx context.Context, memberID string, req dto.KYCSubmissionInput) (dto.KYCSubmissionResponse, error) {
	return call[dto.KYCSubmissionResponse](ctx, c, "submit kyc", http.MethodPost, memberPath(memberID, "kyc"), req, nil)
}

// ===== Loans =====

func (c *Client) QuoteLoan(ctx context.Context, amount decimal.Decimal, tenor int) (dto.LoanQuoteResponse, error) {
	q := url.Values{
		"amount": {amount.String()},
		"tenor":  {strconv.Itoa(tenor)},
	}
	return call[dto.LoanQuoteResponse](ctx, c, "quote loan", http.MethodGet, "/loans/quote", nil, q)
}

func (c *Client) ApplyLoan(ctx context.Context, memberID string, req dto.LoanApplicationRequest) (dto.LoanResponse, error) {
	return call[dto.LoanResponse](ctx, c, "apply loan", http.MethodPost, memberPath(memberID, "loans"), req, nil)
}

func (c *Client) ListLoans(ctx context.Context, memberID string) ([]dto.LoanResponse, error) {
	return call[[]dto.LoanResponse](ctx, c, "list loans", http.MethodGet, memberPath(memberID, "loans"), nil, nil)
}

func (c *Client) SubmitPayment(ctx context.Context, memberID, loanID string, req dto.PaymentRequest) (dto.PaymentResponse, error) {
	return call[dto.PaymentResponse](ctx, c, "submit payment", http.MethodPost, memberPath(memberID, "loans", loanID, "payments"), req, nil)
}

func (c *Client) ListPayments(ctx context.Context, memberID, loanID string) ([]dto.PaymentResponse, error) {
	return call[[]dto.PaymentResponse](ctx, c, "list payments", http.MethodGet, memberPath(memberID, "loans", loanID, "payments"), nil, nil)
}

// ===== Bank accounts =====

func (c *Client) ListBankAccounts(ctx context.Context, memberID string) ([]dto.BankAccountResponse, error) {
	return call[[]dto.BankAccountResponse](ctx, c, "list bank accounts", http.MethodGet, memberPath(memberID, "bank-accounts"), nil, nil)
}

func (c *Client) AddBankAccount(ctx context.Context, memberID string, req dto.BankAccountInput) (dto.BankAccountResponse, error) {
	return call[dto.BankAccountResponse](ctx, c, "add bank account", http.MethodPost, memberPath(memberID, "bank-accounts"), req, nil)
}

func (c *Client) UpdateBankAccount(ctx context.Context, memberID, accountID string, req dto.BankAccountInput) (dto.BankAccountResponse, error) {
	return call[dto.BankAccountResponse](ctx, c, "update bank account", http.MethodPut, memberPath(memberID, "bank-accounts", accountID), req, nil)
}

func (c *Client) DeleteBankAccount(ctx context.Context, memberID, accountID string) error {
	_, err := call[struct{}](ctx, c, "delete bank account", http.MethodDelete, memberPath(memberID, "bank-accounts", accountID), nil, nil)
	return err
}

// SetPrimaryBankAccount returns the member's accounts after the change.
func (c *Client) SetPrimaryBankAccount(ctx context.Context, memberID, accountID string) ([]dto.BankAccountResponse, error) {
	return call[[]dto.BankAccountResponse](ctx, c, "set primary bank account", http.MethodPost, memberPath(memberID, "bank-accounts", accountID, "primary"), nil, nil)
}
