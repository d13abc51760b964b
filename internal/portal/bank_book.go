package portal

import (
	"context"
	"sync"

	"github.com/SundayYogurt/lending_portal/internal/dto"
)

// BankBook is the local list of a member's bank accounts. At most one
// account is primary at any time.
type BankBook struct {
	accounts []dto.BankAccountResponse
}

func NewBankBook(accounts []dto.BankAccountResponse) *BankBook {
	b := &BankBook{}
	for _, a := range accounts {
		b.Add(a)
	}
	return b
}

func (b *BankBook) Accounts() []dto.BankAccountResponse {
	out := make([]dto.BankAccountResponse, len(b.accounts))
	copy(out, b.accounts)
	return out
}

func (b *BankBook) Primary() (dto.BankAccountResponse, bool) {
	for _, a := range b.accounts {
		if a.IsPrimary {
			return a, true
		}
	}
	return dto.BankAccountResponse{}, false
}

// Add appends an account. The first account becomes primary, and a
// primary newcomer demotes the others.
func (b *BankBook) Add(a dto.BankAccountResponse) {
	if len(b.accounts) == 0 {
		a.IsPrimary = true
	}
	if a.IsPrimary {
		b.clearPrimary()
	}
	b.accounts = append(b.accounts, a)
}

// SetPrimary marks id primary and unsets every other account.
func (b *BankBook) SetPrimary(id string) error {
	idx := b.index(id)
	if idx < 0 {
		return &NotFoundError{Op: "set primary bank account", Msg: "no bank account " + id}
	}
	b.clearPrimary()
	b.accounts[idx].IsPrimary = true
	return nil
}

// Remove deletes id. Removing the primary promotes the oldest remaining
// account.
func (b *BankBook) Remove(id string) error {
	idx := b.index(id)
	if idx < 0 {
		return &NotFoundError{Op: "remove bank account", Msg: "no bank account " + id}
	}
	wasPrimary := b.accounts[idx].IsPrimary
	b.accounts = append(b.accounts[:idx], b.accounts[idx+1:]...)
	if wasPrimary && len(b.accounts) > 0 {
		b.accounts[0].IsPrimary = true
	}
	return nil
}

func (b *BankBook) replace(a dto.BankAccountResponse) {
	if idx := b.index(a.ID); idx >= 0 {
		a.IsPrimary = b.accounts[idx].IsPrimary
		b.accounts[idx] = a
	}
}

func (b *BankBook) clearPrimary() {
	for i := range b.accounts {
		b.accounts[i].IsPrimary = false
	}
}

func (b *BankBook) index(id string) int {
	for i := range b.accounts {
		if b.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

// BankAccounts keeps a BankBook in step with the server.
type BankAccounts struct {
	session *Session
	guard   submitGuard

	mu   sync.Mutex
	book *BankBook
}

func NewBankAccounts(session *Session) *BankAccounts {
	return &BankAccounts{session: session, book: NewBankBook(nil)}
}

// Accounts returns a snapshot of the local book.
func (b *BankAccounts) Accounts() []dto.BankAccountResponse {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.book.Accounts()
}

func (b *BankAccounts) Load(ctx context.Context) error {
	c, err := b.session.Client()
	if err != nil {
		return err
	}
	accounts, err := c.ListBankAccounts(ctx, b.session.MemberID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.book = NewBankBook(accounts)
	b.mu.Unlock()
	return nil
}

func (b *BankAccounts) Add(ctx context.Context, input dto.BankAccountInput) (dto.BankAccountResponse, error) {
	done, err := b.guard.begin()
	if err != nil {
		return dto.BankAccountResponse{}, err
	}
	defer done()

	c, err := b.session.Client()
	if err != nil {
		return dto.BankAccountResponse{}, err
	}
	account, err := c.AddBankAccount(ctx, b.session.MemberID, input)
	if err != nil {
		return dto.BankAccountResponse{}, err
	}

	b.mu.Lock()
	b.book.Add(account)
	b.mu.Unlock()
	return account, nil
}

func (b *BankAccounts) Update(ctx context.Context, accountID string, input dto.BankAccountInput) (dto.BankAccountResponse, error) {
	done, err := b.guard.begin()
	if err != nil {
		return dto.BankAccountResponse{}, err
	}
	defer done()

	c, err := b.session.Client()
	if err != nil {
		return dto.BankAccountResponse{}, err
	}
	account, err := c.UpdateBankAccount(ctx, b.session.MemberID, accountID, input)
	if err != nil {
		return dto.BankAccountResponse{}, err
	}

	b.mu.Lock()
	b.book.replace(account)
	b.mu.Unlock()
	return account, nil
}

func (b *BankAccounts) Remove(ctx context.Context, accountID string) error {
	done, err := b.guard.begin()
	if err != nil {
		return err
	}
	defer done()

	c, err := b.session.Client()
	if err != nil {
		return err
	}
	if err := c.DeleteBankAccount(ctx, b.session.MemberID, accountID); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.book.Remove(accountID)
}

// SetPrimary applies the change on the server and adopts the server's list.
func (b *BankAccounts) SetPrimary(ctx context.Context, accountID string) error {
	done, err := b.guard.begin()
	if err != nil {
		return err
	}
	defer done()

	c, err := b.session.Client()
	if err != nil {
		return err
	}
	accounts, err := c.SetPrimaryBankAccount(ctx, b.session.MemberID, accountID)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.book = NewBankBook(accounts)
	b.mu.Unlock()
	return nil
}
