package devbackend

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryAccounts is an AccountRepository held in process memory.
type MemoryAccounts struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{accounts: make(map[string]*Account)}
}

func cloneAccount(a *Account) *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Grants = append(c.Grants[:0:0], a.Grants...)
	return &c
}

func (r *MemoryAccounts) Create(_ context.Context, account *Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, account.Email) {
			return nil, ErrAccountExists
		}
	}
	c := cloneAccount(account)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.accounts[c.ID] = c
	return cloneAccount(c), nil
}

func (r *MemoryAccounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return cloneAccount(a), nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *MemoryAccounts) FindByID(_ context.Context, id string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, ErrAccountNotFound
}

func (r *MemoryAccounts) FindByContactHandle(_ context.Context, handle string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.ContactHandle == handle || strings.EqualFold(a.Email, handle) {
			return cloneAccount(a), nil
		}
	}
	return nil, ErrAccountNotFound
}

func (r *MemoryAccounts) Update(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return ErrAccountNotFound
	}
	r.accounts[account.ID] = cloneAccount(account)
	return nil
}
