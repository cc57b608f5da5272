package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/enaya12q/smartlabs/internal/models"
	"github.com/enaya12q/smartlabs/internal/repository"
)

// storageScale mirrors the NUMERIC(20,8) earnings column: every balance
// write rounds to it, like a Postgres assignment would.
const storageScale = 8

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]models.User

	failCredit error
}

func newFakeUsers(seed ...models.User) *fakeUsers {
	f := &fakeUsers{users: map[string]models.User{}}
	for _, u := range seed {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.ReferralCode == "" {
		u.ReferralCode = models.ReferralCodeFor(u.TelegramID)
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByTelegramID(_ context.Context, tid int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.TelegramID == tid {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByReferralCode(_ context.Context, code string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ReferralCode == code {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

func (f *fakeUsers) UpdateIdentity(_ context.Context, u models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.Username = u.Username
	cur.PhotoURL = u.PhotoURL
	cur.AuthDate = u.AuthDate
	f.users[u.ID] = cur
	return nil
}

func (f *fakeUsers) RecordAdView(_ context.Context, userID string, reward, bonus decimal.Decimal, bonusEvery int64) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	u.AdsViewed++
	u.Earnings = u.Earnings.Add(reward)
	if u.AdsViewed%bonusEvery == 0 {
		u.Earnings = u.Earnings.Add(bonus)
	}
	u.Earnings = u.Earnings.Round(storageScale)
	f.users[userID] = u
	return u, nil
}

func (f *fakeUsers) CreditEarnings(_ context.Context, userID string, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCredit != nil {
		return f.failCredit
	}
	u, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.Earnings = u.Earnings.Add(amount).Round(storageScale)
	f.users[userID] = u
	return nil
}

func (f *fakeUsers) Search(_ context.Context, term string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeWithdrawals struct {
	mu          sync.Mutex
	users       *fakeUsers
	withdrawals map[string]models.Withdrawal
}

func newFakeWithdrawals(users *fakeUsers) *fakeWithdrawals {
	return &fakeWithdrawals{users: users, withdrawals: map[string]models.Withdrawal{}}
}

func (f *fakeWithdrawals) CreateFromBalance(ctx context.Context, userID, wallet string) (models.Withdrawal, error) {
	u, err := f.users.GetByID(ctx, userID)
	if err != nil {
		return models.Withdrawal{}, err
	}
	if !u.Earnings.IsPositive() {
		return models.Withdrawal{}, repository.ErrNothingToWithdraw
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	w := models.Withdrawal{
		ID:               uuid.NewString(),
		UserID:           userID,
		Username:         u.Username,
		Amount:           u.Earnings,
		TonWalletAddress: wallet,
		Status:           models.WithdrawalPending,
	}
	f.withdrawals[w.ID] = w

	f.users.mu.Lock()
	u.Earnings = decimal.Zero
	f.users.users[userID] = u
	f.users.mu.Unlock()
	return w, nil
}

func (f *fakeWithdrawals) GetByID(_ context.Context, id string) (models.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.withdrawals[id]
	if !ok {
		return models.Withdrawal{}, repository.ErrNotFound
	}
	return w, nil
}

func (f *fakeWithdrawals) SetStatus(_ context.Context, id string, status models.WithdrawalStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.withdrawals[id]
	if !ok {
		return false, nil
	}
	if w.Status != models.WithdrawalPending {
		return false, nil
	}
	w.Status = status
	f.withdrawals[id] = w
	return true, nil
}

func (f *fakeWithdrawals) Search(_ context.Context, term string) ([]models.Withdrawal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Withdrawal
	for _, w := range f.withdrawals {
		out = append(out, w)
	}
	return out, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (f *fakeAudit) Create(_ context.Context, l models.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, l)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}
