package services

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/models"
)

// memoryAuthRepo is an in-memory AuthorizationRepository used to verify
// the write-through and rollback paths without a database.
type memoryAuthRepo struct {
	mu      sync.Mutex
	records map[string]models.ConsumedAuthorization
	markErr error
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{records: make(map[string]models.ConsumedAuthorization)}
}

func (r *memoryAuthRepo) LoadConsumed(ctx context.Context) ([]common.Hash, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]common.Hash, 0, len(r.records))
	for digest := range r.records {
		out = append(out, common.HexToHash(digest))
	}
	return out, nil
}

func (r *memoryAuthRepo) MarkConsumed(ctx context.Context, record *models.ConsumedAuthorization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	if _, exists := r.records[record.Digest]; !exists {
		r.records[record.Digest] = *record
	}
	return nil
}

func (r *memoryAuthRepo) Release(ctx context.Context, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, digest)
	return nil
}

func (r *memoryAuthRepo) List(ctx context.Context, page, pageSize int) ([]models.ConsumedAuthorization, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.ConsumedAuthorization, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *memoryAuthRepo) has(digest common.Hash) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[digest.Hex()]
	return ok
}

// memoryLedgerRepo is an in-memory LedgerRepository.
type memoryLedgerRepo struct {
	mu          sync.Mutex
	deposits    []models.DepositRecord
	withdrawals []models.WithdrawalRecord
	depositErr  error
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{}
}

func (r *memoryLedgerRepo) RecordDeposit(ctx context.Context, record *models.DepositRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.depositErr != nil {
		return r.depositErr
	}
	r.deposits = append(r.deposits, *record)
	return nil
}

func (r *memoryLedgerRepo) RecordWithdrawal(ctx context.Context, record *models.WithdrawalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.withdrawals = append(r.withdrawals, *record)
	return nil
}

func (r *memoryLedgerRepo) LoadState(ctx context.Context) (*big.Int, map[string]*big.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := new(big.Int)
	totals := make(map[string]*big.Int)
	for _, d := range r.deposits {
		amount, _ := new(big.Int).SetString(d.Amount, 10)
		balance.Add(balance, amount)
	}
	for _, w := range r.withdrawals {
		amount, _ := new(big.Int).SetString(w.Amount, 10)
		balance.Sub(balance, amount)
		if totals[w.Recipient] == nil {
			totals[w.Recipient] = new(big.Int)
		}
		totals[w.Recipient].Add(totals[w.Recipient], amount)
	}
	return balance, totals, nil
}

// stubTransferer records settlement calls and can be told to reject
// them.
type stubTransferer struct {
	mu        sync.Mutex
	err       error
	calls     int
	recipient common.Address
	amount    *big.Int
}

func (t *stubTransferer) Transfer(ctx context.Context, recipient common.Address, amount *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls++
	t.recipient = recipient
	t.amount = new(big.Int).Set(amount)
	return t.err
}

func (t *stubTransferer) callCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// countingAudit counts audit emissions per event type.
type countingAudit struct {
	mu         sync.Mutex
	authUsed   int
	deposited  int
	withdrawn  int
	lastDigest common.Hash
}

func (a *countingAudit) PublishAuthorizationUsed(ctx context.Context, digest common.Hash, vault, recipient common.Address, amount *big.Int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.authUsed++
	a.lastDigest = digest
}

func (a *countingAudit) PublishDeposited(ctx context.Context, from common.Address, amount *big.Int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deposited++
}

func (a *countingAudit) PublishWithdrawn(ctx context.Context, recipient common.Address, amount *big.Int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.withdrawn++
}
