package repository

import (
	"context"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/models"
)

// LedgerRepository records deposits and settled withdrawals and can
// replay them into the vault's starting state.
type LedgerRepository interface {
	RecordDeposit(ctx context.Context, record *models.DepositRecord) error
	RecordWithdrawal(ctx context.Context, record *models.WithdrawalRecord) error
	// LoadState derives (balance, totalWithdrawn-by-recipient) from the
	// append-only tables: sum of deposits minus sum of withdrawals.
	LoadState(ctx context.Context) (*big.Int, map[string]*big.Int, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a gorm-backed LedgerRepository.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) RecordDeposit(ctx context.Context, record *models.DepositRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *ledgerRepository) RecordWithdrawal(ctx context.Context, record *models.WithdrawalRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *ledgerRepository) LoadState(ctx context.Context) (*big.Int, map[string]*big.Int, error) {
	balance := new(big.Int)
	totals := make(map[string]*big.Int)

	var deposits []models.DepositRecord
	if err := r.db.WithContext(ctx).Find(&deposits).Error; err != nil {
		return nil, nil, err
	}
	for _, d := range deposits {
		amount, ok := new(big.Int).SetString(d.Amount, 10)
		if !ok {
			return nil, nil, fmt.Errorf("corrupt deposit amount %q (id=%d)", d.Amount, d.ID)
		}
		balance.Add(balance, amount)
	}

	var withdrawals []models.WithdrawalRecord
	if err := r.db.WithContext(ctx).Find(&withdrawals).Error; err != nil {
		return nil, nil, err
	}
	for _, w := range withdrawals {
		amount, ok := new(big.Int).SetString(w.Amount, 10)
		if !ok {
			return nil, nil, fmt.Errorf("corrupt withdrawal amount %q (id=%d)", w.Amount, w.ID)
		}
		balance.Sub(balance, amount)
		total, ok := totals[w.Recipient]
		if !ok {
			total = new(big.Int)
			totals[w.Recipient] = total
		}
		total.Add(total, amount)
	}

	if balance.Sign() < 0 {
		return nil, nil, fmt.Errorf("ledger replay produced negative balance %s", balance)
	}
	return balance, totals, nil
}
