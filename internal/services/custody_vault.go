package services

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/metrics"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/models"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/repository"
)

// Transferer performs the settlement leg of a withdrawal: moving value
// to the recipient. It is external and may run arbitrary code before
// returning, which is why the vault mutates its ledger first.
type Transferer interface {
	Transfer(ctx context.Context, recipient common.Address, amount *big.Int) error
}

// CustodyVault custodies a single-asset balance. Deposits are
// unrestricted (egress is the controlled direction, not ingress);
// withdrawals must be validated and consumed by the
// AuthorizationManager before any value moves.
type CustodyVault struct {
	mu sync.Mutex

	address        common.Address
	owner          common.Address // administrative provenance only
	auth           *AuthorizationManager
	transferer     Transferer
	balance        *big.Int
	totalWithdrawn map[common.Address]*big.Int
	initialized    bool

	ledgerRepo repository.LedgerRepository // optional durable ledger
	audit      AuditPublisher              // optional
	logger     *logrus.Logger
}

// NewCustodyVault creates a vault bound to exactly one
// AuthorizationManager for its whole lifetime.
func NewCustodyVault(auth *AuthorizationManager, address, owner common.Address, transferer Transferer, logger *logrus.Logger) (*CustodyVault, error) {
	if auth == nil {
		return nil, ErrInvalidAuthority
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &CustodyVault{
		address:        address,
		owner:          owner,
		auth:           auth,
		transferer:     transferer,
		balance:        new(big.Int),
		totalWithdrawn: make(map[common.Address]*big.Int),
		initialized:    true,
		logger:         logger,
	}, nil
}

// SetLedgerRepository attaches the durable deposit/withdrawal ledger.
func (v *CustodyVault) SetLedgerRepository(repo repository.LedgerRepository) {
	v.ledgerRepo = repo
}

// SetAuditPublisher attaches the audit event sink.
func (v *CustodyVault) SetAuditPublisher(audit AuditPublisher) {
	v.audit = audit
}

// RestoreLedger seeds balance and per-recipient totals from storage.
// Called once during wiring, before the component starts serving.
func (v *CustodyVault) RestoreLedger(balance *big.Int, totals map[common.Address]*big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if balance != nil {
		v.balance = new(big.Int).Set(balance)
	}
	for addr, total := range totals {
		v.totalWithdrawn[addr] = new(big.Int).Set(total)
	}
	metrics.VaultBalance.Set(bigToFloat(v.balance))
}

// Deposit credits amount to the vault balance. Any caller may deposit;
// the only check is that the amount is non-zero.
func (v *CustodyVault) Deposit(ctx context.Context, from common.Address, amount *big.Int, txRef string) (*big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrZeroDeposit
	}

	v.balance.Add(v.balance, amount)

	if v.ledgerRepo != nil {
		record := &models.DepositRecord{
			From:   from.Hex(),
			Amount: amount.String(),
			TxRef:  txRef,
		}
		if err := v.ledgerRepo.RecordDeposit(ctx, record); err != nil {
			// Whole operation aborts: undo the credit.
			v.balance.Sub(v.balance, amount)
			return nil, err
		}
	}

	metrics.DepositsTotal.Inc()
	metrics.VaultBalance.Set(bigToFloat(v.balance))
	v.logger.WithFields(logrus.Fields{
		"from":    from.Hex(),
		"amount":  amount.String(),
		"balance": v.balance.String(),
	}).Info("deposit accepted")

	if v.audit != nil {
		v.audit.PublishDeposited(ctx, from, new(big.Int).Set(amount))
	}
	return new(big.Int).Set(v.balance), nil
}

// Withdraw redeems a signed authorization and pays recipient. Ordering
// is checks, then effects, then the settlement interaction: the ledger
// already reflects the debit before external code runs, so a re-entrant
// attempt is stopped by the consumed digest or the reduced balance.
//
// Solvency is checked before the authorization is consumed; a valid
// signature presented against insufficient funds is not burned and can
// be retried once the vault is resupplied.
func (v *CustodyVault) Withdraw(ctx context.Context, recipient common.Address, amount, nonce *big.Int, sig []byte) (common.Hash, *big.Int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// Checks.
	if recipient == (common.Address{}) {
		metrics.WithdrawalFailures.WithLabelValues("invalid_recipient").Inc()
		return common.Hash{}, nil, ErrInvalidRecipient
	}
	if amount == nil || amount.Sign() <= 0 {
		metrics.WithdrawalFailures.WithLabelValues("invalid_amount").Inc()
		return common.Hash{}, nil, ErrInvalidAmount
	}
	if v.balance.Cmp(amount) < 0 {
		metrics.WithdrawalFailures.WithLabelValues("insufficient_balance").Inc()
		return common.Hash{}, nil, ErrInsufficientBalance
	}

	digest, err := v.auth.VerifyAndConsume(ctx, v.address, recipient, amount, nonce, sig)
	if err != nil {
		metrics.WithdrawalFailures.WithLabelValues("authorization").Inc()
		return common.Hash{}, nil, err
	}
	if digest == (common.Hash{}) {
		metrics.WithdrawalFailures.WithLabelValues("authorization").Inc()
		return common.Hash{}, nil, ErrAuthorizationFailed
	}

	// Effects.
	total, ok := v.totalWithdrawn[recipient]
	if !ok {
		total = new(big.Int)
		v.totalWithdrawn[recipient] = total
	}
	total.Add(total, amount)
	v.balance.Sub(v.balance, amount)

	// Interaction.
	if err := v.transferer.Transfer(ctx, recipient, amount); err != nil {
		// No partial-success state: undo the ledger effects and the
		// consumption together.
		total.Sub(total, amount)
		v.balance.Add(v.balance, amount)
		v.auth.Release(ctx, digest)
		metrics.WithdrawalFailures.WithLabelValues("transfer").Inc()
		v.logger.WithFields(logrus.Fields{
			"recipient": recipient.Hex(),
			"amount":    amount.String(),
			"digest":    digest.Hex(),
			"error":     err.Error(),
		}).Error("settlement rejected, withdrawal rolled back")
		return common.Hash{}, nil, ErrTransferFailed
	}

	if v.ledgerRepo != nil {
		record := &models.WithdrawalRecord{
			Recipient: recipient.Hex(),
			Amount:    amount.String(),
			Nonce:     nonce.String(),
			Digest:    digest.Hex(),
		}
		if err := v.ledgerRepo.RecordWithdrawal(ctx, record); err != nil {
			// Value already moved; the durable record is best effort
			// and reconciled against the consumed set offline.
			v.logger.WithFields(logrus.Fields{
				"digest": digest.Hex(),
				"error":  err.Error(),
			}).Error("failed to persist withdrawal record")
		}
	}

	metrics.WithdrawalsTotal.Inc()
	metrics.VaultBalance.Set(bigToFloat(v.balance))
	v.logger.WithFields(logrus.Fields{
		"recipient": recipient.Hex(),
		"amount":    amount.String(),
		"digest":    digest.Hex(),
		"balance":   v.balance.String(),
	}).Info("withdrawal settled")

	if v.audit != nil {
		v.audit.PublishWithdrawn(ctx, recipient, new(big.Int).Set(amount))
	}
	return digest, new(big.Int).Set(v.balance), nil
}

// Balance returns the current custodied balance.
func (v *CustodyVault) Balance() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.balance)
}

// TotalWithdrawn returns the cumulative amount paid to recipient. The
// counter is purely observational; it never gates a withdrawal.
func (v *CustodyVault) TotalWithdrawn(recipient common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if total, ok := v.totalWithdrawn[recipient]; ok {
		return new(big.Int).Set(total)
	}
	return new(big.Int)
}

// Initialized reports the one-way construction latch.
func (v *CustodyVault) Initialized() bool {
	return v.initialized
}

// Address returns the vault identity authorizations are bound to.
func (v *CustodyVault) Address() common.Address {
	return v.address
}

// Owner returns the administrative owner recorded at construction.
func (v *CustodyVault) Owner() common.Address {
	return v.owner
}

func bigToFloat(x *big.Int) float64 {
	f, _ := new(big.Float).SetInt(x).Float64()
	return f
}
