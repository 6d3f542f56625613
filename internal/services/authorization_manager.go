// Package services implements the two custody components: the
// AuthorizationManager, which owns the notion of a valid unused
// permission, and the CustodyVault, which owns the funds. The vault
// depends on the manager, never the other way around.
package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/metrics"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/models"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/repository"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/types"
)

// ChainIDFunc reports the network id observed at call time. The manager
// re-reads it on every verification so an authorization is bound to the
// network it is redeemed on, not merely the one it was minted on.
type ChainIDFunc func() *big.Int

// AuditPublisher receives append-only audit records. Publication is an
// observable side channel; the protocol never reads it back.
type AuditPublisher interface {
	PublishAuthorizationUsed(ctx context.Context, digest common.Hash, vault, recipient common.Address, amount *big.Int)
	PublishDeposited(ctx context.Context, from common.Address, amount *big.Int)
	PublishWithdrawn(ctx context.Context, recipient common.Address, amount *big.Int)
}

// AuthorizationManager validates and consumes one-time withdrawal
// authorizations signed by a single fixed signer. It has no side
// effects beyond its own state and audit emission; it never moves
// funds.
type AuthorizationManager struct {
	mu sync.Mutex

	signer          common.Address
	domain          types.DomainContext
	domainSeparator common.Hash
	chainID         ChainIDFunc
	consumed        map[common.Hash]struct{}
	initialized     bool

	authRepo repository.AuthorizationRepository // optional durable mirror
	audit    AuditPublisher                     // optional
	logger   *logrus.Logger
}

// NewAuthorizationManager creates a manager accepting signatures from
// signer only. The domain separator is derived once from (name,
// version, current chain id, self) and stored for the component's
// lifetime.
func NewAuthorizationManager(signer common.Address, name, version string, self common.Address, chainID ChainIDFunc, logger *logrus.Logger) (*AuthorizationManager, error) {
	if signer == (common.Address{}) {
		return nil, ErrInvalidSigner
	}
	if chainID == nil {
		return nil, fmt.Errorf("chain id source is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	domain := types.DomainContext{
		Name:              name,
		Version:           version,
		ChainID:           chainID(),
		VerifyingContract: self,
	}

	return &AuthorizationManager{
		signer:          signer,
		domain:          domain,
		domainSeparator: types.DomainSeparator(domain),
		chainID:         chainID,
		consumed:        make(map[common.Hash]struct{}),
		initialized:     true,
		logger:          logger,
	}, nil
}

// SetRepository attaches the durable consumed-set mirror. Without it
// the consumed set lives in memory only.
func (m *AuthorizationManager) SetRepository(repo repository.AuthorizationRepository) {
	m.authRepo = repo
}

// SetAuditPublisher attaches the audit event sink.
func (m *AuthorizationManager) SetAuditPublisher(audit AuditPublisher) {
	m.audit = audit
}

// RestoreConsumed seeds the in-memory consumed set from storage. Called
// once during wiring, before the component starts serving.
func (m *AuthorizationManager) RestoreConsumed(digests []common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range digests {
		m.consumed[d] = struct{}{}
	}
}

// VerifyAndConsume checks a withdrawal authorization and, if valid,
// burns it. Consumption happens strictly before any value transfer
// occurs anywhere in the system. Returns the authorization digest so
// the caller can reference (or roll back) the consumption.
func (m *AuthorizationManager) VerifyAndConsume(ctx context.Context, vault, recipient common.Address, amount, nonce *big.Int, sig []byte) (common.Hash, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req := types.WithdrawRequest{
		Vault:     vault,
		Recipient: recipient,
		Amount:    amount,
		Nonce:     nonce,
		ChainID:   m.chainID(),
	}
	digest := types.AuthorizationDigest(m.domainSeparator, req)

	if _, used := m.consumed[digest]; used {
		metrics.AuthorizationFailures.WithLabelValues("already_used").Inc()
		return common.Hash{}, ErrAlreadyUsed
	}

	normalized, err := types.NormalizeV(sig)
	if err != nil {
		metrics.AuthorizationFailures.WithLabelValues("invalid_signature").Inc()
		return common.Hash{}, ErrInvalidSignature
	}
	recovered, err := types.RecoverSigner(digest, normalized)
	if err != nil || recovered == (common.Address{}) || recovered != m.signer {
		if err != nil {
			m.logger.WithFields(logrus.Fields{
				"digest": digest.Hex(),
				"error":  err.Error(),
			}).Debug("signature recovery rejected")
		}
		metrics.AuthorizationFailures.WithLabelValues("invalid_signature").Inc()
		return common.Hash{}, ErrInvalidSignature
	}

	if m.authRepo != nil {
		record := &models.ConsumedAuthorization{
			Digest:    digest.Hex(),
			Vault:     vault.Hex(),
			Recipient: recipient.Hex(),
			Amount:    amount.String(),
			Nonce:     nonce.String(),
		}
		if err := m.authRepo.MarkConsumed(ctx, record); err != nil {
			return common.Hash{}, fmt.Errorf("failed to persist consumed authorization: %w", err)
		}
	}
	m.consumed[digest] = struct{}{}

	metrics.AuthorizationsConsumed.Inc()
	m.logger.WithFields(logrus.Fields{
		"digest":    digest.Hex(),
		"vault":     vault.Hex(),
		"recipient": recipient.Hex(),
		"amount":    amount.String(),
	}).Info("authorization consumed")

	if m.audit != nil {
		m.audit.PublishAuthorizationUsed(ctx, digest, vault, recipient, new(big.Int).Set(amount))
	}
	return digest, nil
}

// Release undoes a consumption whose enclosing withdrawal did not
// complete (the settlement leg was rejected). It exists solely for that
// rollback path: an operation that aborted must leave no observable
// effect, so the digest goes back to unseen.
func (m *AuthorizationManager) Release(ctx context.Context, digest common.Hash) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.consumed, digest)
	if m.authRepo != nil {
		if err := m.authRepo.Release(ctx, digest.Hex()); err != nil {
			m.logger.WithFields(logrus.Fields{
				"digest": digest.Hex(),
				"error":  err.Error(),
			}).Error("failed to release consumed authorization record")
		}
	}
	m.logger.WithField("digest", digest.Hex()).Warn("authorization released after failed settlement")
}

// IsConsumed reports whether digest has been redeemed.
func (m *AuthorizationManager) IsConsumed(digest common.Hash) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, used := m.consumed[digest]
	return used
}

// ConsumedCount returns the size of the consumed set.
func (m *AuthorizationManager) ConsumedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.consumed)
}

// Initialized reports the one-way construction latch.
func (m *AuthorizationManager) Initialized() bool {
	return m.initialized
}

// Signer returns the sole identity whose signatures are accepted.
func (m *AuthorizationManager) Signer() common.Address {
	return m.signer
}

// DomainSeparator returns the stored domain separator.
func (m *AuthorizationManager) DomainSeparator() common.Hash {
	return m.domainSeparator
}

// Domain returns the immutable signing domain.
func (m *AuthorizationManager) Domain() types.DomainContext {
	return m.domain
}
