// Package app wires the service graph together.
package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/clients"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/config"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/db"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/events"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/repository"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/services"
)

// ServiceContainer holds every constructed component.
type ServiceContainer struct {
	DB *gorm.DB

	AuthRepo   repository.AuthorizationRepository
	LedgerRepo repository.LedgerRepository

	Stream    *events.Stream
	Publisher *events.Publisher

	AuthManager *services.AuthorizationManager
	Vault       *services.CustodyVault
}

// InitializeContainer builds the full graph from cfg. The two custody
// components are constructed exactly once and restored from storage
// before anything can call them.
func InitializeContainer(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*ServiceContainer, error) {
	gdb, err := db.InitDB(cfg.Database.DSN, logger)
	if err != nil {
		return nil, err
	}

	authRepo := repository.NewAuthorizationRepository(gdb)
	ledgerRepo := repository.NewLedgerRepository(gdb)

	stream := events.NewStream()
	publisher, err := events.NewPublisher(cfg.NATS, stream, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	if !common.IsHexAddress(cfg.Vault.SignerAddress) {
		return nil, fmt.Errorf("invalid signer address %q", cfg.Vault.SignerAddress)
	}
	signer := common.HexToAddress(cfg.Vault.SignerAddress)
	managerAddr := common.HexToAddress(cfg.Vault.ManagerAddress)
	vaultAddr := common.HexToAddress(cfg.Vault.Address)
	ownerAddr := common.HexToAddress(cfg.Vault.OwnerAddress)

	chainID := func() *big.Int { return cfg.ChainID() }
	authManager, err := services.NewAuthorizationManager(
		signer, cfg.Domain.Name, cfg.Domain.Version, managerAddr, chainID, logger)
	if err != nil {
		return nil, err
	}
	authManager.SetRepository(authRepo)
	authManager.SetAuditPublisher(publisher)

	consumed, err := authRepo.LoadConsumed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load consumed authorizations: %w", err)
	}
	authManager.RestoreConsumed(consumed)
	logger.WithField("count", len(consumed)).Info("restored consumed authorization set")

	settlement := clients.NewSettlementClient(cfg.Settlement, logger)
	vault, err := services.NewCustodyVault(authManager, vaultAddr, ownerAddr, settlement, logger)
	if err != nil {
		return nil, err
	}
	vault.SetLedgerRepository(ledgerRepo)
	vault.SetAuditPublisher(publisher)

	balance, totals, err := ledgerRepo.LoadState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to replay ledger: %w", err)
	}
	restored := make(map[common.Address]*big.Int, len(totals))
	for addr, total := range totals {
		restored[common.HexToAddress(addr)] = total
	}
	vault.RestoreLedger(balance, restored)
	logger.WithFields(logrus.Fields{
		"balance":    balance.String(),
		"recipients": len(restored),
	}).Info("restored vault ledger")

	return &ServiceContainer{
		DB:          gdb,
		AuthRepo:    authRepo,
		LedgerRepo:  ledgerRepo,
		Stream:      stream,
		Publisher:   publisher,
		AuthManager: authManager,
		Vault:       vault,
	}, nil
}

// Close releases external connections.
func (c *ServiceContainer) Close() {
	if c.Publisher != nil {
		c.Publisher.Close()
	}
	if c.DB != nil {
		if sqlDB, err := c.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
