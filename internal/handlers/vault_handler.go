// Package handlers exposes the custody operations over HTTP. The
// transport is an opaque call channel: every protocol decision happens
// in the services layer, and protocol error messages pass through
// verbatim.
package handlers

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/services"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/types"
)

// VaultHandler serves the deposit/withdraw surface of the custody
// vault.
type VaultHandler struct {
	vault  *services.CustodyVault
	auth   *services.AuthorizationManager
	logger *logrus.Logger
}

// NewVaultHandler creates the handler.
func NewVaultHandler(vault *services.CustodyVault, auth *services.AuthorizationManager, logger *logrus.Logger) *VaultHandler {
	return &VaultHandler{vault: vault, auth: auth, logger: logger}
}

// DepositRequest is the POST /api/vault/deposit body.
type DepositRequest struct {
	From   string `json:"from" binding:"required"`
	Amount string `json:"amount" binding:"required"` // decimal, smallest unit
	TxRef  string `json:"tx_ref"`
}

// WithdrawRequest is the POST /api/vault/withdraw body.
type WithdrawRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Amount    string `json:"amount" binding:"required"` // decimal, smallest unit
	Nonce     string `json:"nonce" binding:"required"`
	Signature string `json:"signature" binding:"required"` // 65-byte hex, r‖s‖v
}

// Deposit credits the vault.
// POST /api/vault/deposit
func (h *VaultHandler) Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !common.IsHexAddress(req.From) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from address", "received": req.From})
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount format", "received": req.Amount})
		return
	}

	balance, err := h.vault.Deposit(c.Request.Context(), common.HexToAddress(req.From), amount, req.TxRef)
	if err != nil {
		h.writeProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": balance.String(),
	})
}

// Withdraw redeems a signed authorization.
// POST /api/vault/withdraw
func (h *VaultHandler) Withdraw(c *gin.Context) {
	var req WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if !common.IsHexAddress(req.Recipient) {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidRecipient.Error(), "received": req.Recipient})
		return
	}
	amount, ok := new(big.Int).SetString(req.Amount, 10)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount format", "received": req.Amount})
		return
	}
	nonce, ok := new(big.Int).SetString(req.Nonce, 10)
	if !ok || nonce.Sign() < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nonce format", "received": req.Nonce})
		return
	}
	sig, err := types.ParseSignature(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidSignature.Error(), "details": err.Error()})
		return
	}

	digest, balance, err := h.vault.Withdraw(c.Request.Context(), common.HexToAddress(req.Recipient), amount, nonce, sig)
	if err != nil {
		h.writeProtocolError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"digest":  digest.Hex(),
		"balance": balance.String(),
	})
}

// GetTotalWithdrawn reads the per-recipient accounting counter.
// GET /api/vault/withdrawn/:recipient
func (h *VaultHandler) GetTotalWithdrawn(c *gin.Context) {
	recipient := c.Param("recipient")
	if !common.IsHexAddress(recipient) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipient address", "received": recipient})
		return
	}

	total := h.vault.TotalWithdrawn(common.HexToAddress(recipient))
	c.JSON(http.StatusOK, gin.H{
		"recipient":       common.HexToAddress(recipient).Hex(),
		"total_withdrawn": total.String(),
	})
}

// GetStatus reports both components' initialization latches and the
// observable vault state.
// GET /api/vault/status
func (h *VaultHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"vault": gin.H{
			"initialized": h.vault.Initialized(),
			"address":     h.vault.Address().Hex(),
			"balance":     h.vault.Balance().String(),
		},
		"auth_manager": gin.H{
			"initialized":      h.auth.Initialized(),
			"signer":           h.auth.Signer().Hex(),
			"domain_separator": h.auth.DomainSeparator().Hex(),
			"consumed_count":   h.auth.ConsumedCount(),
		},
	})
}

// writeProtocolError maps the protocol failure taxonomy onto HTTP
// status codes, keeping the message text untouched.
func (h *VaultHandler) writeProtocolError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrZeroDeposit),
		errors.Is(err, services.ErrInvalidRecipient),
		errors.Is(err, services.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrAlreadyUsed):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidSignature),
		errors.Is(err, services.ErrAuthorizationFailed):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrTransferFailed):
		status = http.StatusBadGateway
	default:
		h.logger.WithError(err).Error("withdrawal failed with internal error")
		c.JSON(status, gin.H{"error": "Internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
