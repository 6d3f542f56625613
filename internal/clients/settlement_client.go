// Package clients holds thin HTTP clients for external collaborators.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/config"
)

// SettlementClient instructs the external settlement executor to move
// value to a recipient. It is the interaction step of a withdrawal: the
// vault treats any error from here as a rejection and rolls back.
type SettlementClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewSettlementClient creates a client for cfg.BaseURL.
func NewSettlementClient(cfg config.SettlementConfig, logger *logrus.Logger) *SettlementClient {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}
	return &SettlementClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type transferRequest struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type transferResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Transfer posts the transfer instruction and returns an error unless
// the executor acknowledges it.
func (c *SettlementClient) Transfer(ctx context.Context, recipient common.Address, amount *big.Int) error {
	body, err := json.Marshal(transferRequest{
		Recipient: recipient.Hex(),
		Amount:    amount.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode transfer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transfers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build transfer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("settlement executor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var tr transferResponse
		if json.Unmarshal(data, &tr) == nil && tr.Error != "" {
			return fmt.Errorf("settlement rejected transfer: %s", tr.Error)
		}
		return fmt.Errorf("settlement rejected transfer: status %d", resp.StatusCode)
	}

	c.logger.WithFields(logrus.Fields{
		"recipient": recipient.Hex(),
		"amount":    amount.String(),
	}).Debug("settlement transfer acknowledged")
	return nil
}
