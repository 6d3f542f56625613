package clients

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *SettlementClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewSettlementClient(config.SettlementConfig{BaseURL: server.URL, Timeout: 2}, logger)
}

func TestTransferAcknowledged(t *testing.T) {
	var got transferRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transfers", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	})

	recipient := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	err := client.Transfer(context.Background(), recipient, big.NewInt(7))
	require.NoError(t, err)
	require.Equal(t, recipient.Hex(), got.Recipient)
	require.Equal(t, "7", got.Amount)
}

func TestTransferRejectedWithReason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(transferResponse{Error: "recipient blocked"})
	})

	err := client.Transfer(context.Background(), common.HexToAddress("0x01"), big.NewInt(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "recipient blocked")
}

func TestTransferRejectedWithoutBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	err := client.Transfer(context.Background(), common.HexToAddress("0x01"), big.NewInt(1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 500")
}

func TestTransferExecutorUnreachable(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	client := NewSettlementClient(config.SettlementConfig{BaseURL: "http://127.0.0.1:1", Timeout: 1}, logger)

	err := client.Transfer(context.Background(), common.HexToAddress("0x01"), big.NewInt(1))
	require.Error(t, err)
}
