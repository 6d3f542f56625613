package events

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/config"
)

func newStreamOnlyPublisher(t *testing.T) (*Publisher, <-chan []byte) {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	stream := NewStream()
	pub, err := NewPublisher(config.NATSConfig{}, stream, logger)
	require.NoError(t, err)
	t.Cleanup(pub.Close)

	ch, cancel := stream.Subscribe()
	t.Cleanup(cancel)
	return pub, ch
}

func receiveEnvelope(t *testing.T, ch <-chan []byte) Envelope {
	t.Helper()
	select {
	case payload := <-ch:
		var env Envelope
		require.NoError(t, json.Unmarshal(payload, &env))
		return env
	default:
		t.Fatal("no event broadcast")
		return Envelope{}
	}
}

func TestPublishDeposited(t *testing.T) {
	pub, ch := newStreamOnlyPublisher(t)

	from := common.HexToAddress("0x00000000000000000000000000000000000000d0")
	pub.PublishDeposited(context.Background(), from, big.NewInt(10))

	env := receiveEnvelope(t, ch)
	require.Equal(t, "Deposited", env.Type)
	require.NotEmpty(t, env.ID)

	data := env.Data.(map[string]interface{})
	require.Equal(t, from.Hex(), data["from"])
	require.Equal(t, "10", data["amount"])
}

func TestPublishWithdrawn(t *testing.T) {
	pub, ch := newStreamOnlyPublisher(t)

	to := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	pub.PublishWithdrawn(context.Background(), to, big.NewInt(1))

	env := receiveEnvelope(t, ch)
	require.Equal(t, "Withdrawn", env.Type)
	data := env.Data.(map[string]interface{})
	require.Equal(t, to.Hex(), data["to"])
	require.Equal(t, "1", data["amount"])
}

func TestPublishAuthorizationUsed(t *testing.T) {
	pub, ch := newStreamOnlyPublisher(t)

	digest := common.HexToHash("0x0102")
	vault := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	recipient := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	pub.PublishAuthorizationUsed(context.Background(), digest, vault, recipient, big.NewInt(5))

	env := receiveEnvelope(t, ch)
	require.Equal(t, "AuthorizationUsed", env.Type)
	data := env.Data.(map[string]interface{})
	require.Equal(t, digest.Hex(), data["digest"])
	require.Equal(t, vault.Hex(), data["vault"])
	require.Equal(t, recipient.Hex(), data["recipient"])
	require.Equal(t, "5", data["amount"])
}
