package types

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

var (
	testDomain = DomainContext{
		Name:              "SecureVaultAuth",
		Version:           "1",
		ChainID:           big.NewInt(31337),
		VerifyingContract: common.HexToAddress("0x00000000000000000000000000000000000000aa"),
	}
	testRequest = WithdrawRequest{
		Vault:     common.HexToAddress("0x00000000000000000000000000000000000000bb"),
		Recipient: common.HexToAddress("0x00000000000000000000000000000000000000cc"),
		Amount:    big.NewInt(1),
		Nonce:     big.NewInt(1),
		ChainID:   big.NewInt(31337),
	}
)

// keccak is an independent Keccak-256 built on x/crypto, deliberately
// not sharing any code with the production digest path.
func keccak(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

func pad(b []byte) []byte {
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

// TestDigestCrossImplementation rebuilds the whole scheme from the type
// strings with a second hash implementation and requires byte-identical
// output, which is what external signer tooling depends on.
func TestDigestCrossImplementation(t *testing.T) {
	domainTypehash := keccak([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	withdrawTypehash := keccak([]byte("Withdraw(address vault,address recipient,uint256 amount,uint256 nonce,uint256 chainId)"))

	wantSeparator := keccak(
		domainTypehash,
		keccak([]byte(testDomain.Name)),
		keccak([]byte(testDomain.Version)),
		pad(testDomain.ChainID.Bytes()),
		pad(testDomain.VerifyingContract.Bytes()),
	)
	gotSeparator := DomainSeparator(testDomain)
	require.Equal(t, wantSeparator, gotSeparator.Bytes())

	wantStruct := keccak(
		withdrawTypehash,
		pad(testRequest.Vault.Bytes()),
		pad(testRequest.Recipient.Bytes()),
		pad(testRequest.Amount.Bytes()),
		pad(testRequest.Nonce.Bytes()),
		pad(testRequest.ChainID.Bytes()),
	)
	require.Equal(t, wantStruct, StructHash(testRequest).Bytes())

	wantDigest := keccak([]byte{0x19, 0x01}, wantSeparator, wantStruct)
	require.Equal(t, wantDigest, AuthorizationDigest(gotSeparator, testRequest).Bytes())
}

func TestDigestDeterministic(t *testing.T) {
	sep := DomainSeparator(testDomain)
	require.Equal(t, AuthorizationDigest(sep, testRequest), AuthorizationDigest(sep, testRequest))
}

// Any changed field must produce an independent authorization.
func TestDigestFieldSensitivity(t *testing.T) {
	sep := DomainSeparator(testDomain)
	base := AuthorizationDigest(sep, testRequest)

	mutations := map[string]WithdrawRequest{
		"vault":     {Vault: common.HexToAddress("0x01"), Recipient: testRequest.Recipient, Amount: testRequest.Amount, Nonce: testRequest.Nonce, ChainID: testRequest.ChainID},
		"recipient": {Vault: testRequest.Vault, Recipient: common.HexToAddress("0x01"), Amount: testRequest.Amount, Nonce: testRequest.Nonce, ChainID: testRequest.ChainID},
		"amount":    {Vault: testRequest.Vault, Recipient: testRequest.Recipient, Amount: big.NewInt(2), Nonce: testRequest.Nonce, ChainID: testRequest.ChainID},
		"nonce":     {Vault: testRequest.Vault, Recipient: testRequest.Recipient, Amount: testRequest.Amount, Nonce: big.NewInt(2), ChainID: testRequest.ChainID},
		"chainId":   {Vault: testRequest.Vault, Recipient: testRequest.Recipient, Amount: testRequest.Amount, Nonce: testRequest.Nonce, ChainID: big.NewInt(1)},
	}
	for field, mutated := range mutations {
		require.NotEqual(t, base, AuthorizationDigest(sep, mutated), "mutating %s must change the digest", field)
	}
}

func TestDomainSeparatorSensitivity(t *testing.T) {
	base := DomainSeparator(testDomain)

	mutations := map[string]DomainContext{
		"name":     {Name: "OtherProtocol", Version: testDomain.Version, ChainID: testDomain.ChainID, VerifyingContract: testDomain.VerifyingContract},
		"version":  {Name: testDomain.Name, Version: "2", ChainID: testDomain.ChainID, VerifyingContract: testDomain.VerifyingContract},
		"chainId":  {Name: testDomain.Name, Version: testDomain.Version, ChainID: big.NewInt(1), VerifyingContract: testDomain.VerifyingContract},
		"contract": {Name: testDomain.Name, Version: testDomain.Version, ChainID: testDomain.ChainID, VerifyingContract: common.HexToAddress("0x01")},
	}
	for field, mutated := range mutations {
		require.NotEqual(t, base, DomainSeparator(mutated), "mutating %s must change the separator", field)
	}
}

func TestU256NilAmount(t *testing.T) {
	// A nil big.Int encodes as the zero word rather than panicking.
	require.Equal(t, make([]byte, 32), u256(nil))
}
