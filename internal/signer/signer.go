// Package signer is a local secp256k1 signer for authorization
// digests. In production the signing key lives with an external party;
// this implementation backs the CLI tooling and tests.
package signer

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/types"
)

// LocalSigner signs authorization digests with an in-memory private
// key.
type LocalSigner struct {
	key *ecdsa.PrivateKey
}

// NewLocalSigner wraps an existing key.
func NewLocalSigner(key *ecdsa.PrivateKey) *LocalSigner {
	return &LocalSigner{key: key}
}

// FromHex parses a hex-encoded private key (0x prefix optional).
func FromHex(hexKey string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &LocalSigner{key: key}, nil
}

// Generate creates a signer with a fresh random key.
func Generate() (*LocalSigner, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	return &LocalSigner{key: key}, nil
}

// Address returns the signer identity.
func (s *LocalSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.key.PublicKey)
}

// SignDigest produces a 65-byte r ‖ s ‖ v signature over digest with v
// in Ethereum form (27/28).
func (s *LocalSigner) SignDigest(digest common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// SignWithdrawRequest builds the authorization digest for req under
// domain and signs it.
func (s *LocalSigner) SignWithdrawRequest(domain types.DomainContext, req types.WithdrawRequest) (common.Hash, []byte, error) {
	digest := types.AuthorizationDigest(types.DomainSeparator(domain), req)
	sig, err := s.SignDigest(digest)
	if err != nil {
		return common.Hash{}, nil, err
	}
	return digest, sig, nil
}
