package types

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength is the byte length of a recoverable secp256k1
// signature in r ‖ s ‖ v form.
const SignatureLength = 65

// ParseSignature decodes a 65-byte hex signature (with or without the
// 0x prefix). The recovery byte may be 0/1 or 27/28; it is normalized
// to 0/1 so the result can be fed to signature recovery directly.
func ParseSignature(s string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("signature is not valid hex: %w", err)
	}
	if len(raw) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(raw))
	}
	return NormalizeV(raw)
}

// NormalizeV maps an Ethereum-style recovery id (27/28) down to the
// 0/1 form. Any other value is rejected.
func NormalizeV(sig []byte) ([]byte, error) {
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("signature must be %d bytes, got %d", SignatureLength, len(sig))
	}
	out := make([]byte, SignatureLength)
	copy(out, sig)
	switch out[64] {
	case 0, 1:
	case 27, 28:
		out[64] -= 27
	default:
		return nil, fmt.Errorf("invalid recovery id %d", out[64])
	}
	return out, nil
}

// RecoverSigner derives the signing address from a digest and a
// normalized 65-byte signature. A signature that does not recover to a
// usable public key yields an error; callers must additionally reject
// the zero address.
func RecoverSigner(digest common.Hash, sig []byte) (common.Address, error) {
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("signature recovery failed: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
