package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Type strings follow EIP-712. They must stay byte-identical to the
// strings used by external signer tooling or every digest diverges.
const (
	EIP712DomainType = "EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"
	WithdrawType     = "Withdraw(address vault,address recipient,uint256 amount,uint256 nonce,uint256 chainId)"
)

var (
	eip712DomainTypehash = crypto.Keccak256Hash([]byte(EIP712DomainType))
	withdrawTypehash     = crypto.Keccak256Hash([]byte(WithdrawType))
)

// pad32 left-pads a value to one 32-byte ABI word.
func pad32(b []byte) []byte {
	return common.LeftPadBytes(b, 32)
}

func u256(x *big.Int) []byte {
	if x == nil {
		x = new(big.Int)
	}
	return pad32(x.Bytes())
}

// DomainSeparator derives the EIP-712 domain separator for ctx:
// keccak256(typehash ‖ keccak256(name) ‖ keccak256(version) ‖ chainId ‖
// verifyingContract).
func DomainSeparator(ctx DomainContext) common.Hash {
	return crypto.Keccak256Hash(
		eip712DomainTypehash.Bytes(),
		crypto.Keccak256([]byte(ctx.Name)),
		crypto.Keccak256([]byte(ctx.Version)),
		u256(ctx.ChainID),
		pad32(ctx.VerifyingContract.Bytes()),
	)
}

// StructHash hashes the type-tagged encoding of the five withdrawal
// fields.
func StructHash(req WithdrawRequest) common.Hash {
	return crypto.Keccak256Hash(
		withdrawTypehash.Bytes(),
		pad32(req.Vault.Bytes()),
		pad32(req.Recipient.Bytes()),
		u256(req.Amount),
		u256(req.Nonce),
		u256(req.ChainID),
	)
}

// AuthorizationDigest combines the domain separator and the struct hash
// through the fixed two-part scheme: keccak256(0x19 0x01 ‖ domain ‖
// structHash). The result is the unit of replay protection.
func AuthorizationDigest(domainSeparator common.Hash, req WithdrawRequest) common.Hash {
	return crypto.Keccak256Hash(
		[]byte{0x19, 0x01},
		domainSeparator.Bytes(),
		StructHash(req).Bytes(),
	)
}
