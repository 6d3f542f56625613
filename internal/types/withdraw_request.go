// Package types holds the wire-level domain types of the custody
// protocol: the signed withdrawal message, the signing domain, and the
// digest scheme that binds them together.
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WithdrawRequest is the message an off-chain signer authorizes. Every
// field participates in the authorization digest; two requests that
// differ in any field are independent authorizations.
type WithdrawRequest struct {
	Vault     common.Address // custody vault the authorization is bound to
	Recipient common.Address
	Amount    *big.Int // strictly positive, smallest native unit
	Nonce     *big.Int // caller-chosen, uniqueness enforced via the digest
	ChainID   *big.Int
}

// DomainContext is the immutable signing domain of one protocol
// instance. It is fixed at construction and never changes afterwards.
type DomainContext struct {
	Name              string
	Version           string
	ChainID           *big.Int
	VerifyingContract common.Address
}
