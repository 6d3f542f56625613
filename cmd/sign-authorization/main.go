// Command sign-authorization mints a signed withdrawal authorization
// from a local private key. Development tooling: production signatures
// come from the external signing party.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/signer"
	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/types"
)

func main() {
	var (
		name      = flag.String("name", "SecureVaultAuth", "protocol name")
		version   = flag.String("version", "1", "protocol version")
		chainID   = flag.Int64("chain-id", 1, "network id")
		manager   = flag.String("manager", "", "authorization manager address")
		vault     = flag.String("vault", "", "custody vault address")
		recipient = flag.String("recipient", "", "withdrawal recipient address")
		amount    = flag.String("amount", "", "amount in smallest native units")
		nonce     = flag.String("nonce", "", "unique nonce")
	)
	flag.Parse()

	keyHex := os.Getenv("AUTH_SIGNER_KEY")
	if keyHex == "" {
		fatalf("AUTH_SIGNER_KEY environment variable is required")
	}
	for _, arg := range []struct{ name, value string }{
		{"-manager", *manager}, {"-vault", *vault}, {"-recipient", *recipient},
		{"-amount", *amount}, {"-nonce", *nonce},
	} {
		if arg.value == "" {
			fatalf("%s is required", arg.name)
		}
	}

	s, err := signer.FromHex(keyHex)
	if err != nil {
		fatalf("%v", err)
	}

	amountInt, ok := new(big.Int).SetString(*amount, 10)
	if !ok || amountInt.Sign() <= 0 {
		fatalf("invalid amount %q", *amount)
	}
	nonceInt, ok := new(big.Int).SetString(*nonce, 10)
	if !ok || nonceInt.Sign() < 0 {
		fatalf("invalid nonce %q", *nonce)
	}

	domain := types.DomainContext{
		Name:              *name,
		Version:           *version,
		ChainID:           big.NewInt(*chainID),
		VerifyingContract: common.HexToAddress(*manager),
	}
	req := types.WithdrawRequest{
		Vault:     common.HexToAddress(*vault),
		Recipient: common.HexToAddress(*recipient),
		Amount:    amountInt,
		Nonce:     nonceInt,
		ChainID:   big.NewInt(*chainID),
	}

	digest, sig, err := s.SignWithdrawRequest(domain, req)
	if err != nil {
		fatalf("signing failed: %v", err)
	}

	fmt.Printf("signer:    %s\n", s.Address().Hex())
	fmt.Printf("digest:    %s\n", digest.Hex())
	fmt.Printf("signature: 0x%s\n", hex.EncodeToString(sig))
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
