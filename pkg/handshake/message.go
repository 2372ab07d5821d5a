// Copyright (C) 2025 AgentID Project
//
// This file is part of agentid-go.
//
// agentid-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// agentid-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with agentid-go.  If not, see <https://www.gnu.org/licenses/>.

package handshake

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/agentid-project/agentid-go/pkg/did"
)

// signedMessage is the payload both sides sign and verify. Field order is
// fixed by the struct; do not reorder.
type signedMessage struct {
	SessionID string `json:"sessionId"`
	Challenge string `json:"challenge"`
}

// CanonicalMessage returns the exact bytes signed during the handshake.
// Both signer and verifier must use this function.
func CanonicalMessage(sessionID, challenge string) []byte {
	b, err := json.Marshal(signedMessage{SessionID: sessionID, Challenge: challenge})
	if err != nil {
		// Two string fields cannot fail to marshal.
		panic(err)
	}
	return b
}

// Sign produces the initiator's signature over the canonical message: a
// 65-byte secp256k1 signature of the EIP-191 prefixed keccak hash, hex
// encoded with 0x prefix.
func Sign(key *ecdsa.PrivateKey, sessionID, challenge string) (string, error) {
	if key == nil {
		return "", fmt.Errorf("signing key cannot be nil")
	}
	hash := accounts.TextHash(CanonicalMessage(sessionID, challenge))
	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign handshake message: %w", err)
	}
	return hexutil.Encode(sig), nil
}

// RecoverSigner recovers the address that signed the canonical message.
// The recovery id is accepted both raw (0/1) and shifted (27/28).
func RecoverSigner(sessionID, challenge, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: %d", len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	hash := accounts.TextHash(CanonicalMessage(sessionID, challenge))
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature reports whether signature over {sessionId, challenge} was
// produced by the key controlling d. It returns false, never an error, when
// the DID is malformed, not Ethereum-controlled, or recovery fails: a
// signature that does not verify is an expected outcome.
func VerifySignature(sessionID, challenge, signature string, d did.DID) bool {
	expected, ok, err := did.Decode(d)
	if err != nil || !ok {
		return false
	}

	signer, err := RecoverSigner(sessionID, challenge, signature)
	if err != nil {
		return false
	}
	return strings.EqualFold(signer.Hex(), expected)
}
