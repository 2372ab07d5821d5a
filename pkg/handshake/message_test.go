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
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentid-project/agentid-go/pkg/did"
)

func TestCanonicalMessage_StableByteLayout(t *testing.T) {
	// Signer and verifier must hash byte-identical messages; the exact
	// serialization is part of the protocol contract.
	assert.Equal(t,
		`{"sessionId":"s1","challenge":"abc"}`,
		string(CanonicalMessage("s1", "abc")))
}

func TestSignAndVerify(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)
	agentDID := did.FromAddress(addr, "polygon", "amoy")

	signature, err := Sign(key, "s1", "abc")
	require.NoError(t, err)

	assert.True(t, VerifySignature("s1", "abc", signature, agentDID))
}

func TestVerifySignature_RejectsAnySingleMutation(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	agentDID := did.FromAddress(crypto.PubkeyToAddress(key.PublicKey), "polygon", "amoy")

	signature, err := Sign(key, "s1", "abc")
	require.NoError(t, err)

	// Altering any one element must break verification.
	assert.False(t, VerifySignature("s2", "abc", signature, agentDID), "session id changed")
	assert.False(t, VerifySignature("s1", "abd", signature, agentDID), "challenge changed")

	mutated := []byte(signature)
	if mutated[10] == 'a' {
		mutated[10] = 'b'
	} else {
		mutated[10] = 'a'
	}
	assert.False(t, VerifySignature("s1", "abc", string(mutated), agentDID), "signature changed")
}

func TestVerifySignature_WrongKey(t *testing.T) {
	keyA, err := crypto.GenerateKey()
	require.NoError(t, err)
	keyB, err := crypto.GenerateKey()
	require.NoError(t, err)

	didB := did.FromAddress(crypto.PubkeyToAddress(keyB.PublicKey), "polygon", "amoy")

	signature, err := Sign(keyA, "s1", "abc")
	require.NoError(t, err)

	assert.False(t, VerifySignature("s1", "abc", signature, didB))
}

func TestVerifySignature_NonEthereumControlledDID(t *testing.T) {
	// Valid identifier with non-zero padding: no address to compare
	// against, so verification is false rather than an error.
	const nonEthDID = did.DID("did:iden3:polygon:amoy:CW3UEVFkBATb8M5a1cng5jozXArGrsiR38Ew9nLXfz")

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signature, err := Sign(key, "s1", "abc")
	require.NoError(t, err)

	assert.False(t, VerifySignature("s1", "abc", signature, nonEthDID))
}

func TestVerifySignature_MalformedInputs(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	agentDID := did.FromAddress(crypto.PubkeyToAddress(key.PublicKey), "polygon", "amoy")

	assert.False(t, VerifySignature("s1", "abc", "not-hex", agentDID))
	assert.False(t, VerifySignature("s1", "abc", "0x0102", agentDID))
	assert.False(t, VerifySignature("s1", "abc", "0x", agentDID))

	signature, err := Sign(key, "s1", "abc")
	require.NoError(t, err)
	assert.False(t, VerifySignature("s1", "abc", signature, did.DID("did:iden3:x:y")))
}

func TestRecoverSigner_AcceptsShiftedRecoveryID(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	signature, err := Sign(key, "s1", "abc")
	require.NoError(t, err)

	// crypto.Sign emits v as 0/1; some wallets emit 27/28. Both must
	// recover.
	sig, err := hexutil.Decode(signature)
	require.NoError(t, err)
	sig[64] += 27

	got, err := RecoverSigner("s1", "abc", hexutil.Encode(sig))
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestSign_NilKey(t *testing.T) {
	_, err := Sign(nil, "s1", "abc")
	assert.Error(t, err)
}
