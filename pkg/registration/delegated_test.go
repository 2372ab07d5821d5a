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

package registration

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentid-project/agentid-go/pkg/did"
	"github.com/agentid-project/agentid-go/pkg/payment"
	"github.com/agentid-project/agentid-go/pkg/registry"
)

func testRequest(t *testing.T) (*Request, *common.Address, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(key.PublicKey)

	req := &Request{
		Agent:           addr,
		DID:             did.FromAddress(addr, DefaultDIDChain, DefaultDIDNetwork),
		Description:     "delegated agent",
		ServiceEndpoint: "http://agent.example.com",
		Nonce:           big.NewInt(3),
		Expiry:          big.NewInt(time.Now().Add(time.Hour).Unix()),
	}
	return req, &addr, common.Bytes2Hex(crypto.FromECDSA(key))
}

func TestSignRequest_RecoverRoundTrip(t *testing.T) {
	req, addr, keyHex := testRequest(t)
	key, err := crypto.HexToECDSA(keyHex)
	require.NoError(t, err)
	contract := common.HexToAddress("0x4fB87c52Bb6D194f78cd4896E3e574028fedBAB9")

	body, signature, err := SignRequest(key, req, registry.ChainPolygonAmoy, contract)
	require.NoError(t, err)
	require.NotEmpty(t, body)

	// The body carries the exact signed message fields.
	var msg map[string]string
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, addr.Hex(), msg["agent"])
	assert.Equal(t, string(req.DID), msg["did"])
	assert.Equal(t, "3", msg["nonce"])

	signer, err := RecoverRequestSigner(req, registry.ChainPolygonAmoy, contract, signature)
	require.NoError(t, err)
	assert.Equal(t, *addr, signer)
}

func TestSignRequest_DomainBindsSignature(t *testing.T) {
	req, addr, keyHex := testRequest(t)
	key, err := crypto.HexToECDSA(keyHex)
	require.NoError(t, err)
	contract := common.HexToAddress("0x4fB87c52Bb6D194f78cd4896E3e574028fedBAB9")

	_, signature, err := SignRequest(key, req, registry.ChainPolygonAmoy, contract)
	require.NoError(t, err)

	// A different chain id or contract must recover a different signer:
	// the signature cannot be replayed across deployments.
	signer, err := RecoverRequestSigner(req, registry.ChainBaseSepolia, contract, signature)
	require.NoError(t, err)
	assert.NotEqual(t, *addr, signer)

	otherContract := common.HexToAddress("0x0000000000000000000000000000000000000099")
	signer, err = RecoverRequestSigner(req, registry.ChainPolygonAmoy, otherContract, signature)
	require.NoError(t, err)
	assert.NotEqual(t, *addr, signer)

	// So must a tampered field.
	tampered := *req
	tampered.Nonce = big.NewInt(4)
	signer, err = RecoverRequestSigner(&tampered, registry.ChainPolygonAmoy, contract, signature)
	require.NoError(t, err)
	assert.NotEqual(t, *addr, signer)
}

func TestRegisterDelegated_ThroughSettlement(t *testing.T) {
	keyHex, addr := testKey(t)
	mock := newMockRegistry(addr)
	mock.nonces[addr] = big.NewInt(7)
	registrar := newTestRegistrar(mock)

	var sawPayment bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/register", r.URL.Path)

		var req payment.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, registry.ChainPolygonAmoy, req.ChainID)
		assert.Equal(t, addr.Hex(), req.Address)

		// The signed body must carry the registry's current nonce.
		var msg map[string]string
		require.NoError(t, json.Unmarshal(req.SignatureBody, &msg))
		assert.Equal(t, "7", msg["nonce"])

		if r.Header.Get(payment.PaymentHeader) == "" {
			w.WriteHeader(http.StatusPaymentRequired)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "payment required",
				"accepts": []map[string]string{{
					"scheme":            "exact",
					"network":           "polygon-amoy",
					"asset":             "USDC",
					"maxAmountRequired": "1000000",
					"payTo":             "0x0000000000000000000000000000000000000077",
				}},
			})
			return
		}

		sawPayment = true
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{"txHash": "0xdelegated", "agentId": 9},
		})
	}))
	defer srv.Close()

	settlement := payment.NewSettlementClient(srv.URL,
		payment.ProofFunc(func(_ context.Context, req *payment.Requirement) (string, error) {
			assert.Equal(t, "USDC", req.Asset)
			return "proof-token", nil
		}), nil)

	resp, err := registrar.RegisterDelegated(context.Background(), keyHex,
		"delegated agent", registry.ChainPolygonAmoy, "http://agent.example.com", settlement)
	require.NoError(t, err)

	assert.True(t, sawPayment)
	assert.Equal(t, "0xdelegated", resp.Data.TxHash)
	assert.Equal(t, int64(9), resp.Data.AgentID)
}

func TestRegisterDelegated_UnsupportedChain(t *testing.T) {
	keyHex, addr := testKey(t)
	mock := newMockRegistry(addr)
	registrar := newTestRegistrar(mock)

	settlement := payment.NewSettlementClient("http://settlement.invalid", nil, nil)
	_, err := registrar.RegisterDelegated(context.Background(), keyHex,
		"agent", 999999, "http://agent.example.com", settlement)
	assert.ErrorIs(t, err, registry.ErrUnsupportedChain)
}

func TestSignRequest_MissingNonceOrExpiry(t *testing.T) {
	req, _, keyHex := testRequest(t)
	key, err := crypto.HexToECDSA(keyHex)
	require.NoError(t, err)

	req.Nonce = nil
	_, _, err = SignRequest(key, req, registry.ChainPolygonAmoy, common.Address{})
	assert.Error(t, err)
}
