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
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/agentid-project/agentid-go/pkg/did"
	"github.com/agentid-project/agentid-go/pkg/payment"
	"github.com/agentid-project/agentid-go/pkg/registry"
)

// EIP-712 domain binding delegated registrations to one registry
// deployment. Signatures cannot be replayed across contracts or chains.
const (
	DomainName    = "AgentRegistry"
	DomainVersion = "1"
)

// DefaultRequestTTL is how long a signed registration request stays valid.
const DefaultRequestTTL = time.Hour

// Request is a delegated (meta-transaction) registration request. It is
// signed off-chain by the agent and paid for by a third party.
type Request struct {
	Agent           common.Address
	DID             did.DID
	Description     string
	ServiceEndpoint string

	// Nonce must match the registry's current nonce for Agent
	Nonce *big.Int

	// Expiry is the Unix timestamp after which the request is invalid
	Expiry *big.Int
}

// typedData renders the request as EIP-712 typed data under the
// AgentRegistry domain.
func (req *Request) typedData(chainID uint64, verifyingContract common.Address) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"RegistrationRequest": []apitypes.Type{
				{Name: "agent", Type: "address"},
				{Name: "did", Type: "string"},
				{Name: "description", Type: "string"},
				{Name: "serviceEndpoint", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "expiry", Type: "uint256"},
			},
		},
		PrimaryType: "RegistrationRequest",
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(chainID)),
			VerifyingContract: verifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"agent":           req.Agent.Hex(),
			"did":             string(req.DID),
			"description":     req.Description,
			"serviceEndpoint": req.ServiceEndpoint,
			"nonce":           req.Nonce.String(),
			"expiry":          req.Expiry.String(),
		},
	}
}

// SignRequest signs a delegated registration request for the registry on
// chainID at verifyingContract. It returns the JSON message body the
// settlement service forwards on-chain and the 65-byte signature in hex
// with the recovery id shifted to 27/28.
func SignRequest(key *ecdsa.PrivateKey, req *Request, chainID uint64, verifyingContract common.Address) (json.RawMessage, string, error) {
	if key == nil {
		return nil, "", fmt.Errorf("signing key cannot be nil")
	}
	if req.Nonce == nil || req.Expiry == nil {
		return nil, "", fmt.Errorf("request nonce and expiry must be set")
	}

	td := req.typedData(chainID, verifyingContract)
	hash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash typed data: %w", err)
	}

	sig, err := crypto.Sign(hash, key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign typed data: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	body, err := json.Marshal(td.Message)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return body, hexutil.Encode(sig), nil
}

// RecoverRequestSigner recovers the address that signed a delegated
// request, for pre-flight verification mirroring the on-chain check.
func RecoverRequestSigner(req *Request, chainID uint64, verifyingContract common.Address, signature string) (common.Address, error) {
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

	hash, _, err := apitypes.TypedDataAndHash(req.typedData(chainID, verifyingContract))
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to hash typed data: %w", err)
	}
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// RegisterDelegated builds, signs and submits a delegated registration
// through the settlement service. The local flow ends at constructing and
// signing the request; payment settlement is the service's concern.
func (r *Registrar) RegisterDelegated(ctx context.Context, privateKeyHex, description string, chainID uint64, serviceEndpoint string, settlement *payment.SettlementClient) (*payment.RegisterResponse, error) {
	key, err := parseKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	agentDID := did.FromAddress(addr, r.didChain, r.didNetwork)

	chain, err := registry.ChainByID(chainID)
	if err != nil {
		return nil, err
	}

	cli, err := r.newClient(&registry.Config{ChainID: chainID})
	if err != nil {
		return nil, err
	}
	nonce, err := cli.CurrentNonce(ctx, addr)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Agent:           addr,
		DID:             agentDID,
		Description:     description,
		ServiceEndpoint: serviceEndpoint,
		Nonce:           nonce,
		Expiry:          big.NewInt(time.Now().Add(DefaultRequestTTL).Unix()),
	}

	body, signature, err := SignRequest(key, req, chainID, chain.ContractAddress)
	if err != nil {
		return nil, err
	}

	return settlement.Register(ctx, &payment.RegisterRequest{
		ChainID:       chainID,
		Address:       addr.Hex(),
		SignatureBody: body,
		Signature:     signature,
	})
}
