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

package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/agentid-project/agentid-go/pkg/did"
)

// AgentRecord is the registry's view of a registered agent. The record is
// owned by the external registry; this struct is a read-through snapshot,
// never a cache.
type AgentRecord struct {
	// DID is the agent's decentralized identifier
	DID did.DID

	// AgentID is the registry-assigned numeric id, unique per registry
	AgentID *big.Int

	// Description is the human-readable agent description
	Description string

	// ServiceEndpoint is the base URL where the agent accepts handshake
	// requests
	ServiceEndpoint string
}

// RegisterParams are the inputs to a fee-bearing registration transaction.
type RegisterParams struct {
	DID             did.DID
	Description     string
	ServiceEndpoint string

	// Payment is the native-token registration fee in the chain's base
	// unit (wei)
	Payment *big.Int
}

// RegisterResult reports a submitted registration.
type RegisterResult struct {
	// TxHash is the registration transaction reference
	TxHash common.Hash

	// AgentID is the registry-assigned id, or nil if the record was not
	// yet readable when the transaction settled
	AgentID *big.Int
}

// Client is the registry adapter consumed by the registration and handshake
// flows. Implementations wrap one registry deployment.
type Client interface {
	// ResolveAgent looks up the record for the given controlling address.
	// Returns ErrAgentNotFound if the address is not registered.
	ResolveAgent(ctx context.Context, addr common.Address) (*AgentRecord, error)

	// RegisterAgent submits a registration transaction and waits for it
	// to settle.
	RegisterAgent(ctx context.Context, params RegisterParams) (*RegisterResult, error)

	// CurrentNonce returns the registry's current meta-transaction nonce
	// for the address, used when signing delegated registrations.
	CurrentNonce(ctx context.Context, addr common.Address) (*big.Int, error)
}
