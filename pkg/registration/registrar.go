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
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/agentid-project/agentid-go/pkg/did"
	"github.com/agentid-project/agentid-go/pkg/registry"
)

// Fixed DID namespace for registered identities. The labels are string
// decoration only; the binary identifier is chain-independent.
const (
	DefaultDIDChain   = "polygon"
	DefaultDIDNetwork = "amoy"
)

// DefaultFee is the fixed native-token registration fee: 0.001 in the
// chain's base unit.
var DefaultFee = big.NewInt(1_000_000_000_000_000)

// DefaultSettleDelay is how long to wait before re-fetching the record
// when it is not readable immediately after the transaction settles.
const DefaultSettleDelay = 2 * time.Second

var (
	// ErrInvalidKeyFormat indicates the private key material is not a
	// valid secp256k1 key in hex form.
	ErrInvalidKeyFormat = errors.New("invalid private key format")

	// ErrAlreadyRegistered indicates the derived address already has a
	// registry record.
	ErrAlreadyRegistered = errors.New("agent already registered")
)

// Result is a confirmed registration.
type Result struct {
	TxHash          string
	DID             did.DID
	Description     string
	ServiceEndpoint string

	// AgentID may be nil if the record was still not readable after the
	// settle delay
	AgentID *big.Int
}

// Registrar runs registration flows. The zero value is not usable; use
// NewRegistrar.
type Registrar struct {
	newClient   func(cfg *registry.Config) (registry.Client, error)
	didChain    string
	didNetwork  string
	fee         *big.Int
	settleDelay time.Duration
}

// Option configures a Registrar.
type Option func(*Registrar)

// WithDIDNamespace overrides the chain/network labels stamped into newly
// derived DIDs.
func WithDIDNamespace(chain, network string) Option {
	return func(r *Registrar) {
		r.didChain = chain
		r.didNetwork = network
	}
}

// WithFee overrides the registration fee.
func WithFee(fee *big.Int) Option {
	return func(r *Registrar) {
		r.fee = fee
	}
}

// WithSettleDelay overrides the post-settlement re-fetch delay.
func WithSettleDelay(d time.Duration) Option {
	return func(r *Registrar) {
		r.settleDelay = d
	}
}

// WithClientFactory replaces the registry client constructor. Used by
// tests.
func WithClientFactory(factory func(cfg *registry.Config) (registry.Client, error)) Option {
	return func(r *Registrar) {
		r.newClient = factory
	}
}

// NewRegistrar creates a Registrar with the default namespace, fee and
// settle delay.
func NewRegistrar(opts ...Option) *Registrar {
	r := &Registrar{
		newClient: func(cfg *registry.Config) (registry.Client, error) {
			return registry.NewEthereumClient(cfg)
		},
		didChain:    DefaultDIDChain,
		didNetwork:  DefaultDIDNetwork,
		fee:         DefaultFee,
		settleDelay: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// parseKey validates the hex key material and returns the parsed key.
func parseKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidKeyFormat, err)
	}
	return key, nil
}

// Register runs the direct registration flow on the given chain. rpcURL
// may be empty to use the chain table default. Each step is a hard
// precondition: an invalid key, an existing record, or a failed
// transaction aborts the flow.
func (r *Registrar) Register(ctx context.Context, privateKeyHex, description string, chainID uint64, serviceEndpoint, rpcURL string) (*Result, error) {
	key, err := parseKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	agentDID := did.FromAddress(addr, r.didChain, r.didNetwork)

	cli, err := r.newClient(&registry.Config{
		ChainID:     chainID,
		RPCEndpoint: rpcURL,
		PrivateKey:  privateKeyHex,
	})
	if err != nil {
		return nil, err
	}

	// Duplicate check. Registration must not silently succeed twice.
	existing, err := cli.ResolveAgent(ctx, addr)
	if err == nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyRegistered, addr.Hex(), existing.DID)
	}
	if !errors.Is(err, registry.ErrAgentNotFound) {
		return nil, err
	}

	sub, err := cli.RegisterAgent(ctx, registry.RegisterParams{
		DID:             agentDID,
		Description:     description,
		ServiceEndpoint: serviceEndpoint,
		Payment:         r.fee,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		TxHash:          sub.TxHash.Hex(),
		DID:             agentDID,
		Description:     description,
		ServiceEndpoint: serviceEndpoint,
		AgentID:         sub.AgentID,
	}

	// Some chains serve stale reads right after settlement; give the
	// record one more chance to appear before returning without an id.
	if result.AgentID == nil && r.settleDelay > 0 {
		select {
		case <-ctx.Done():
			return result, nil
		case <-time.After(r.settleDelay):
		}
		if rec, rerr := cli.ResolveAgent(ctx, addr); rerr == nil {
			result.AgentID = rec.AgentID
		}
	}
	return result, nil
}
