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
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/agentid-project/agentid-go/pkg/did"
)

// registryABI is the fragment of the AgentRegistry contract ABI the adapter
// depends on. The shape is owned by the external contract.
const registryABI = `[
	{"name":"getAgentByAddress","type":"function","stateMutability":"view",
	 "inputs":[{"name":"agent","type":"address"}],
	 "outputs":[{"name":"did","type":"string"},{"name":"agentId","type":"uint256"},
	            {"name":"description","type":"string"},{"name":"serviceEndpoint","type":"string"}]},
	{"name":"registerAgent","type":"function","stateMutability":"payable",
	 "inputs":[{"name":"did","type":"string"},{"name":"description","type":"string"},
	           {"name":"serviceEndpoint","type":"string"}],
	 "outputs":[{"name":"agentId","type":"uint256"}]},
	{"name":"nonces","type":"function","stateMutability":"view",
	 "inputs":[{"name":"agent","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

// Config configures an EthereumClient for one registry deployment.
// RPCEndpoint and ContractAddress fall back to the chain table when empty;
// PrivateKey is only required for write operations.
type Config struct {
	// ChainID selects the chain and, when no overrides are given, the
	// default endpoint and contract from the chain table
	ChainID uint64

	// RPCEndpoint overrides the default RPC endpoint
	RPCEndpoint string

	// ContractAddress overrides the default registry contract address
	// (0x-prefixed hex)
	ContractAddress string

	// PrivateKey is the transaction signing key as a hex string, with or
	// without 0x prefix. Leave empty for read-only clients.
	PrivateKey string
}

// resolve fills in chain-table defaults and validates the result.
func (c *Config) resolve() (ChainConfig, error) {
	cfg := ChainConfig{
		ChainID:     c.ChainID,
		RPCEndpoint: c.RPCEndpoint,
	}
	if c.ContractAddress != "" {
		cfg.ContractAddress = common.HexToAddress(c.ContractAddress)
	}

	if cfg.RPCEndpoint != "" && c.ContractAddress != "" {
		return cfg, nil
	}

	defaults, err := ChainByID(c.ChainID)
	if err != nil {
		return ChainConfig{}, err
	}
	if cfg.RPCEndpoint == "" {
		cfg.RPCEndpoint = defaults.RPCEndpoint
	}
	if c.ContractAddress == "" {
		cfg.ContractAddress = defaults.ContractAddress
	}
	cfg.Name = defaults.Name
	return cfg, nil
}

// EthereumClient implements Client against one AgentRegistry deployment.
type EthereumClient struct {
	chainID  *big.Int
	client   *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
}

// NewEthereumClient connects to the registry deployment described by cfg.
func NewEthereumClient(cfg *Config) (*EthereumClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	chain, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	var key *ecdsa.PrivateKey
	if cfg.PrivateKey != "" {
		key, err = crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
	}

	client, err := ethclient.Dial(chain.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", chain.RPCEndpoint, err)
	}

	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry ABI: %w", err)
	}

	return &EthereumClient{
		chainID:  new(big.Int).SetUint64(cfg.ChainID),
		client:   client,
		contract: bind.NewBoundContract(chain.ContractAddress, parsed, client, client, client),
		key:      key,
	}, nil
}

// ResolveAgent implements Client.
func (c *EthereumClient) ResolveAgent(ctx context.Context, addr common.Address) (*AgentRecord, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getAgentByAddress", addr)
	if err != nil {
		rerr := normalizeError("getAgentByAddress", err)
		if isNotFound(rerr.Cause) {
			return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, addr.Hex())
		}
		return nil, rerr
	}
	if len(out) != 4 {
		return nil, &RegistryError{Op: "getAgentByAddress", Cause: "unexpected result arity"}
	}

	didStr, _ := out[0].(string)
	if didStr == "" {
		// Some deployments return an empty record instead of reverting.
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, addr.Hex())
	}

	return &AgentRecord{
		DID:             did.DID(didStr),
		AgentID:         out[1].(*big.Int),
		Description:     out[2].(string),
		ServiceEndpoint: out[3].(string),
	}, nil
}

// RegisterAgent implements Client. It submits the fee-bearing registration
// transaction and waits for it to be mined. The returned AgentID is read
// back from the registry and may be nil if the record is not yet visible.
func (c *EthereumClient) RegisterAgent(ctx context.Context, params RegisterParams) (*RegisterResult, error) {
	if c.key == nil {
		return nil, &RegistryError{Op: "registerAgent", Cause: "client has no signing key"}
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, normalizeError("registerAgent", err)
	}
	opts.Context = ctx
	opts.Value = params.Payment

	tx, err := c.contract.Transact(opts, "registerAgent",
		string(params.DID), params.Description, params.ServiceEndpoint)
	if err != nil {
		return nil, normalizeError("registerAgent", err)
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return nil, normalizeError("registerAgent", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, &RegistryError{Op: "registerAgent", Cause: "transaction reverted"}
	}

	result := &RegisterResult{TxHash: tx.Hash()}

	// Immediate reads after submission may not reflect the new record on
	// every chain; a missing record here is not a failure.
	rec, err := c.ResolveAgent(ctx, crypto.PubkeyToAddress(c.key.PublicKey))
	if err == nil {
		result.AgentID = rec.AgentID
	} else if !errors.Is(err, ErrAgentNotFound) {
		return nil, err
	}
	return result, nil
}

// CurrentNonce implements Client.
func (c *EthereumClient) CurrentNonce(ctx context.Context, addr common.Address) (*big.Int, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "nonces", addr)
	if err != nil {
		return nil, normalizeError("nonces", err)
	}
	if len(out) != 1 {
		return nil, &RegistryError{Op: "nonces", Cause: "unexpected result arity"}
	}
	return out[0].(*big.Int), nil
}

// Close releases the underlying RPC connection.
func (c *EthereumClient) Close() {
	c.client.Close()
}
