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
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// Supported chain ids.
const (
	ChainPolygon     uint64 = 137
	ChainPolygonAmoy uint64 = 80002
	ChainBaseSepolia uint64 = 84532
	ChainLocal       uint64 = 31337
)

// ChainConfig holds the per-chain defaults for reaching a registry
// deployment.
type ChainConfig struct {
	ChainID         uint64
	Name            string
	RPCEndpoint     string
	ContractAddress common.Address
}

// defaultChains is the static chain table. It is read-only after package
// init; per-call overrides go through Config or Directory options instead.
var defaultChains = map[uint64]ChainConfig{
	ChainPolygon: {
		ChainID:         ChainPolygon,
		Name:            "polygon",
		RPCEndpoint:     "https://polygon-rpc.com",
		ContractAddress: common.HexToAddress("0x8c5e2b4De36a6f8B17EEE2c0F255413a6EbA0C73"),
	},
	ChainPolygonAmoy: {
		ChainID:         ChainPolygonAmoy,
		Name:            "polygon-amoy",
		RPCEndpoint:     "https://rpc-amoy.polygon.technology",
		ContractAddress: common.HexToAddress("0x4fB87c52Bb6D194f78cd4896E3e574028fedBAB9"),
	},
	ChainBaseSepolia: {
		ChainID:         ChainBaseSepolia,
		Name:            "base-sepolia",
		RPCEndpoint:     "https://sepolia.base.org",
		ContractAddress: common.HexToAddress("0xD2c7d9d64C3E061b8E7f1aD0C0b9F21B22C067C9"),
	},
	ChainLocal: {
		ChainID:         ChainLocal,
		Name:            "local",
		RPCEndpoint:     "http://127.0.0.1:8545",
		ContractAddress: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	},
}

// ChainByID returns the default configuration for a supported chain id.
func ChainByID(chainID uint64) (ChainConfig, error) {
	cfg, ok := defaultChains[chainID]
	if !ok {
		return ChainConfig{}, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	return cfg, nil
}

// SupportedChains returns the supported chain ids in ascending order.
func SupportedChains() []uint64 {
	ids := make([]uint64, 0, len(defaultChains))
	for id := range defaultChains {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
