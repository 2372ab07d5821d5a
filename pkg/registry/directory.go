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
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Directory hands out registry clients keyed by chain id, one client per
// chain, constructed lazily and cached for the Directory's lifetime. It
// replaces per-call-site chain branching with a single parameterized
// adapter.
type Directory struct {
	mu        sync.Mutex
	clients   map[uint64]Client
	overrides map[uint64]Config
	newClient func(cfg *Config) (Client, error)
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithChainConfig overrides the configuration used for one chain id.
func WithChainConfig(cfg Config) DirectoryOption {
	return func(d *Directory) {
		d.overrides[cfg.ChainID] = cfg
	}
}

// WithClientFactory replaces the client constructor. Used by tests and by
// callers that need a non-Ethereum backing implementation.
func WithClientFactory(factory func(cfg *Config) (Client, error)) DirectoryOption {
	return func(d *Directory) {
		d.newClient = factory
	}
}

// NewDirectory creates a Directory over the static chain table.
func NewDirectory(opts ...DirectoryOption) *Directory {
	d := &Directory{
		clients:   make(map[uint64]Client),
		overrides: make(map[uint64]Config),
		newClient: func(cfg *Config) (Client, error) {
			return NewEthereumClient(cfg)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ClientFor returns the registry client for a chain id, constructing it on
// first use. Returns ErrUnsupportedChain for chain ids absent from both the
// chain table and the overrides.
func (d *Directory) ClientFor(chainID uint64) (Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.clients[chainID]; ok {
		return c, nil
	}

	cfg, ok := d.overrides[chainID]
	if !ok {
		if _, err := ChainByID(chainID); err != nil {
			return nil, err
		}
		cfg = Config{ChainID: chainID}
	}

	c, err := d.newClient(&cfg)
	if err != nil {
		return nil, err
	}
	d.clients[chainID] = c
	return c, nil
}

// ResolveAgent resolves an agent record on the given chain.
func (d *Directory) ResolveAgent(ctx context.Context, chainID uint64, addr common.Address) (*AgentRecord, error) {
	c, err := d.ClientFor(chainID)
	if err != nil {
		return nil, err
	}
	return c.ResolveAgent(ctx, addr)
}
