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

// Command handshake-demo runs both sides of the mutual-authentication
// handshake in one process: a receiver serving /initiate and /callback,
// and an initiator that resolves it, collects a challenge and completes
// the exchange with a signed callback.
//
// The registry is stubbed in memory so the demo runs without a chain.
// Swap the stub for registry.NewDirectory() to resolve real agents.
package main

import (
	"context"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/agentid-project/agentid-go/pkg/did"
	"github.com/agentid-project/agentid-go/pkg/handshake"
	"github.com/agentid-project/agentid-go/pkg/registry"
	"github.com/agentid-project/agentid-go/pkg/server"
)

// memoryResolver serves agent records for the demo without a chain.
type memoryResolver struct {
	records map[common.Address]*registry.AgentRecord
}

func (m *memoryResolver) ResolveAgent(_ context.Context, _ uint64, addr common.Address) (*registry.AgentRecord, error) {
	rec, ok := m.records[addr]
	if !ok {
		return nil, registry.ErrAgentNotFound
	}
	return rec, nil
}

func main() {
	const listenAddr = "127.0.0.1:8091"

	initiatorKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}
	receiverKey, err := crypto.GenerateKey()
	if err != nil {
		log.Fatal(err)
	}

	initiatorAddr := crypto.PubkeyToAddress(initiatorKey.PublicKey)
	receiverAddr := crypto.PubkeyToAddress(receiverKey.PublicKey)
	initiatorDID := did.FromAddress(initiatorAddr, "polygon", "amoy")
	receiverDID := did.FromAddress(receiverAddr, "polygon", "amoy")

	resolver := &memoryResolver{records: map[common.Address]*registry.AgentRecord{
		initiatorAddr: {DID: initiatorDID, AgentID: big.NewInt(1), ServiceEndpoint: "http://" + listenAddr},
		receiverAddr:  {DID: receiverDID, AgentID: big.NewInt(2), ServiceEndpoint: "http://" + listenAddr},
	}}

	// Receiver side.
	hs := server.NewHandshake(server.Config{Resolver: resolver})
	go func() {
		log.Printf("receiver %s listening on %s", receiverDID, listenAddr)
		if err := http.ListenAndServe(listenAddr, hs.Router()); err != nil {
			log.Fatal(err)
		}
	}()
	time.Sleep(200 * time.Millisecond)

	// Initiator side.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	initiator := handshake.NewInitiator(resolver, nil)
	session, err := initiator.Initiate(ctx, initiatorDID, registry.ChainPolygonAmoy, receiverDID, registry.ChainPolygonAmoy)
	if err != nil {
		log.Fatalf("initiate failed: %v", err)
	}
	log.Printf("session %s: received challenge %s", session.ID, session.Challenge)

	if initiator.Complete(ctx, initiatorKey, session) {
		log.Printf("session %s: handshake completed", session.ID)
	} else {
		log.Printf("session %s: handshake failed", session.ID)
	}
}
