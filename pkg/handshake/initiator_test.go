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
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentid-project/agentid-go/pkg/did"
	"github.com/agentid-project/agentid-go/pkg/registry"
)

// mapResolver is an in-memory AgentResolver.
type mapResolver struct {
	records map[common.Address]*registry.AgentRecord
}

func (m *mapResolver) ResolveAgent(_ context.Context, _ uint64, addr common.Address) (*registry.AgentRecord, error) {
	rec, ok := m.records[addr]
	if !ok {
		return nil, registry.ErrAgentNotFound
	}
	return rec, nil
}

// testReceiver is a minimal receiver endpoint: one fixed challenge,
// signature verified against the initiator DID presented at initiate.
type testReceiver struct {
	challenge    string
	initiatorDID did.DID
	sessionID    string
}

func (tr *testReceiver) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(InitiatePath, func(w http.ResponseWriter, r *http.Request) {
		var req InitiateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		tr.initiatorDID = req.InitiatorDID
		tr.sessionID = req.SessionID

		var resp InitiateResponse
		resp.Data.Challenge = tr.challenge
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc(CallbackPath, func(w http.ResponseWriter, r *http.Request) {
		var req CallbackRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.SessionID != tr.sessionID ||
			!VerifySignature(req.SessionID, req.Challenge, req.Signature, tr.initiatorDID) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "rejected"})
			return
		}

		var resp CallbackResponse
		resp.Data.SessionID = req.SessionID
		resp.Data.Status = StatusCompleted
		_ = json.NewEncoder(w).Encode(resp)
	})
	return mux
}

func newTestAgents(t *testing.T, receiverEndpoint string) (*ecdsa.PrivateKey, did.DID, did.DID, *mapResolver) {
	t.Helper()

	initiatorKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	receiverKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	initiatorAddr := crypto.PubkeyToAddress(initiatorKey.PublicKey)
	receiverAddr := crypto.PubkeyToAddress(receiverKey.PublicKey)

	initiatorDID := did.FromAddress(initiatorAddr, "polygon", "amoy")
	receiverDID := did.FromAddress(receiverAddr, "polygon", "amoy")

	resolver := &mapResolver{records: map[common.Address]*registry.AgentRecord{
		initiatorAddr: {DID: initiatorDID, AgentID: big.NewInt(1), ServiceEndpoint: "http://initiator.invalid"},
		receiverAddr:  {DID: receiverDID, AgentID: big.NewInt(2), ServiceEndpoint: receiverEndpoint},
	}}
	return initiatorKey, initiatorDID, receiverDID, resolver
}

func TestInitiator_FullHandshake(t *testing.T) {
	receiver := &testReceiver{challenge: "c-12345"}
	srv := httptest.NewServer(receiver.handler())
	defer srv.Close()

	key, initiatorDID, receiverDID, resolver := newTestAgents(t, srv.URL)
	initiator := NewInitiator(resolver, nil)

	session, err := initiator.Initiate(context.Background(), initiatorDID, 80002, receiverDID, 80002)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingChallengeResponse, session.State)
	assert.Equal(t, "c-12345", session.Challenge)
	assert.Equal(t, srv.URL+CallbackPath, session.CallbackEndpoint)
	assert.NotEmpty(t, session.ID)

	ok := initiator.Complete(context.Background(), key, session)
	assert.True(t, ok)
	assert.Equal(t, StateCompleted, session.State)
}

func TestInitiator_SessionIDsAreUnique(t *testing.T) {
	receiver := &testReceiver{challenge: "c"}
	srv := httptest.NewServer(receiver.handler())
	defer srv.Close()

	_, initiatorDID, receiverDID, resolver := newTestAgents(t, srv.URL)
	initiator := NewInitiator(resolver, nil)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		session, err := initiator.Initiate(context.Background(), initiatorDID, 80002, receiverDID, 80002)
		require.NoError(t, err)
		assert.False(t, seen[session.ID])
		seen[session.ID] = true
	}
}

func TestInitiator_UnknownAgent(t *testing.T) {
	receiver := &testReceiver{challenge: "c"}
	srv := httptest.NewServer(receiver.handler())
	defer srv.Close()

	_, initiatorDID, receiverDID, resolver := newTestAgents(t, srv.URL)
	initiator := NewInitiator(resolver, nil)

	strangerKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	strangerDID := did.FromAddress(crypto.PubkeyToAddress(strangerKey.PublicKey), "polygon", "amoy")

	_, err = initiator.Initiate(context.Background(), strangerDID, 80002, receiverDID, 80002)
	assert.ErrorIs(t, err, ErrUnknownAgent)

	_, err = initiator.Initiate(context.Background(), initiatorDID, 80002, strangerDID, 80002)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestInitiator_NonEthereumControlledParty(t *testing.T) {
	const nonEthDID = did.DID("did:iden3:polygon:amoy:CW3UEVFkBATb8M5a1cng5jozXArGrsiR38Ew9nLXfz")

	receiver := &testReceiver{challenge: "c"}
	srv := httptest.NewServer(receiver.handler())
	defer srv.Close()

	_, initiatorDID, _, resolver := newTestAgents(t, srv.URL)
	initiator := NewInitiator(resolver, nil)

	_, err := initiator.Initiate(context.Background(), initiatorDID, 80002, nonEthDID, 80002)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestInitiator_CompleteFailures(t *testing.T) {
	receiver := &testReceiver{challenge: "c-998"}
	srv := httptest.NewServer(receiver.handler())
	defer srv.Close()

	key, initiatorDID, receiverDID, resolver := newTestAgents(t, srv.URL)
	initiator := NewInitiator(resolver, nil)

	// Wrong key: the receiver recovers a different signer and rejects.
	session, err := initiator.Initiate(context.Background(), initiatorDID, 80002, receiverDID, 80002)
	require.NoError(t, err)
	wrongKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	assert.False(t, initiator.Complete(context.Background(), wrongKey, session))
	assert.Equal(t, StateFailed, session.State)

	// A failed session may not be replayed.
	assert.False(t, initiator.Complete(context.Background(), key, session))

	// Transport failure is a false outcome, not an error.
	session2, err := initiator.Initiate(context.Background(), initiatorDID, 80002, receiverDID, 80002)
	require.NoError(t, err)
	session2.CallbackEndpoint = "http://127.0.0.1:1/callback"
	assert.False(t, initiator.Complete(context.Background(), key, session2))
	assert.Equal(t, StateFailed, session2.State)
}

func TestInitiator_EmptyChallengeRejected(t *testing.T) {
	receiver := &testReceiver{challenge: ""}
	srv := httptest.NewServer(receiver.handler())
	defer srv.Close()

	_, initiatorDID, receiverDID, resolver := newTestAgents(t, srv.URL)
	initiator := NewInitiator(resolver, nil)

	_, err := initiator.Initiate(context.Background(), initiatorDID, 80002, receiverDID, 80002)
	assert.ErrorContains(t, err, "no challenge")
}
