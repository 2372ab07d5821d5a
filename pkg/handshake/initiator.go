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
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/agentid-project/agentid-go/pkg/client"
	"github.com/agentid-project/agentid-go/pkg/did"
	"github.com/agentid-project/agentid-go/pkg/registry"
)

// ErrUnknownAgent indicates a handshake party whose DID could not be
// resolved to a registered agent.
var ErrUnknownAgent = errors.New("unknown agent")

// State is the initiator-side session state.
type State int

const (
	// StateIdle: session created but not yet announced to the receiver
	StateIdle State = iota

	// StateAwaitingChallengeResponse: initiate accepted, challenge held,
	// waiting for the signed callback round
	StateAwaitingChallengeResponse

	// StateCompleted: receiver confirmed the signature
	StateCompleted

	// StateFailed: receiver rejected the callback or transport failed
	StateFailed
)

// Session is an in-flight handshake. It lives only as long as the exchange;
// nothing is persisted.
type Session struct {
	ID               string
	InitiatorDID     did.DID
	InitiatorChainID uint64
	ReceiverDID      did.DID
	ReceiverChainID  uint64

	// Challenge is supplied by the receiver during Initiate
	Challenge string

	// CallbackEndpoint is the receiver's callback URL
	CallbackEndpoint string

	State State
}

// AgentResolver resolves an agent record on a chain. *registry.Directory
// satisfies it.
type AgentResolver interface {
	ResolveAgent(ctx context.Context, chainID uint64, addr common.Address) (*registry.AgentRecord, error)
}

// Initiator drives the initiator side of the handshake.
type Initiator struct {
	resolver AgentResolver
	http     *client.Client
}

// NewInitiator creates an Initiator. If httpClient is nil a default client
// is used.
func NewInitiator(resolver AgentResolver, httpClient *client.Client) *Initiator {
	if httpClient == nil {
		httpClient = client.New(nil)
	}
	return &Initiator{resolver: resolver, http: httpClient}
}

// validateAgent resolves a DID to its registry record. A DID that is
// malformed, not Ethereum-controlled, or absent from the registry yields
// ErrUnknownAgent.
func (i *Initiator) validateAgent(ctx context.Context, d did.DID, chainID uint64) (*registry.AgentRecord, error) {
	addr, ok, err := did.DecodeAddress(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnknownAgent, d, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s is not controlled by an ethereum address", ErrUnknownAgent, d)
	}

	rec, err := i.resolver.ResolveAgent(ctx, chainID, addr)
	if err != nil {
		if errors.Is(err, registry.ErrAgentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, d)
		}
		return nil, err
	}
	return rec, nil
}

// Initiate validates both parties against their registries, opens a session
// with the receiver and collects its challenge. On success the returned
// session is in StateAwaitingChallengeResponse and carries the receiver's
// challenge and callback endpoint.
func (i *Initiator) Initiate(ctx context.Context, initiatorDID did.DID, initiatorChainID uint64, receiverDID did.DID, receiverChainID uint64) (*Session, error) {
	if _, err := i.validateAgent(ctx, initiatorDID, initiatorChainID); err != nil {
		return nil, err
	}
	receiver, err := i.validateAgent(ctx, receiverDID, receiverChainID)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimSuffix(receiver.ServiceEndpoint, "/")
	session := &Session{
		ID:               uuid.NewString(),
		InitiatorDID:     initiatorDID,
		InitiatorChainID: initiatorChainID,
		ReceiverDID:      receiverDID,
		ReceiverChainID:  receiverChainID,
		CallbackEndpoint: endpoint + CallbackPath,
		State:            StateIdle,
	}

	var resp InitiateResponse
	err = i.http.PostJSON(ctx, endpoint+InitiatePath, InitiateRequest{
		SessionID:        session.ID,
		InitiatorDID:     initiatorDID,
		InitiatorChainID: initiatorChainID,
	}, &resp, nil)
	if err != nil {
		return nil, fmt.Errorf("initiate request failed: %w", err)
	}
	if resp.Data.Challenge == "" {
		return nil, fmt.Errorf("receiver returned no challenge for session %s", session.ID)
	}

	session.Challenge = resp.Data.Challenge
	session.State = StateAwaitingChallengeResponse
	return session, nil
}

// Complete signs the session's canonical message and presents it on the
// receiver's callback endpoint. It reports the outcome as a boolean: a
// rejected or unreachable callback is an expected protocol result, not an
// error. The session moves to StateCompleted or StateFailed accordingly.
func (i *Initiator) Complete(ctx context.Context, key *ecdsa.PrivateKey, session *Session) bool {
	if session == nil || session.State != StateAwaitingChallengeResponse {
		return false
	}

	signature, err := Sign(key, session.ID, session.Challenge)
	if err != nil {
		session.State = StateFailed
		return false
	}

	var resp CallbackResponse
	err = i.http.PostJSON(ctx, session.CallbackEndpoint, CallbackRequest{
		SessionID: session.ID,
		Challenge: session.Challenge,
		Signature: signature,
	}, &resp, nil)
	if err != nil || resp.Data.SessionID != session.ID || resp.Data.Status != StatusCompleted {
		session.State = StateFailed
		return false
	}

	session.State = StateCompleted
	return true
}
