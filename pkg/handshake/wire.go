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

import "github.com/agentid-project/agentid-go/pkg/did"

// Paths of the receiver endpoints, relative to the advertised service
// endpoint.
const (
	InitiatePath = "/initiate"
	CallbackPath = "/callback"
)

// StatusCompleted is the receiver's explicit completion marker.
const StatusCompleted = "handshake_completed"

// InitiateRequest opens a handshake session with the receiver.
type InitiateRequest struct {
	SessionID        string  `json:"sessionId"`
	InitiatorDID     did.DID `json:"initiatorDid"`
	InitiatorChainID uint64  `json:"initiatorChainId"`
}

// InitiateResponse carries the receiver's challenge for the session.
type InitiateResponse struct {
	Data struct {
		Challenge string `json:"challenge"`
	} `json:"data"`
}

// CallbackRequest presents the initiator's signature over the canonical
// {sessionId, challenge} message.
type CallbackRequest struct {
	SessionID string `json:"sessionId"`
	Challenge string `json:"challenge"`
	Signature string `json:"signature"`
}

// CallbackResponse confirms or rejects the handshake.
type CallbackResponse struct {
	Data struct {
		SessionID string `json:"sessionId"`
		Status    string `json:"status"`
	} `json:"data"`
}
