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

package server

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/agentid-project/agentid-go/pkg/did"
	"github.com/agentid-project/agentid-go/pkg/handshake"
)

// challengeBytes is the entropy of an issued challenge. The challenge is
// the unguessable element of the protocol.
const challengeBytes = 32

// ErrorHandler handles protocol rejections. The default writes a JSON
// error body with the given status.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, status int, err error)

// Config configures a receiver-side Handshake.
type Config struct {
	// Resolver, when non-nil, is used to check that the claimed initiator
	// is actually registered on its chain before a challenge is issued
	Resolver handshake.AgentResolver
}

// session is the receiver's in-memory state for one handshake.
type session struct {
	challenge        string
	initiatorDID     did.DID
	initiatorChainID uint64
}

// Handshake serves the /initiate and /callback endpoints.
type Handshake struct {
	cfg          Config
	errorHandler ErrorHandler

	mu       sync.Mutex
	sessions map[string]*session
}

// NewHandshake creates a receiver-side Handshake.
func NewHandshake(cfg Config) *Handshake {
	return &Handshake{
		cfg:          cfg,
		errorHandler: defaultErrorHandler,
		sessions:     make(map[string]*session),
	}
}

// SetErrorHandler replaces the rejection handler.
func (h *Handshake) SetErrorHandler(handler ErrorHandler) {
	h.errorHandler = handler
}

// Sessions returns the number of handshakes currently awaiting a callback.
func (h *Handshake) Sessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Router returns the handshake routes, mountable under the agent's service
// endpoint.
func (h *Handshake) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(handshake.InitiatePath, h.handleInitiate).Methods(http.MethodPost)
	r.HandleFunc(handshake.CallbackPath, h.handleCallback).Methods(http.MethodPost)
	return r
}

func (h *Handshake) handleInitiate(w http.ResponseWriter, r *http.Request) {
	var req handshake.InitiateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.SessionID == "" {
		h.errorHandler(w, r, http.StatusBadRequest, fmt.Errorf("missing sessionId"))
		return
	}

	addr, ok, err := did.DecodeAddress(req.InitiatorDID)
	if err != nil || !ok {
		h.errorHandler(w, r, http.StatusBadRequest, fmt.Errorf("initiator DID is not ethereum-controlled"))
		return
	}

	if h.cfg.Resolver != nil {
		if _, err := h.cfg.Resolver.ResolveAgent(r.Context(), req.InitiatorChainID, addr); err != nil {
			h.errorHandler(w, r, http.StatusUnauthorized, fmt.Errorf("initiator not registered: %w", err))
			return
		}
	}

	challenge, err := newChallenge()
	if err != nil {
		h.errorHandler(w, r, http.StatusInternalServerError, err)
		return
	}

	h.mu.Lock()
	h.sessions[req.SessionID] = &session{
		challenge:        challenge,
		initiatorDID:     req.InitiatorDID,
		initiatorChainID: req.InitiatorChainID,
	}
	h.mu.Unlock()

	var resp handshake.InitiateResponse
	resp.Data.Challenge = challenge
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handshake) handleCallback(w http.ResponseWriter, r *http.Request) {
	var req handshake.CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	h.mu.Lock()
	sess, ok := h.sessions[req.SessionID]
	if ok {
		// One callback attempt per session, pass or fail.
		delete(h.sessions, req.SessionID)
	}
	h.mu.Unlock()

	if !ok {
		h.errorHandler(w, r, http.StatusUnauthorized, fmt.Errorf("unknown session %q", req.SessionID))
		return
	}
	if req.Challenge != sess.challenge {
		h.errorHandler(w, r, http.StatusUnauthorized, fmt.Errorf("challenge mismatch for session %q", req.SessionID))
		return
	}
	if !handshake.VerifySignature(req.SessionID, req.Challenge, req.Signature, sess.initiatorDID) {
		h.errorHandler(w, r, http.StatusUnauthorized, fmt.Errorf("signature verification failed for session %q", req.SessionID))
		return
	}

	var resp handshake.CallbackResponse
	resp.Data.SessionID = req.SessionID
	resp.Data.Status = handshake.StatusCompleted
	writeJSON(w, http.StatusOK, resp)
}

// newChallenge returns a fresh crypto-random challenge as hex.
func newChallenge() (string, error) {
	buf := make([]byte, challengeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate challenge: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// defaultErrorHandler writes a JSON error body.
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
