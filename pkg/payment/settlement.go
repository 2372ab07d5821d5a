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

package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/agentid-project/agentid-go/pkg/client"
)

// PaymentHeader carries the payment proof on the resubmission.
const PaymentHeader = "X-Payment"

// ErrPaymentRequired indicates the service demanded payment and no
// ProofProvider was configured to satisfy it.
var ErrPaymentRequired = errors.New("settlement service requires payment")

// RegisterRequest is the settlement service's registration payload: the
// EIP-712 message body and its signature, plus routing information.
type RegisterRequest struct {
	ChainID       uint64          `json:"chainId"`
	Address       string          `json:"address"`
	SignatureBody json.RawMessage `json:"signatureBody"`
	Signature     string          `json:"signature"`
}

// Requirement describes one payment option accepted by the service.
type Requirement struct {
	Scheme    string `json:"scheme"`
	Network   string `json:"network"`
	Asset     string `json:"asset"`
	MaxAmount string `json:"maxAmountRequired"`
	PayTo     string `json:"payTo"`
}

// paymentRequired is the body of a 402 response.
type paymentRequired struct {
	Error   string        `json:"error"`
	Accepts []Requirement `json:"accepts"`
}

// RegisterResponse is the service's settlement confirmation.
type RegisterResponse struct {
	Data struct {
		TxHash  string `json:"txHash"`
		AgentID int64  `json:"agentId"`
	} `json:"data"`
}

// ProofProvider produces an encoded payment proof satisfying a
// requirement.
type ProofProvider interface {
	Proof(ctx context.Context, req *Requirement) (string, error)
}

// ProofFunc adapts a function to ProofProvider.
type ProofFunc func(ctx context.Context, req *Requirement) (string, error)

// Proof implements ProofProvider.
func (f ProofFunc) Proof(ctx context.Context, req *Requirement) (string, error) {
	return f(ctx, req)
}

// SettlementClient talks to the delegated-payment settlement service.
type SettlementClient struct {
	baseURL string
	proofs  ProofProvider
	http    *client.Client
}

// NewSettlementClient creates a client for the service at baseURL. proofs
// may be nil, in which case a payment demand fails with
// ErrPaymentRequired.
func NewSettlementClient(baseURL string, proofs ProofProvider, httpClient *client.Client) *SettlementClient {
	if httpClient == nil {
		httpClient = client.New(nil)
	}
	return &SettlementClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		proofs:  proofs,
		http:    httpClient,
	}
}

// Register submits a signed registration request, transparently handling
// the payment-required round: on 402 the requirement is passed to the
// ProofProvider and the request is resubmitted exactly once with the proof
// attached.
func (c *SettlementClient) Register(ctx context.Context, req *RegisterRequest) (*RegisterResponse, error) {
	url := c.baseURL + "/register"

	var resp RegisterResponse
	err := c.http.PostJSON(ctx, url, req, &resp, nil)
	if err == nil {
		return &resp, nil
	}

	var serr *client.StatusError
	if !errors.As(err, &serr) || serr.StatusCode != http.StatusPaymentRequired {
		return nil, fmt.Errorf("settlement request failed: %w", err)
	}

	requirement, perr := parseRequirement(serr.Body)
	if perr != nil {
		return nil, fmt.Errorf("unparseable payment requirement: %w", perr)
	}
	if c.proofs == nil {
		return nil, fmt.Errorf("%w: %s %s on %s", ErrPaymentRequired,
			requirement.MaxAmount, requirement.Asset, requirement.Network)
	}

	proof, perr := c.proofs.Proof(ctx, requirement)
	if perr != nil {
		return nil, fmt.Errorf("failed to produce payment proof: %w", perr)
	}

	err = c.http.PostJSON(ctx, url, req, &resp, map[string]string{PaymentHeader: proof})
	if err != nil {
		return nil, fmt.Errorf("settlement resubmission failed: %w", err)
	}
	return &resp, nil
}

func parseRequirement(body []byte) (*Requirement, error) {
	var pr paymentRequired
	if err := json.Unmarshal(body, &pr); err != nil {
		return nil, err
	}
	if len(pr.Accepts) == 0 {
		return nil, fmt.Errorf("402 response lists no accepted payment")
	}
	return &pr.Accepts[0], nil
}
