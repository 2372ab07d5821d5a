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
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrAgentNotFound indicates the address has no record in the registry.
	ErrAgentNotFound = errors.New("agent not found in registry")

	// ErrUnsupportedChain indicates a chain id with no entry in the chain
	// table and no explicit endpoint/contract supplied.
	ErrUnsupportedChain = errors.New("unsupported chain id")
)

// RegistryError wraps a remote-call failure with a normalized
// human-readable cause. Provider-specific error shapes (revert reason,
// nested error data, generic message) are collapsed into Cause.
type RegistryError struct {
	// Op is the registry operation that failed
	Op string

	// Cause is the normalized human-readable failure cause
	Cause string

	// Err is the underlying provider error, if any
	Err error
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("registry: %s: %s", e.Op, e.Cause)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// normalizeError collapses a provider error into a *RegistryError. The
// cause is taken from the first of, in order: the ABI-decoded revert
// reason, the raw error data string, the plain error message.
func normalizeError(op string, err error) *RegistryError {
	var de rpc.DataError
	if errors.As(err, &de) {
		if data, ok := de.ErrorData().(string); ok && data != "" {
			if reason, uerr := abi.UnpackRevert(common.FromHex(data)); uerr == nil {
				return &RegistryError{Op: op, Cause: reason, Err: err}
			}
			return &RegistryError{Op: op, Cause: data, Err: err}
		}
	}
	return &RegistryError{Op: op, Cause: err.Error(), Err: err}
}

// isNotFound reports whether a normalized cause marks a missing record
// rather than a transport or contract failure.
func isNotFound(cause string) bool {
	c := strings.ToLower(cause)
	return strings.Contains(c, "not found") ||
		strings.Contains(c, "not registered") ||
		strings.Contains(c, "agentnotfound")
}
