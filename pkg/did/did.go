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

package did

import (
	"errors"
	"strings"
)

// DID is a decentralized identifier string of the form
// did:iden3:<chain>:<network>:<base58Id>.
type DID string

// Method is the DID method name used by this codec.
const Method = "iden3"

const (
	// encodedLength is the byte length of the base58-decoded identifier.
	encodedLength = 31

	// segment count of a well-formed DID string
	minSegments = 5
)

// idTypeEthereum tags an identifier as Ethereum-address-controlled.
var idTypeEthereum = [2]byte{0x0d, 0x01}

// Error kinds reported by the codec.
var (
	// ErrInvalidAddressLength indicates the input address is not exactly
	// 20 bytes after stripping the 0x prefix.
	ErrInvalidAddressLength = errors.New("invalid ethereum address length")

	// ErrMalformedDID indicates the DID string does not have the expected
	// did:iden3:<chain>:<network>:<base58Id> shape.
	ErrMalformedDID = errors.New("malformed DID")

	// ErrInvalidEncodedLength indicates the base58 identifier segment does
	// not decode to exactly 31 bytes.
	ErrInvalidEncodedLength = errors.New("invalid encoded identifier length")
)

// String returns the DID as a plain string.
func (d DID) String() string {
	return string(d)
}

// Chain returns the chain label segment, or "" if the DID is malformed.
func (d DID) Chain() string {
	parts := strings.Split(string(d), ":")
	if len(parts) < minSegments {
		return ""
	}
	return parts[2]
}

// Network returns the network label segment, or "" if the DID is malformed.
func (d DID) Network() string {
	parts := strings.Split(string(d), ":")
	if len(parts) < minSegments {
		return ""
	}
	return parts[3]
}

// Identifier returns the base58 identifier segment, or "" if the DID is
// malformed.
func (d DID) Identifier() string {
	parts := strings.Split(string(d), ":")
	if len(parts) < minSegments {
		return ""
	}
	return parts[4]
}
