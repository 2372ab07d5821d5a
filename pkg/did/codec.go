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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
	"github.com/snksoft/crc"
)

// Encode builds a DID from a hex-encoded Ethereum address and free-form
// chain and network labels. The address may carry a 0x prefix and any hex
// casing; it must decode to exactly 20 bytes.
func Encode(address, chain, network string) (DID, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(address), "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddressLength, address)
	}
	if len(raw) != common.AddressLength {
		return "", fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidAddressLength, len(raw), common.AddressLength)
	}
	return FromAddress(common.BytesToAddress(raw), chain, network), nil
}

// FromAddress builds a DID from an already-parsed Ethereum address. It
// cannot fail: the address is 20 bytes by construction.
func FromAddress(addr common.Address, chain, network string) DID {
	payload := make([]byte, 0, encodedLength)
	payload = append(payload, idTypeEthereum[:]...)
	payload = append(payload, make([]byte, 7)...)
	payload = append(payload, addr.Bytes()...)

	// CRC16/XMODEM over the 29-byte base, appended little-endian.
	sum := uint16(crc.CalculateCRC(crc.XMODEM, payload))
	payload = append(payload, byte(sum&0xff), byte(sum>>8))

	return DID(fmt.Sprintf("did:%s:%s:%s:%s", Method, chain, network, base58.Encode(payload)))
}

// MustEncode is like Encode but panics on an invalid address. Intended for
// constant addresses in tests and examples.
func MustEncode(address, chain, network string) DID {
	d, err := Encode(address, chain, network)
	if err != nil {
		panic(err)
	}
	return d
}

// Decode extracts the controlling Ethereum address from a DID.
//
// The address is returned as 0x-prefixed lowercase hex. ok is false, with a
// nil error, when the identifier's padding bytes are non-zero: the DID is
// well-formed but not controlled by an Ethereum address, so there is no
// address to recover.
//
// The embedded checksum is not re-validated against a recomputed CRC;
// decoding never rejects on checksum mismatch.
func Decode(d DID) (address string, ok bool, err error) {
	parts := strings.Split(string(d), ":")
	if len(parts) < minSegments || parts[0] != "did" {
		return "", false, fmt.Errorf("%w: %q", ErrMalformedDID, d)
	}

	payload, err := base58.Decode(parts[4])
	if err != nil {
		return "", false, fmt.Errorf("%w: identifier is not base58: %s", ErrMalformedDID, err)
	}
	if len(payload) != encodedLength {
		return "", false, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidEncodedLength, len(payload), encodedLength)
	}

	// Non-zero padding means the identity is not address-controlled.
	// Reporting a wrong address here would be worse than reporting none.
	for _, b := range payload[2:9] {
		if b != 0 {
			return "", false, nil
		}
	}

	return "0x" + hex.EncodeToString(payload[9:29]), true, nil
}

// DecodeAddress is like Decode but returns the address in go-ethereum's
// native form.
func DecodeAddress(d DID) (common.Address, bool, error) {
	hexAddr, ok, err := Decode(d)
	if err != nil || !ok {
		return common.Address{}, ok, err
	}
	return common.HexToAddress(hexAddr), true, nil
}
