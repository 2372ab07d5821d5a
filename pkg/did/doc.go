// Package did implements the DID codec for Ethereum-controlled agent
// identities.
//
// A DID produced by this package has the form:
//
//	did:iden3:<chain>:<network>:<base58Id>
//
// where base58Id encodes a fixed 31-byte payload:
//
//	idType(2) || zeroPadding(7) || ethAddress(20) || checksum(2)
//
// The idType tag is {0x0d, 0x01} and marks an Ethereum-controlled identity.
// The checksum is CRC16/XMODEM over the preceding 29 bytes, appended
// little-endian. It is a format integrity tag, not a security checksum.
//
// Encoding is deterministic: the same address, chain and network always
// produce the same DID, and Decode recovers the address exactly. The chain
// and network labels are carried in the string form only; they are not part
// of the binary payload.
//
// A decoded identifier whose padding bytes are non-zero belongs to an
// identity that is not controlled by an Ethereum address. Decode reports
// this as a valid "no address" outcome rather than an error; callers must
// branch on it explicitly:
//
//	addr, ok, err := did.Decode(d)
//	if err != nil {
//	    // malformed input
//	}
//	if !ok {
//	    // valid DID, but not Ethereum-controlled
//	}
package did
