// Package handshake implements the challenge-response mutual-authentication
// protocol between two registered agents.
//
// # Protocol
//
// The initiator resolves both parties through the on-chain registry, then
// drives a two-step exchange against the receiver's advertised service
// endpoint:
//
//  1. POST {serviceEndpoint}/initiate with {sessionId, initiatorDid,
//     initiatorChainId}. The receiver answers with a fresh, unpredictable
//     challenge for that session.
//  2. POST {serviceEndpoint}/callback with {sessionId, challenge,
//     signature}, where signature is the initiator's secp256k1 signature
//     over the canonical {sessionId, challenge} message. The receiver
//     recovers the signer, compares it against the address decoded from the
//     initiator's DID, and confirms with status "handshake_completed".
//
// The session id only needs uniqueness within the handshake's lifetime; the
// challenge carries the unguessability requirement.
//
// # Canonicalization
//
// Signer and verifier must hash byte-identical messages or every signature
// fails verification. CanonicalMessage is the single source of those bytes:
// a JSON object with the fixed field order sessionId, challenge and no
// extraneous whitespace. The message is hashed with the EIP-191 personal
// message prefix before signing.
//
// # Outcomes
//
// A rejected handshake (bad signature, transport failure, mismatched
// session) is an expected protocol outcome, reported as a false completion,
// never as an error. Errors are reserved for conditions that prevent the
// protocol from starting at all, such as an unregistered agent.
package handshake
