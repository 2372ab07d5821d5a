// Package server implements the receiver side of the agent handshake.
//
// A Handshake serves two endpoints under the agent's advertised service
// endpoint:
//
//   - POST /initiate — issues a fresh, unpredictable challenge bound to the
//     presented session id and remembers the claimed initiator DID.
//   - POST /callback — recovers the signer of the canonical
//     {sessionId, challenge} message, compares it against the address
//     decoded from the claimed DID, and confirms with the
//     "handshake_completed" status marker on an exact match.
//
// Sessions live in process memory only and are dropped once the callback
// round resolves, successfully or not. Callers needing durability or
// expiry add it at a higher layer.
package server
