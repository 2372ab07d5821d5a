// Package registration orchestrates agent registration against the
// on-chain registry.
//
// Register runs the direct, fee-bearing flow: validate the key material,
// derive the address and DID, refuse duplicate registrations, submit the
// registration transaction with the fixed native-token fee, and re-fetch
// the settled record. Registration is deliberately not idempotent — a
// second attempt for an already-registered address fails with
// ErrAlreadyRegistered rather than silently succeeding.
//
// RegisterDelegated runs the meta-transaction flow: it builds a
// registration request bound to the registry's current nonce and an
// expiry, signs it as EIP-712 typed data under the AgentRegistry domain,
// and hands it to the external settlement service (see pkg/payment). The
// local half ends at constructing and signing the request; payment and
// submission mechanics belong to the service.
//
// Concurrent registration attempts for the same address are not serialized
// here; the registry's own duplicate rejection is the correctness backstop.
package registration
