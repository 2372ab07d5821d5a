// Package payment implements the client half of the delegated-registration
// settlement protocol.
//
// Settlement is a two-state exchange with an external service:
//
//  1. POST /register with the signed registration request. The service may
//     answer 402 Payment Required with a JSON body describing what it
//     accepts.
//  2. Resubmit the identical request once, carrying a payment proof in the
//     X-Payment header.
//
// The payment-required signal is an expected intermediate state, not an
// error, and the single resubmission here is the only automatic retry in
// the module. How a proof is produced (USDC transfer authorization or
// otherwise) is the caller's concern, supplied through ProofProvider;
// settlement mechanics stay external.
package payment
