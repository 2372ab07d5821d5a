// Package client provides the JSON-over-HTTP client used to talk to peer
// agent endpoints and to the delegated-payment settlement service.
//
// Peer endpoints are untrusted and may hang, so every request goes through
// a caller-configurable timeout and takes a context.Context. Responses are
// decoded into the caller's value; non-2xx statuses are returned as
// *StatusError so callers can branch on specific codes (the payment flow
// branches on 402).
package client
