// Package registry provides the client adapter for the on-chain
// AgentRegistry contract.
//
// The Client interface is the only registry surface the rest of the module
// consumes. It is backed by EthereumClient, which speaks to one registry
// deployment on one chain, and by Directory, which hands out cached
// per-chain clients from a static configuration table.
//
// # Chain resolution
//
// Each supported chain id maps to a default RPC endpoint and a default
// registry contract address. Callers may override either per client. An
// unrecognized chain id with no explicit endpoint and contract is a
// configuration error (ErrUnsupportedChain), never a silent default.
//
// # Failure semantics
//
// Remote-call failures are normalized into *RegistryError carrying a
// human-readable cause, extracted from the provider error in a fixed
// priority order: decoded revert reason, raw error data, then the plain
// error message. A lookup for an unregistered address yields
// ErrAgentNotFound rather than a RegistryError.
//
// Records are owned by the external registry. Clients never cache them
// across calls.
package registry
