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

// Package agentid provides version information for agentid-go and the
// protocol revisions it implements.
package agentid

const (
	// Version is the current version of agentid-go
	Version = "1.0.0"

	// HandshakeProtocolVersion is the agent handshake protocol revision this
	// library speaks on the /initiate and /callback endpoints
	HandshakeProtocolVersion = "1.0"

	// RegistryDomainVersion is the EIP-712 domain version used for
	// delegated registration requests
	RegistryDomainVersion = "1"
)

// VersionInfo contains detailed version information
type VersionInfo struct {
	AgentIDVersion           string
	HandshakeProtocolVersion string
	RegistryDomainVersion    string
}

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		AgentIDVersion:           Version,
		HandshakeProtocolVersion: HandshakeProtocolVersion,
		RegistryDomainVersion:    RegistryDomainVersion,
	}
}
