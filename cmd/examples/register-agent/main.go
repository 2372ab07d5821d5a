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

// Command register-agent registers an agent identity on the on-chain
// registry, either directly (paying the native-token fee) or through the
// delegated-payment settlement service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/agentid-project/agentid-go/pkg/payment"
	"github.com/agentid-project/agentid-go/pkg/registration"
	"github.com/agentid-project/agentid-go/pkg/registry"
)

func main() {
	var (
		keyHex      = flag.String("key", os.Getenv("AGENT_PRIVATE_KEY"), "Agent private key (hex)")
		chainID     = flag.Uint64("chain", registry.ChainPolygonAmoy, "Chain id")
		rpcURL      = flag.String("rpc", "", "RPC endpoint override (empty for chain default)")
		description = flag.String("description", "example agent", "Agent description")
		endpoint    = flag.String("endpoint", "http://127.0.0.1:8080", "Agent service endpoint")
		delegated   = flag.Bool("delegated", false, "Register through the settlement service")
		settlement  = flag.String("settlement", "http://127.0.0.1:4021", "Settlement service URL (delegated mode)")
	)
	flag.Parse()

	if *keyHex == "" {
		log.Fatal("missing -key (or AGENT_PRIVATE_KEY)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	registrar := registration.NewRegistrar()

	if *delegated {
		settle := payment.NewSettlementClient(*settlement, nil, nil)
		resp, err := registrar.RegisterDelegated(ctx, *keyHex, *description, *chainID, *endpoint, settle)
		if err != nil {
			log.Fatalf("delegated registration failed: %v", err)
		}
		fmt.Printf("registered via settlement: tx=%s agentId=%d\n", resp.Data.TxHash, resp.Data.AgentID)
		return
	}

	result, err := registrar.Register(ctx, *keyHex, *description, *chainID, *endpoint, *rpcURL)
	if err != nil {
		log.Fatalf("registration failed: %v", err)
	}

	fmt.Printf("registered agent\n")
	fmt.Printf("  did:      %s\n", result.DID)
	fmt.Printf("  tx:       %s\n", result.TxHash)
	fmt.Printf("  endpoint: %s\n", result.ServiceEndpoint)
	if result.AgentID != nil {
		fmt.Printf("  agentId:  %s\n", result.AgentID)
	}
}
