// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"slices"

	cliUtils "github.com/Fantom-foundation/Tosca-host/go/driver/cli"
	"github.com/Fantom-foundation/Tosca-host/go/interpreter/evmc"
	"github.com/Fantom-foundation/Tosca-host/go/interpreter/evmone"
	"github.com/urfave/cli/v2"
	"golang.org/x/exp/maps"
)

var engineFlag = &cli.StringFlag{
	Name:    "engine",
	Aliases: []string{"e"},
	Usage:   "engine executing the programs; evmc loads the library given by --library",
	Value:   "evmc",
}

// getEngineConfig resolves the engine selected on the command line and the
// configuration to create it with.
func getEngineConfig(context *cli.Context) (string, any, error) {
	revision, err := cliUtils.RevisionFlag.Fetch(context)
	if err != nil {
		return "", nil, err
	}
	evmoneConfig := func() any { return evmone.Config{Revision: revision} }
	var allowedEngines = map[string]func() any{
		"evmc": func() any {
			return evmc.Config{
				Library:  cliUtils.LibraryFlag.Fetch(context),
				Revision: revision,
			}
		},
		"evmone":          evmoneConfig,
		"evmone-basic":    evmoneConfig,
		"evmone-advanced": evmoneConfig,
	}

	name := context.String(engineFlag.Name)
	if f, ok := allowedEngines[name]; ok {
		return name, f(), nil
	}
	names := maps.Keys(allowedEngines)
	slices.Sort(names)
	return "", nil, fmt.Errorf("invalid engine identifier, use one of: %v", names)
}
