// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package evmone registers engines backed by the evmone EVMC library.
package evmone

import (
	"fmt"

	"github.com/Fantom-foundation/Tosca-host/go/interpreter/evmc"
	"github.com/Fantom-foundation/Tosca-host/go/lib"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
)

// LibraryBase is the base name of the evmone library file.
const LibraryBase = "evmone"

const newestSupportedRevision = evmc.NewestSupportedRevision

// Config selects the evmone library instance to load. A nil configuration
// loads the library from the dynamic loader's search path and runs the newest
// supported revision.
type Config struct {
	Dir      string // < directory holding the library; empty for the search path
	Revision tosca.Revision
}

func init() {
	// The basic configuration is registered as the default "evmone" engine
	// and as "evmone-basic".
	tosca.MustRegisterEngineFactory("evmone", func(config any) (tosca.Engine, error) {
		return newEngine(config, nil)
	})
	tosca.MustRegisterEngineFactory("evmone-basic", func(config any) (tosca.Engine, error) {
		return newEngine(config, nil)
	})
	tosca.MustRegisterEngineFactory("evmone-advanced", func(config any) (tosca.Engine, error) {
		return newEngine(config, map[string]string{"advanced": "on"})
	})
}

func newEngine(config any, options map[string]string) (tosca.Engine, error) {
	cfg, err := parseConfig(config)
	if err != nil {
		return nil, err
	}
	if cfg.Revision > newestSupportedRevision {
		return nil, fmt.Errorf("unsupported revision: %v", cfg.Revision)
	}
	library := lib.LibraryName(LibraryBase)
	if cfg.Dir != "" {
		library = lib.Resolve(cfg.Dir, LibraryBase)
	}
	engine, err := evmc.NewEvmcEngine(evmc.Config{
		Library:  library,
		Revision: cfg.Revision,
		Options:  options,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load evmone library: %w", err)
	}
	return engine, nil
}

func parseConfig(config any) (Config, error) {
	switch c := config.(type) {
	case nil:
		return Config{Revision: newestSupportedRevision}, nil
	case Config:
		return c, nil
	case *Config:
		if c == nil {
			return Config{Revision: newestSupportedRevision}, nil
		}
		return *c, nil
	}
	return Config{}, fmt.Errorf("invalid configuration for evmone engine: %T", config)
}
