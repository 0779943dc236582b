// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package evmc

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/evmc/v11/bindings/go/evmc"
)

func init() {
	tosca.MustRegisterEngineFactory("evmc", func(config any) (tosca.Engine, error) {
		var cfg Config
		switch c := config.(type) {
		case Config:
			cfg = c
		case *Config:
			if c == nil {
				return nil, fmt.Errorf("invalid configuration: nil")
			}
			cfg = *c
		default:
			return nil, fmt.Errorf("invalid configuration for evmc engine: %T", config)
		}
		return NewEvmcEngine(cfg)
	})
}

// Config is the configuration accepted by the "evmc" engine factory.
type Config struct {
	Library  string            // < file name or path of the EVMC library
	Revision tosca.Revision    // < the revision executions are run with
	Options  map[string]string // < implementation specific options
}

// NewEvmcEngine loads the configured library and applies all options.
func NewEvmcEngine(config Config) (*EvmcEngine, error) {
	if config.Library == "" {
		return nil, fmt.Errorf("invalid configuration: no library")
	}
	if _, err := toEvmcRevision(config.Revision); err != nil {
		return nil, err
	}
	engine, err := LoadEvmcEngine(config.Library)
	if err != nil {
		return nil, err
	}
	engine.revision = config.Revision
	for property, value := range config.Options {
		if err := engine.SetOption(property, value); err != nil {
			return nil, errors.Join(
				fmt.Errorf("failed to set option %s=%s: %w", property, value, err),
				engine.Release(),
			)
		}
	}
	return engine, nil
}

// LoadEvmcEngine attempts to load an Engine implementation from a given
// library. The `library` parameter should name the library file; see the lib
// package for resolving platform specific file names.
func LoadEvmcEngine(library string) (*EvmcEngine, error) {
	vm, err := evmc.Load(library)
	if err != nil {
		return nil, err
	}
	return &EvmcEngine{vm: vm, revision: NewestSupportedRevision}, nil
}

// EvmcEngine is an Engine implementation accessible through the EVMC library.
type EvmcEngine struct {
	vm       *evmc.VM
	revision tosca.Revision
}

// SetOption enables the configuration of implementation specific options.
func (e *EvmcEngine) SetOption(property string, value string) error {
	if e.vm == nil {
		return &tosca.UsageError{Op: "set option", State: "released"}
	}
	return e.vm.SetOption(property, value)
}

// SetRevision selects the revision used by future executions.
func (e *EvmcEngine) SetRevision(revision tosca.Revision) error {
	if _, err := toEvmcRevision(revision); err != nil {
		return err
	}
	e.revision = revision
	return nil
}

func (e *EvmcEngine) Revision() tosca.Revision {
	return e.revision
}

// Name returns the name and version reported by the loaded library.
func (e *EvmcEngine) Name() string {
	if e.vm == nil {
		return "released"
	}
	return e.vm.Name() + " " + e.vm.Version()
}

func (e *EvmcEngine) Execute(host tosca.Host, msg tosca.Message, code tosca.Code) (tosca.Result, error) {
	if e.vm == nil {
		return tosca.Result{}, &tosca.UsageError{Op: "execute", State: "released"}
	}
	revision, err := toEvmcRevision(e.revision)
	if err != nil {
		return tosca.Result{}, err
	}
	kind, err := toEvmcCallKind(msg.Kind)
	if err != nil {
		return tosca.Result{}, err
	}
	gas, err := msg.Gas.Int64()
	if err != nil {
		return tosca.Result{}, fmt.Errorf("invalid gas: %w", err)
	}

	ctx := &hostContext{host: host}

	// Forward the execution call to the underlying EVM implementation.
	result, err := e.vm.Execute(
		ctx,
		revision,
		kind,
		msg.Static,
		msg.Depth,
		gas,
		evmc.Address(msg.Destination),
		evmc.Address(msg.Sender),
		msg.Input,
		evmc.Hash(msg.Value),
		code,
	)

	// Errors reported by the host void the execution, whatever the
	// engine made of them.
	if ctx.err != nil {
		return tosca.Result{}, ctx.err
	}
	return toResult(result, err)
}

// Release destroys the VM instance. It may only be called once.
func (e *EvmcEngine) Release() error {
	if e.vm == nil {
		return &tosca.UsageError{Op: "release", State: "released"}
	}
	e.vm.Destroy()
	e.vm = nil
	return nil
}

// toResult translates the outcome of an EVMC execution.
func toResult(result evmc.Result, err error) (tosca.Result, error) {
	// If no error was reported, the processing stopped with a STOP,
	// RETURN, or SELF-DESTRUCT instruction.
	if err == nil {
		return tosca.Result{
			Status:  tosca.Success,
			GasLeft: gasToWord(result.GasLeft),
			Output:  result.Output,
		}, nil
	}

	var status evmc.Error
	if !errors.As(err, &status) {
		return tosca.Result{}, fmt.Errorf("unexpected EVMC execution error: %w", err)
	}
	if status == evmc.Revert {
		// Reverts keep the remaining gas and the produced output.
		return tosca.Result{
			Status:  tosca.Revert,
			GasLeft: gasToWord(result.GasLeft),
			Output:  result.Output,
		}, nil
	}
	// Any other failure consumes all gas and produces no output.
	return tosca.Result{Status: tosca.StatusCode(status)}, nil
}

func gasToWord(gas int64) tosca.Word {
	if gas < 0 {
		return tosca.Word{}
	}
	return tosca.WordFromUint64(uint64(gas))
}

// NewestSupportedRevision is the latest revision engines can be run with.
// Cancun engines call transient storage functions which the host binding of
// evmc v11 leaves unset, so executing TLOAD or TSTORE would crash the process.
const NewestSupportedRevision = tosca.R12_Shanghai

const ErrTransientStorageUnsupported = tosca.ConstError("revision Cancun requires transient storage, which is not supported by the EVMC host binding")

func toEvmcRevision(revision tosca.Revision) (evmc.Revision, error) {
	switch revision {
	case tosca.R07_Istanbul:
		return evmc.Istanbul, nil
	case tosca.R09_Berlin:
		return evmc.Berlin, nil
	case tosca.R10_London:
		return evmc.London, nil
	case tosca.R11_Paris:
		return evmc.Paris, nil
	case tosca.R12_Shanghai:
		return evmc.Shanghai, nil
	case tosca.R13_Cancun:
		return 0, ErrTransientStorageUnsupported
	default:
		return 0, fmt.Errorf("unsupported revision: %v", revision)
	}
}

func toEvmcCallKind(kind tosca.CallKind) (evmc.CallKind, error) {
	switch kind {
	case tosca.Call:
		return evmc.Call, nil
	case tosca.DelegateCall:
		return evmc.DelegateCall, nil
	case tosca.CallCode:
		return evmc.CallCode, nil
	case tosca.Create:
		return evmc.Create, nil
	case tosca.Create2:
		return evmc.Create2, nil
	default:
		return 0, fmt.Errorf("unsupported call kind: %v", kind)
	}
}

func fromEvmcCallKind(kind evmc.CallKind) (tosca.CallKind, error) {
	switch kind {
	case evmc.Call:
		return tosca.Call, nil
	case evmc.DelegateCall:
		return tosca.DelegateCall, nil
	case evmc.CallCode:
		return tosca.CallCode, nil
	case evmc.Create:
		return tosca.Create, nil
	case evmc.Create2:
		return tosca.Create2, nil
	default:
		return 0, fmt.Errorf("unsupported call kind: %v", kind)
	}
}
