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
	"math"
	"reflect"
	"testing"

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/evmc/v11/bindings/go/evmc"
)

func TestEvmcEngine_RevisionConversion(t *testing.T) {
	tests := []struct {
		tosca tosca.Revision
		evmc  evmc.Revision
	}{
		{tosca.R07_Istanbul, evmc.Istanbul},
		{tosca.R09_Berlin, evmc.Berlin},
		{tosca.R10_London, evmc.London},
		{tosca.R11_Paris, evmc.Paris},
		{tosca.R12_Shanghai, evmc.Shanghai},
	}

	for _, test := range tests {
		want := test.evmc
		got, err := toEvmcRevision(test.tosca)
		if err != nil {
			t.Fatalf("unexpected error during conversion: %v", err)
		}
		if want != got {
			t.Errorf("unexpected conversion of %v, wanted %v, got %v", test.tosca, want, got)
		}
	}
}

func TestEvmcEngine_CancunIsRejected(t *testing.T) {
	if _, err := toEvmcRevision(tosca.R13_Cancun); !errors.Is(err, ErrTransientStorageUnsupported) {
		t.Errorf("unexpected error for Cancun, wanted %v, got %v", ErrTransientStorageUnsupported, err)
	}
	if _, err := NewEvmcEngine(Config{Library: "libevmone.so", Revision: tosca.R13_Cancun}); !errors.Is(err, ErrTransientStorageUnsupported) {
		t.Errorf("engine creation for Cancun should fail before loading, got %v", err)
	}
	engine := &EvmcEngine{revision: NewestSupportedRevision}
	if err := engine.SetRevision(tosca.R13_Cancun); err == nil {
		t.Errorf("setting revision Cancun should fail")
	}
	if want, got := NewestSupportedRevision, engine.Revision(); want != got {
		t.Errorf("failed update must not change revision, wanted %v, got %v", want, got)
	}
}

func TestEvmcEngine_HostContextHasNoTransientStorageHandlers(t *testing.T) {
	ctxType := reflect.TypeOf(&hostContext{})
	for _, name := range []string{"GetTransientStorage", "SetTransientStorage"} {
		if _, found := ctxType.MethodByName(name); found {
			t.Errorf("host context should not provide %s", name)
		}
	}
}

func TestEvmcEngine_RevisionConversionFailsOnUnknownRevision(t *testing.T) {
	_, err := toEvmcRevision(tosca.Revision(math.MaxInt))
	if err == nil {
		t.Errorf("expected a conversion failure, got nothing")
	}
}

func TestEvmcEngine_CallKindConversionRoundTrip(t *testing.T) {
	kinds := []tosca.CallKind{tosca.Call, tosca.DelegateCall, tosca.CallCode, tosca.Create, tosca.Create2}
	for _, kind := range kinds {
		converted, err := toEvmcCallKind(kind)
		if err != nil {
			t.Fatalf("failed to convert %v: %v", kind, err)
		}
		restored, err := fromEvmcCallKind(converted)
		if err != nil {
			t.Fatalf("failed to convert %v back: %v", converted, err)
		}
		if kind != restored {
			t.Errorf("unexpected round trip result, wanted %v, got %v", kind, restored)
		}
	}
}

func TestEvmcEngine_CallKindConversionFailsOnUnknownKind(t *testing.T) {
	if _, err := toEvmcCallKind(tosca.CallKind(42)); err == nil {
		t.Errorf("expected a conversion failure for tosca kind")
	}
	if _, err := fromEvmcCallKind(evmc.CallKind(42)); err == nil {
		t.Errorf("expected a conversion failure for evmc kind")
	}
}

func TestEvmcEngine_SuccessfulResultIsTranslated(t *testing.T) {
	res, err := toResult(evmc.Result{Output: []byte{1, 2}, GasLeft: 17}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tosca.Result{
		Status:  tosca.Success,
		GasLeft: tosca.WordFromUint64(17),
		Output:  tosca.Data{1, 2},
	}
	if !reflect.DeepEqual(want, res) {
		t.Errorf("unexpected result, wanted %v, got %v", want, res)
	}
}

func TestEvmcEngine_RevertKeepsOutputAndGas(t *testing.T) {
	res, err := toResult(evmc.Result{Output: []byte{3}, GasLeft: 5}, evmc.Revert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := tosca.Result{
		Status:  tosca.Revert,
		GasLeft: tosca.WordFromUint64(5),
		Output:  tosca.Data{3},
	}
	if !reflect.DeepEqual(want, res) {
		t.Errorf("unexpected result, wanted %v, got %v", want, res)
	}
}

func TestEvmcEngine_FailuresAreTranslatedToStatusCodes(t *testing.T) {
	codes := []tosca.StatusCode{
		tosca.Failure,
		tosca.OutOfGas,
		tosca.InvalidInstruction,
		tosca.UndefinedInstruction,
		tosca.StackOverflow,
		tosca.StackUnderflow,
		tosca.BadJumpDestination,
		tosca.InvalidMemoryAccess,
		tosca.StaticModeViolation,
		tosca.InternalError,
	}
	for _, code := range codes {
		t.Run(code.String(), func(t *testing.T) {
			res, err := toResult(evmc.Result{Output: []byte{1}, GasLeft: 5}, evmc.Error(code))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := tosca.Result{Status: code}
			if !reflect.DeepEqual(want, res) {
				t.Errorf("unexpected result, wanted %v, got %v", want, res)
			}
		})
	}
}

func TestEvmcEngine_StatusCodesMatchEvmcErrors(t *testing.T) {
	if want, got := tosca.Failure, tosca.StatusCode(evmc.Failure); want != got {
		t.Errorf("unexpected failure code, wanted %v, got %v", want, got)
	}
	if want, got := tosca.Revert, tosca.StatusCode(evmc.Revert); want != got {
		t.Errorf("unexpected revert code, wanted %v, got %v", want, got)
	}
}

func TestEvmcEngine_OtherErrorsAreForwarded(t *testing.T) {
	injected := fmt.Errorf("injected")
	_, err := toResult(evmc.Result{}, injected)
	if !errors.Is(err, injected) {
		t.Errorf("expected forwarded error, got %v", err)
	}
}

func TestEvmcEngine_NegativeGasIsTranslatedToZero(t *testing.T) {
	if got := gasToWord(-1); !got.IsZero() {
		t.Errorf("unexpected gas, got %v", got)
	}
}

func TestEvmcEngine_FactoryRejectsInvalidConfigurations(t *testing.T) {
	configs := map[string]any{
		"nil":          nil,
		"wrong type":   "libevmone.so",
		"nil pointer":  (*Config)(nil),
		"no library":   Config{},
		"bad revision": Config{Library: "libevmone.so", Revision: tosca.Revision(99)},
	}
	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			if _, err := tosca.NewEngine("evmc", config); err == nil {
				t.Errorf("expected configuration to be rejected")
			}
		})
	}
}

func TestEvmcEngine_FactoryIsRegistered(t *testing.T) {
	if tosca.GetEngineFactory("evmc") == nil {
		t.Errorf("evmc engine factory not registered")
	}
}

func TestEvmcEngine_ReleasedEngineRejectsOperations(t *testing.T) {
	engine := &EvmcEngine{}
	var usage *tosca.UsageError
	if _, err := engine.Execute(nil, tosca.Message{}, nil); !errors.As(err, &usage) {
		t.Errorf("expected usage error on execute, got %v", err)
	}
	if err := engine.Release(); !errors.As(err, &usage) {
		t.Errorf("expected usage error on release, got %v", err)
	}
	if err := engine.SetOption("a", "b"); !errors.As(err, &usage) {
		t.Errorf("expected usage error on set option, got %v", err)
	}
}

func TestEvmcEngine_SetRevisionValidatesInput(t *testing.T) {
	engine := &EvmcEngine{}
	if err := engine.SetRevision(tosca.R12_Shanghai); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := tosca.R12_Shanghai, engine.Revision(); want != got {
		t.Errorf("unexpected revision, wanted %v, got %v", want, got)
	}
	if err := engine.SetRevision(tosca.Revision(99)); err == nil {
		t.Errorf("expected invalid revision to be rejected")
	}
	if want, got := tosca.R12_Shanghai, engine.Revision(); want != got {
		t.Errorf("revision should be unchanged, wanted %v, got %v", want, got)
	}
}
