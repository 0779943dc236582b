// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package tosca

import (
	"errors"
	"slices"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestEngineRegistry_CanRegisterAndCreateEngines(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := NewMockEngine(ctrl)

	const name = "TestEngineRegistry_CanRegisterAndCreateEngines"
	var seenConfig any
	factory := func(config any) (Engine, error) {
		seenConfig = config
		return engine, nil
	}
	if err := RegisterEngineFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := NewEngine(name, "some config")
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if got != engine {
		t.Errorf("unexpected engine, wanted %v, got %v", engine, got)
	}
	if seenConfig != "some config" {
		t.Errorf("configuration was not forwarded, got %v", seenConfig)
	}

	if _, err := NewEngine("testengineregistry_cancreateandregisterengines_unknown"); err == nil {
		t.Errorf("expected lookup of unknown engine to fail")
	}
}

func TestEngineRegistry_NamesAreCaseInsensitive(t *testing.T) {
	const name = "TestEngineRegistry_NamesAreCaseInsensitive"
	factory := func(any) (Engine, error) { return nil, nil }
	if err := RegisterEngineFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetEngineFactory("testengineregistry_namesarecaseinsensitive") == nil {
		t.Errorf("lookup with different case failed")
	}
	if !slices.Contains(GetRegisteredEngineNames(), "testengineregistry_namesarecaseinsensitive") {
		t.Errorf("registered name is not listed")
	}
	if _, found := GetAllRegisteredEngines()["testengineregistry_namesarecaseinsensitive"]; !found {
		t.Errorf("registered factory is not listed")
	}
}

func TestEngineRegistry_FactoryErrorsArePropagated(t *testing.T) {
	const name = "TestEngineRegistry_FactoryErrorsArePropagated"
	injected := errors.New("injected error")
	MustRegisterEngineFactory(name, func(any) (Engine, error) { return nil, injected })
	if _, err := NewEngine(name); !errors.Is(err, injected) {
		t.Errorf("unexpected error, wanted %v, got %v", injected, err)
	}
}

func TestEngineRegistry_TooManyConfigurationsAreRejected(t *testing.T) {
	if _, err := NewEngine("something", 1, 2); err == nil {
		t.Errorf("expected error, got nil")
	}
}

func TestEngineRegistry_MultipleRegistrationsCauseError(t *testing.T) {
	const name = "TestEngineRegistry_MultipleRegistrationsCauseError"
	factory := func(any) (Engine, error) { return nil, nil }
	if err := RegisterEngineFactory(name, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterEngineFactory(name, factory); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestEngineRegistry_NilFactoriesAreRejected(t *testing.T) {
	const name = "something"
	if err := RegisterEngineFactory(name, nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestEngineRegistry_MustRegisterPanicsOnDuplicates(t *testing.T) {
	const name = "TestEngineRegistry_MustRegisterPanicsOnDuplicates"
	factory := func(any) (Engine, error) { return nil, nil }
	MustRegisterEngineFactory(name, factory)
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	MustRegisterEngineFactory(name, factory)
}
