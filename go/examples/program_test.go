// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"fmt"
	"testing"

	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/session"
	"github.com/Fantom-foundation/Tosca-host/go/simulator"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"go.uber.org/mock/gomock"
)

func TestPrograms_NamesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, program := range GetPrograms(fixture.Default()) {
		if seen[program.Name] {
			t.Errorf("duplicate program name %s", program.Name)
		}
		seen[program.Name] = true
		if len(program.Code) == 0 {
			t.Errorf("program %s has no code", program.Name)
		}
	}
}

func TestPrograms_DependOnFixture(t *testing.T) {
	f := fixture.Default()
	f.StorageValue = tosca.MustWord("0x06")
	a := GetPrograms(fixture.Default())
	b := GetPrograms(f)
	for i := range a {
		if a[i].Name == "sload" && a[i].Hash() == b[i].Hash() {
			t.Errorf("sload program does not depend on fixture")
		}
	}
}

func TestPrograms_CounterDeploymentConformsToMatchingFixture(t *testing.T) {
	f := fixture.Default()
	f.StorageKey = tosca.Word{}
	f.StorageValue = tosca.WordFromUint64(1)
	for _, program := range GetPrograms(f) {
		if program.Name == "counter_deployment" && program.Violation != "" {
			t.Errorf("no violation expected for matching fixture")
		}
	}
	for _, program := range GetPrograms(fixture.Default()) {
		if program.Name == "counter_deployment" && program.Violation != simulator.SetStorage {
			t.Errorf("violation expected for canonical fixture")
		}
	}
}

func TestProgram_CheckAcceptsExpectedOutcome(t *testing.T) {
	program := Program{
		Name:      "test",
		Callbacks: []string{simulator.GetStorage},
		Status:    tosca.Success,
	}
	records := []simulator.Record{{Seq: 0, Callback: simulator.GetStorage}}
	if err := program.Check(tosca.Result{Status: tosca.Success}, nil, records); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProgram_CheckDetectsDeviations(t *testing.T) {
	program := Program{
		Name:      "test",
		Callbacks: []string{simulator.GetStorage},
		Status:    tosca.Success,
	}
	violation := &tosca.ContractViolation{Callback: simulator.GetStorage}
	tests := map[string]struct {
		res     tosca.Result
		err     error
		records []simulator.Record
	}{
		"wrong status": {
			res: tosca.Result{Status: tosca.Revert},
		},
		"error": {
			err: fmt.Errorf("injected"),
		},
		"violation": {
			err: violation,
		},
		"unexpected callback": {
			res:     tosca.Result{Status: tosca.Success},
			records: []simulator.Record{{Seq: 0, Callback: simulator.EmitLog}},
		},
	}
	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if err := program.Check(test.res, test.err, test.records); err == nil {
				t.Errorf("expected deviation to be detected")
			}
		})
	}
}

func TestProgram_CheckOfExpectedViolation(t *testing.T) {
	program := Program{
		Name:      "test",
		Callbacks: []string{simulator.SetStorage},
		Violation: simulator.SetStorage,
	}
	expected := &tosca.ContractViolation{Callback: simulator.SetStorage}
	if err := program.Check(tosca.Result{}, expected, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	other := &tosca.ContractViolation{Callback: simulator.GetStorage}
	if err := program.Check(tosca.Result{}, other, nil); err == nil {
		t.Errorf("expected violation of wrong callback to be detected")
	}
	if err := program.Check(tosca.Result{Status: tosca.Success}, nil, nil); err == nil {
		t.Errorf("expected missing violation to be detected")
	}
}

func TestProgram_RunOnUsesFixtureMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := tosca.NewMockEngine(ctrl)
	sim := simulator.New(nil)
	s, err := session.New(engine, sim)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	program := GetPrograms(sim.Fixture())[0]
	engine.EXPECT().Execute(sim, sim.Fixture().Message(nil), program.Code).Return(tosca.Result{Status: tosca.Success}, nil)

	res, err := program.RunOn(s)
	if err := program.Check(res, err, s.Records()); err != nil {
		t.Errorf("unexpected deviation: %v", err)
	}
}
