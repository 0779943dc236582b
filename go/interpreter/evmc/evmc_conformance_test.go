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
	"os"
	"testing"

	"github.com/Fantom-foundation/Tosca-host/go/examples"
	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/session"
	"github.com/Fantom-foundation/Tosca-host/go/simulator"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
)

// The tests in this file require a natively compiled EVMC library, e.g.
//
//	EVMC_LIBRARY=/path/to/libevmone.so go test ./go/interpreter/evmc/...
func getLibrary(t *testing.T) string {
	t.Helper()
	library := os.Getenv("EVMC_LIBRARY")
	if library == "" {
		t.Skip("EVMC_LIBRARY not set")
	}
	return library
}

func openSession(t *testing.T, library string) *session.Session {
	t.Helper()
	s, err := session.Open("evmc", Config{Library: library, Revision: NewestSupportedRevision}, fixture.Default())
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}
	t.Cleanup(func() {
		if s.State() == session.Live {
			if err := s.Release(); err != nil {
				t.Errorf("failed to release session: %v", err)
			}
		}
	})
	return s
}

func TestEvmcEngine_SamplePrograms(t *testing.T) {
	library := getLibrary(t)
	for _, program := range examples.GetPrograms(fixture.Default()) {
		t.Run(program.Name, func(t *testing.T) {
			s := openSession(t, library)
			res, err := program.RunOn(s)
			if err := program.Check(res, err, s.Records()); err != nil {
				t.Errorf("program %s failed: %v", program.Name, err)
			}
		})
	}
}

func TestEvmcEngine_StopKeepsAllGas(t *testing.T) {
	s := openSession(t, getLibrary(t))
	f := s.Host().Fixture()
	res, err := s.Execute(f.Message(nil), tosca.Code{0x00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := f.TxGas, res.GasLeft; want != got {
		t.Errorf("unexpected gas left, wanted %v, got %v", want, got)
	}
	if got := s.Invocations(); got != 0 {
		t.Errorf("unexpected invocations: %d", got)
	}
}

func TestEvmcEngine_StorageViolationIsReported(t *testing.T) {
	s := openSession(t, getLibrary(t))

	// sload(0x43)
	code := tosca.Code{0x60, 0x43, 0x54, 0x00}
	_, err := s.Execute(s.Host().Fixture().Message(nil), code)
	var violation *tosca.ContractViolation
	if !errors.As(err, &violation) || violation.Callback != simulator.GetStorage {
		t.Errorf("expected getStorage violation, got %v", err)
	}
	if want, got := session.Live, s.State(); want != got {
		t.Errorf("unexpected state, wanted %v, got %v", want, got)
	}
}

func TestEvmcEngine_SessionsCanBeReopened(t *testing.T) {
	library := getLibrary(t)
	for i := 0; i < 3; i++ {
		s := openSession(t, library)
		if err := s.Release(); err != nil {
			t.Fatalf("failed to release session: %v", err)
		}
	}
}
