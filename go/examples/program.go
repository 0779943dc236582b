// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package examples provides byte-code programs exercising the host callbacks
// of an engine in ways compatible with a given fixture.
package examples

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Fantom-foundation/Tosca-host/go/session"
	"github.com/Fantom-foundation/Tosca-host/go/simulator"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
)

// Program is a piece of byte-code together with a description of the
// interaction with the host a conforming engine exhibits when running it.
type Program struct {
	Name string
	Code tosca.Code

	// Callbacks lists the callbacks the program may trigger, in any order
	// and number.
	Callbacks []string

	// Status is the expected outcome of a run without violations.
	Status tosca.StatusCode

	// Violation names the callback expected to report a contract violation,
	// if not empty.
	Violation string
}

// Hash computes the keccak256 hash of the program's code.
func (p *Program) Hash() tosca.Word {
	return keccak(p.Code)
}

// RunOn executes the program in the given session, using the top-level
// message of the session's fixture.
func (p *Program) RunOn(s *session.Session) (tosca.Result, error) {
	return s.Execute(s.Host().Fixture().Message(nil), p.Code)
}

// Check verifies that the outcome of running the program matches its
// description. The given records are the callbacks observed during the run.
func (p *Program) Check(res tosca.Result, err error, records []simulator.Record) error {
	var errs []error
	if p.Violation != "" {
		var violation *tosca.ContractViolation
		if !errors.As(err, &violation) {
			errs = append(errs, fmt.Errorf("expected violation in %s, got %v", p.Violation, err))
		} else if violation.Callback != p.Violation {
			errs = append(errs, fmt.Errorf("expected violation in %s, got %v", p.Violation, violation))
		}
	} else if err != nil {
		errs = append(errs, fmt.Errorf("unexpected error: %w", err))
	} else if res.Status != p.Status {
		errs = append(errs, fmt.Errorf("unexpected status, wanted %v, got %v", p.Status, res.Status))
	}
	for _, record := range records {
		if !slices.Contains(p.Callbacks, record.Callback) {
			errs = append(errs, fmt.Errorf("unexpected callback %v", record))
		}
	}
	return errors.Join(errs...)
}
