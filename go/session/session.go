// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package session binds an engine to a conformance simulator for the
// duration of a sequence of executions.
package session

import (
	"fmt"

	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/simulator"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
)

// State is the lifecycle state of a Session.
type State int

const (
	Created State = iota
	Live
	Released
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Live:
		return "live"
	case Released:
		return "released"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session pairs an engine with the simulator answering its callbacks. Any
// contract violation reported by the simulator during an execution voids the
// result of that execution. A Session is not safe for concurrent use;
// distinct sessions are independent of each other.
type Session struct {
	engine     tosca.Engine
	simulator  *simulator.Simulator
	state      State
	executions int
}

// New creates a live session on the given engine and simulator. The
// simulator's invocation counter is reset. Ownership of the engine is
// transferred to the session.
func New(engine tosca.Engine, sim *simulator.Simulator) (*Session, error) {
	if engine == nil {
		return nil, fmt.Errorf("invalid session: no engine")
	}
	if sim == nil {
		return nil, fmt.Errorf("invalid session: no simulator")
	}
	res := &Session{
		engine:    engine,
		simulator: sim,
		state:     Created,
	}
	sim.ResetInvocations()
	res.state = Live
	return res, nil
}

// Open creates the named engine through the engine registry and binds it to
// a new simulator for the given fixture.
func Open(engineName string, config any, f *fixture.Fixture, opts ...simulator.Option) (*Session, error) {
	engine, err := tosca.NewEngine(engineName, config)
	if err != nil {
		return nil, err
	}
	res, err := New(engine, simulator.New(f, opts...))
	if err != nil {
		return nil, fmt.Errorf("%w (release: %v)", err, engine.Release())
	}
	return res, nil
}

// Execute runs the given code for the given message on the bound engine.
// If the simulator reported a contract violation while the engine was
// running, the result is discarded and the first such violation is returned.
func (s *Session) Execute(msg tosca.Message, code tosca.Code) (tosca.Result, error) {
	if s.state != Live {
		return tosca.Result{}, &tosca.UsageError{Op: "execute", State: s.state.String()}
	}
	s.executions++
	mark := s.simulator.Violations()
	res, err := s.engine.Execute(s.simulator, msg, code)
	if violations := s.simulator.ViolationsSince(mark); len(violations) > 0 {
		return tosca.Result{}, violations[0]
	}
	if err != nil {
		return tosca.Result{}, fmt.Errorf("execution failed: %w", err)
	}
	return res, nil
}

// Release frees the engine. It must be called exactly once. Afterwards only
// the accessors of the session may be used.
func (s *Session) Release() error {
	if s.state != Live {
		return &tosca.UsageError{Op: "release", State: s.state.String()}
	}
	s.state = Released
	s.simulator.Close()
	return s.engine.Release()
}

func (s *Session) State() State {
	return s.state
}

// Invocations is the number of callbacks issued by the engine since the
// session was created.
func (s *Session) Invocations() int {
	return s.simulator.Invocations()
}

func (s *Session) Records() []simulator.Record {
	return s.simulator.Records()
}

// Violations is the total number of contract violations reported by the
// simulator, including those of earlier executions.
func (s *Session) Violations() int {
	return s.simulator.Violations()
}

// Executions is the number of Execute calls accepted in the live state.
func (s *Session) Executions() int {
	return s.executions
}

// Host provides the simulator bound to this session.
func (s *Session) Host() *simulator.Simulator {
	return s.simulator
}
