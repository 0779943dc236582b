// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package simulator implements a strict conformance host. It answers every
// callback an engine may issue with canned values of a fixture, and reports a
// contract violation the moment a callback is invoked with arguments the
// fixture does not expect.
package simulator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/go-ethereum/log"
)

// Names of the callbacks as reported in records and violations.
const (
	AccountExists = "accountExists"
	GetStorage    = "getStorage"
	SetStorage    = "setStorage"
	GetBalance    = "getBalance"
	GetCodeSize   = "getCodeSize"
	GetCodeHash   = "getCodeHash"
	CopyCode      = "copyCode"
	SelfDestruct  = "selfDestruct"
	Call          = "call"
	GetTxContext  = "getTxContext"
	GetBlockHash  = "getBlockHash"
	EmitLog       = "emitLog"
)

// BalancePolicy selects how balance queries for accounts other than the
// fixture's balance account are answered.
type BalancePolicy int

const (
	// BalanceOrZero accepts the zero address in addition to the balance
	// account and reports an empty balance for it.
	BalanceOrZero BalancePolicy = iota
	// StrictBalance only accepts the balance account.
	StrictBalance
)

func (p BalancePolicy) String() string {
	switch p {
	case BalanceOrZero:
		return "balance-or-zero"
	case StrictBalance:
		return "strict"
	}
	return fmt.Sprintf("BalancePolicy(%d)", int(p))
}

// Record is a diagnostic entry describing a single callback invocation.
type Record struct {
	Seq      int    // < 0-based position in the sequence of invocations
	Callback string // < the name of the invoked callback
}

func (r Record) String() string {
	return fmt.Sprintf("%d:%s", r.Seq, r.Callback)
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithLogger makes the simulator trace each invocation and violation on the
// given logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// WithBalancePolicy overrides the default BalanceOrZero policy.
func WithBalancePolicy(policy BalancePolicy) Option {
	return func(s *Simulator) {
		s.balancePolicy = policy
	}
}

// Simulator is a tosca.Host validating all callbacks against a fixture.
// Counters and diagnostics are private to each instance. An instance is
// intended to serve a single engine; still, its accessors may be used
// concurrently with callbacks.
type Simulator struct {
	fixture       *fixture.Fixture
	balancePolicy BalancePolicy
	logger        log.Logger

	mu          sync.Mutex
	invocations int
	records     []Record
	violations  []error
	closed      bool
}

var (
	_ tosca.Host           = (*Simulator)(nil)
	_ tosca.CodeSizeHinter = (*Simulator)(nil)
)

// New creates a simulator for the given fixture. If the fixture is nil, the
// canonical fixture is used.
func New(f *fixture.Fixture, opts ...Option) *Simulator {
	if f == nil {
		f = fixture.Default()
	}
	res := &Simulator{fixture: f}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

// Fixture provides the fixture the simulator is validating against. It must
// not be modified.
func (s *Simulator) Fixture() *fixture.Fixture {
	return s.fixture
}

// Invocations returns the number of callback invocations since creation or
// the last reset, including invocations that resulted in a violation.
func (s *Simulator) Invocations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invocations
}

// Records returns the diagnostic records of all invocations since creation
// or the last reset.
func (s *Simulator) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

// Violations returns the total number of contract violations observed.
func (s *Simulator) Violations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.violations)
}

// FirstViolation returns the first contract violation observed, or nil.
func (s *Simulator) FirstViolation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.violations) == 0 {
		return nil
	}
	return s.violations[0]
}

// ViolationsSince lists the violations observed after the given number of
// violations had been reached, in the order they were reported.
func (s *Simulator) ViolationsSince(mark int) []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mark < 0 {
		mark = 0
	}
	if mark >= len(s.violations) {
		return nil
	}
	return append([]error(nil), s.violations[mark:]...)
}

// ResetInvocations resets the invocation counter and the records. Violation
// statistics are retained.
func (s *Simulator) ResetInvocations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invocations = 0
	s.records = nil
}

// Close makes all future callbacks fail with a usage error.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// enter registers the invocation of the named callback.
func (s *Simulator) enter(callback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return &tosca.UsageError{Op: callback, State: "closed"}
	}
	seq := s.invocations
	s.invocations++
	s.records = append(s.records, Record{Seq: seq, Callback: callback})
	if s.logger != nil {
		s.logger.Debug(fmt.Sprintf("--- %d %s", seq, callback))
	}
	return nil
}

// violation registers and returns a contract violation of the named callback.
func (s *Simulator) violation(callback string, expected string, got string) error {
	err := &tosca.ContractViolation{
		Callback: callback,
		Expected: expected,
		Got:      got,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.violations = append(s.violations, err)
	if s.logger != nil {
		s.logger.Warn("Contract violation", "callback", callback, "expected", expected, "got", got)
	}
	return err
}

func (s *Simulator) AccountExists(tosca.Address) (bool, error) {
	if err := s.enter(AccountExists); err != nil {
		return false, err
	}
	// Accounts always exist.
	return true, nil
}

func (s *Simulator) GetStorage(_ tosca.Address, key tosca.Word) (tosca.Word, error) {
	if err := s.enter(GetStorage); err != nil {
		return tosca.Word{}, err
	}
	if key != s.fixture.StorageKey {
		return tosca.Word{}, s.violation(GetStorage,
			"key "+s.fixture.StorageKey.String(),
			"key "+key.String(),
		)
	}
	return s.fixture.StorageValue, nil
}

func (s *Simulator) SetStorage(_ tosca.Address, key tosca.Word, value tosca.Word) (tosca.StorageStatus, error) {
	if err := s.enter(SetStorage); err != nil {
		return tosca.StorageAssigned, err
	}
	if key != s.fixture.StorageKey || value != s.fixture.StorageValue {
		return tosca.StorageAssigned, s.violation(SetStorage,
			fmt.Sprintf("key %v with value %v", s.fixture.StorageKey, s.fixture.StorageValue),
			fmt.Sprintf("key %v with value %v", key, value),
		)
	}
	return tosca.StorageAdded, nil
}

func (s *Simulator) GetBalance(addr tosca.Address) (tosca.Word, error) {
	if err := s.enter(GetBalance); err != nil {
		return tosca.Word{}, err
	}
	if addr == s.fixture.BalanceAccount {
		return s.fixture.Balance, nil
	}
	if s.balancePolicy == BalanceOrZero && addr == (tosca.Address{}) {
		return tosca.Word{}, nil
	}
	expected := "account " + s.fixture.BalanceAccount.String()
	if s.balancePolicy == BalanceOrZero {
		expected += " or " + tosca.Address{}.String()
	}
	return tosca.Word{}, s.violation(GetBalance, expected, "account "+addr.String())
}

func (s *Simulator) GetCodeSize(addr tosca.Address) (int, error) {
	if err := s.enter(GetCodeSize); err != nil {
		return 0, err
	}
	if addr != s.fixture.BalanceAccount {
		return 0, s.violation(GetCodeSize,
			"account "+s.fixture.BalanceAccount.String(),
			"account "+addr.String(),
		)
	}
	return s.fixture.CodeSize, nil
}

func (s *Simulator) GetCodeHash(addr tosca.Address) (tosca.Word, error) {
	if err := s.enter(GetCodeHash); err != nil {
		return tosca.Word{}, err
	}
	if addr != s.fixture.BalanceAccount {
		return tosca.Word{}, s.violation(GetCodeHash,
			"account "+s.fixture.BalanceAccount.String(),
			"account "+addr.String(),
		)
	}
	return s.fixture.CodeHash, nil
}

func (s *Simulator) CopyCode(addr tosca.Address, offset int, length int) (tosca.Data, error) {
	if err := s.enter(CopyCode); err != nil {
		return nil, err
	}
	code := s.fixture.Code
	if addr != s.fixture.CodeAccount || offset != 0 || length != len(code) {
		return nil, s.violation(CopyCode,
			fmt.Sprintf("account %v, offset 0, length %d", s.fixture.CodeAccount, len(code)),
			fmt.Sprintf("account %v, offset %d, length %d", addr, offset, length),
		)
	}
	return append(tosca.Data(nil), code...), nil
}

// CodeSizeHint reports the size of the fixture code for any account. Hints
// are neither counted nor validated.
func (s *Simulator) CodeSizeHint(tosca.Address) int {
	return len(s.fixture.Code)
}

func (s *Simulator) SelfDestruct(addr tosca.Address, beneficiary tosca.Address) error {
	if err := s.enter(SelfDestruct); err != nil {
		return err
	}
	if addr != s.fixture.TxOrigin || beneficiary != s.fixture.SelfDestructBeneficiary {
		return s.violation(SelfDestruct,
			fmt.Sprintf("origin %v with beneficiary %v", s.fixture.TxOrigin, s.fixture.SelfDestructBeneficiary),
			fmt.Sprintf("origin %v with beneficiary %v", addr, beneficiary),
		)
	}
	return nil
}

// Call answers nested calls and creations with a fixed successful result.
// The nested execution is not simulated.
func (s *Simulator) Call(msg tosca.Message) (tosca.Result, error) {
	if err := s.enter(Call); err != nil {
		return tosca.Result{}, err
	}
	if !msg.Input.Equal(s.fixture.CallInput) {
		return tosca.Result{}, s.violation(Call,
			"input "+s.fixture.CallInput.String(),
			fmt.Sprintf("input %v in %v message from %v to %v", msg.Input, msg.Kind, msg.Sender, msg.Destination),
		)
	}
	return tosca.Result{
		Status:        tosca.Success,
		GasLeft:       s.fixture.CallGasLeft,
		Output:        append(tosca.Data(nil), s.fixture.CallOutput...),
		CreateAddress: s.fixture.CreateAddress,
	}, nil
}

func (s *Simulator) GetTxContext() (tosca.TxContext, error) {
	if err := s.enter(GetTxContext); err != nil {
		return tosca.TxContext{}, err
	}
	return s.fixture.TxContext(), nil
}

func (s *Simulator) GetBlockHash(number tosca.Word) (tosca.Word, error) {
	if err := s.enter(GetBlockHash); err != nil {
		return tosca.Word{}, err
	}
	if number != s.fixture.BlockHashNumber {
		return tosca.Word{}, s.violation(GetBlockHash,
			"block "+s.fixture.BlockHashNumber.String(),
			"block "+number.String(),
		)
	}
	return s.fixture.BlockHash, nil
}

func (s *Simulator) EmitLog(addr tosca.Address, data tosca.Data, topics []tosca.Word) error {
	if err := s.enter(EmitLog); err != nil {
		return err
	}
	f := s.fixture
	if addr == f.BalanceAccount && data.Equal(f.LogData) &&
		len(topics) == 2 && topics[0] == f.LogTopic1 && topics[1] == f.LogTopic2 {
		return nil
	}
	return s.violation(EmitLog,
		fmt.Sprintf("log of account %v with data %v and topics [%v]", f.BalanceAccount, f.LogData, formatTopics([]tosca.Word{f.LogTopic1, f.LogTopic2})),
		fmt.Sprintf("log of account %v with data %v and topics [%v]", addr, data, formatTopics(topics)),
	)
}

func formatTopics(topics []tosca.Word) string {
	parts := make([]string, 0, len(topics))
	for _, topic := range topics {
		parts = append(parts, topic.String())
	}
	return strings.Join(parts, " ")
}
