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
	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/simulator"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/go-ethereum/core/vm"
)

// nestedCallGas is the gas forwarded to nested calls and creations.
const nestedCallGas = 10000

// GetPrograms assembles the sample programs for the given fixture. All
// programs except those with an expected violation run without violations
// on a conforming engine.
func GetPrograms(f *fixture.Fixture) []Program {
	return []Program{
		{
			Name:   "stop",
			Code:   tosca.Code{byte(vm.STOP)},
			Status: tosca.Success,
		},
		{
			Name:   "invalid",
			Code:   tosca.Code{byte(vm.INVALID)},
			Status: tosca.InvalidInstruction,
		},
		{
			Name:   "undefined",
			Code:   tosca.Code{0x0c},
			Status: tosca.UndefinedInstruction,
		},
		{
			Name: "sload",
			Code: newAssembler().
				pushWord(f.StorageValue).
				pushWord(f.StorageKey).op(vm.SLOAD).
				expectEqual().
				build(),
			Callbacks: []string{simulator.GetStorage},
			Status:    tosca.Success,
		},
		{
			Name:      "sstore",
			Code:      storeCode(f, 1),
			Callbacks: []string{simulator.SetStorage},
			Status:    tosca.Success,
		},
		{
			Name:      "sstore_10x",
			Code:      storeCode(f, 10),
			Callbacks: []string{simulator.SetStorage},
			Status:    tosca.Success,
		},
		{
			Name: "balance",
			Code: newAssembler().
				pushWord(f.Balance).
				pushAddress(f.BalanceAccount).op(vm.BALANCE).
				expectEqual().
				build(),
			Callbacks: []string{simulator.GetBalance},
			Status:    tosca.Success,
		},
		txContextProgram("number", vm.NUMBER, f.BlockNumber),
		txContextProgram("timestamp", vm.TIMESTAMP, f.BlockTimestamp),
		txContextProgram("coinbase", vm.COINBASE, addressToWord(f.BlockCoinbase)),
		txContextProgram("difficulty", vm.DIFFICULTY, f.BlockDifficulty),
		txContextProgram("gaslimit", vm.GASLIMIT, f.BlockGasLimit),
		txContextProgram("origin", vm.ORIGIN, addressToWord(f.TxOrigin)),
		txContextProgram("gasprice", vm.GASPRICE, f.TxGasPrice),
		{
			Name: "extcodesize",
			Code: newAssembler().
				pushInt(uint64(f.CodeSize)).
				pushAddress(f.BalanceAccount).op(vm.EXTCODESIZE).
				expectEqual().
				build(),
			Callbacks: []string{simulator.GetCodeSize},
			Status:    tosca.Success,
		},
		{
			Name: "extcodehash",
			Code: newAssembler().
				pushWord(f.CodeHash).
				pushAddress(f.BalanceAccount).op(vm.EXTCODEHASH).
				expectEqual().
				build(),
			Callbacks: []string{simulator.GetCodeHash},
			Status:    tosca.Success,
		},
		{
			Name:      "extcodecopy",
			Code:      extCodeCopyCode(f),
			Callbacks: []string{simulator.CopyCode, simulator.GetCodeSize},
			Status:    tosca.Success,
		},
		{
			Name: "blockhash",
			Code: newAssembler().
				pushWord(f.BlockHash).
				pushWord(f.BlockHashNumber).op(vm.BLOCKHASH).
				expectEqual().
				build(),
			Callbacks: []string{simulator.GetTxContext, simulator.GetBlockHash},
			Status:    tosca.Success,
		},
		{
			Name:      "log2",
			Code:      logCode(f),
			Callbacks: []string{simulator.EmitLog},
			Status:    tosca.Success,
		},
		{
			Name:      "delegatecall",
			Code:      delegateCallCode(f),
			Callbacks: []string{simulator.Call},
			Status:    tosca.Success,
		},
		{
			Name:      "create",
			Code:      createCode(f),
			Callbacks: []string{simulator.Call, simulator.GetBalance},
			Status:    tosca.Success,
		},
		counterDeploymentProgram(f),
	}
}

// counterDeploymentProgram runs the constructor of the counter contract,
// which initializes slot 0 with 1. Unless the fixture happens to expect
// exactly this update, the engine is expected to trigger a violation.
func counterDeploymentProgram(f *fixture.Fixture) Program {
	res := Program{
		Name:      "counter_deployment",
		Code:      CounterCode(),
		Callbacks: []string{simulator.SetStorage},
		Status:    tosca.Success,
	}
	if f.StorageKey != (tosca.Word{}) || f.StorageValue != tosca.WordFromUint64(1) {
		res.Violation = simulator.SetStorage
	}
	return res
}

func txContextProgram(name string, op vm.OpCode, want tosca.Word) Program {
	return Program{
		Name: name,
		Code: newAssembler().
			pushWord(want).
			op(op).
			expectEqual().
			build(),
		Callbacks: []string{simulator.GetTxContext},
		Status:    tosca.Success,
	}
}

func storeCode(f *fixture.Fixture, times int) tosca.Code {
	a := newAssembler()
	for i := 0; i < times; i++ {
		a.pushWord(f.StorageValue).pushWord(f.StorageKey).op(vm.SSTORE)
	}
	return a.op(vm.STOP).build()
}

func extCodeCopyCode(f *fixture.Fixture) tosca.Code {
	a := newAssembler()
	a.pushWord(keccak(f.Code))
	// extcodecopy(account, destOffset, offset, size)
	a.pushInt(uint64(len(f.Code))).
		pushInt(0).
		pushInt(0).
		pushAddress(f.CodeAccount).
		op(vm.EXTCODECOPY)
	return a.hashMemory(0, len(f.Code)).expectEqual().build()
}

func logCode(f *fixture.Fixture) tosca.Code {
	a := newAssembler()
	a.store(f.LogData)
	// log2(offset, size, topic1, topic2)
	return a.pushWord(f.LogTopic2).
		pushWord(f.LogTopic1).
		pushInt(uint64(len(f.LogData))).
		pushInt(0).
		op(vm.LOG2, vm.STOP).
		build()
}

func delegateCallCode(f *fixture.Fixture) tosca.Code {
	a := newAssembler()
	outOffset := a.store(f.CallInput)
	a.pushWord(keccak(f.CallOutput))
	// delegatecall(gas, address, inOffset, inSize, outOffset, outSize)
	a.pushInt(uint64(len(f.CallOutput))).
		pushInt(uint64(outOffset)).
		pushInt(uint64(len(f.CallInput))).
		pushInt(0).
		pushAddress(f.CallAccount).
		pushInt(nestedCallGas).
		op(vm.DELEGATECALL, vm.POP)
	return a.hashMemory(outOffset, len(f.CallOutput)).expectEqual().build()
}

func createCode(f *fixture.Fixture) tosca.Code {
	a := newAssembler()
	a.store(f.CallInput)
	a.pushAddress(f.CreateAddress)
	// create(value, offset, size)
	return a.pushInt(uint64(len(f.CallInput))).
		pushInt(0).
		pushInt(0).
		op(vm.CREATE).
		expectEqual().
		build()
}

func addressToWord(addr tosca.Address) tosca.Word {
	var res tosca.Word
	copy(res[12:], addr[:])
	return res
}
