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

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/go-ethereum/core/vm"
	"golang.org/x/crypto/sha3"
)

// assembler is a minimal helper for writing byte-code with symbolic jump
// targets. Jump targets are encoded as PUSH2 instructions.
type assembler struct {
	code   []byte
	labels map[string]int
	fixups map[int]string // < position of PUSH2 argument -> label
}

func newAssembler() *assembler {
	return &assembler{
		labels: map[string]int{},
		fixups: map[int]string{},
	}
}

func (a *assembler) op(ops ...vm.OpCode) *assembler {
	for _, op := range ops {
		a.code = append(a.code, byte(op))
	}
	return a
}

// push emits the shortest PUSH instruction for the given big-endian value.
func (a *assembler) push(value []byte) *assembler {
	for len(value) > 1 && value[0] == 0 {
		value = value[1:]
	}
	if len(value) == 0 {
		value = []byte{0}
	}
	if len(value) > 32 {
		panic(fmt.Sprintf("value too large for push: %x", value))
	}
	a.code = append(a.code, byte(vm.PUSH1)+byte(len(value)-1))
	a.code = append(a.code, value...)
	return a
}

func (a *assembler) pushInt(value uint64) *assembler {
	w := tosca.WordFromUint64(value)
	return a.push(w[:])
}

func (a *assembler) pushWord(value tosca.Word) *assembler {
	return a.push(value[:])
}

func (a *assembler) pushAddress(value tosca.Address) *assembler {
	return a.push(value[:])
}

// pushLabel pushes the position of the given label.
func (a *assembler) pushLabel(label string) *assembler {
	a.code = append(a.code, byte(vm.PUSH2))
	a.fixups[len(a.code)] = label
	a.code = append(a.code, 0xFF, 0xFF)
	return a
}

// label marks the current position with a JUMPDEST.
func (a *assembler) label(label string) *assembler {
	a.labels[label] = len(a.code)
	return a.op(vm.JUMPDEST)
}

// store writes the given data left-aligned to memory starting at offset 0
// and returns the number of bytes of memory covered.
func (a *assembler) store(data []byte) int {
	for offset := 0; offset < len(data); offset += 32 {
		var chunk [32]byte
		copy(chunk[:], data[offset:])
		a.push(chunk[:]).pushInt(uint64(offset)).op(vm.MSTORE)
	}
	return (len(data) + 31) / 32 * 32
}

// hashMemory pushes the keccak256 hash of the given memory range.
func (a *assembler) hashMemory(offset, length int) *assembler {
	return a.pushInt(uint64(length)).pushInt(uint64(offset)).op(vm.KECCAK256)
}

// expectEqual compares the two top-most stack elements and stops if they
// are equal. Otherwise, the execution fails with an invalid instruction.
func (a *assembler) expectEqual() *assembler {
	label := fmt.Sprintf("ok%d", len(a.labels))
	return a.op(vm.EQ).
		pushLabel(label).
		op(vm.JUMPI, vm.INVALID).
		label(label).
		op(vm.STOP)
}

func (a *assembler) build() tosca.Code {
	res := make(tosca.Code, len(a.code))
	copy(res, a.code)
	for pos, label := range a.fixups {
		target, found := a.labels[label]
		if !found {
			panic(fmt.Sprintf("undefined label: %s", label))
		}
		res[pos] = byte(target >> 8)
		res[pos+1] = byte(target)
	}
	return res
}

func keccak(data []byte) tosca.Word {
	var hash tosca.Word
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	hasher.Sum(hash[0:0])
	return hash
}
