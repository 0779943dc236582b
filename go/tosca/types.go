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

import "fmt"

// Address represents the 160-bit (20 bytes) address of an account.
type Address [20]byte

// Word represents an arbitrary 256-bit (32 byte) unsigned integer. It is used
// for storage keys and values, balances, hashes, gas quantities, and block
// properties like the number, timestamp, gas limit, and difficulty.
type Word [32]byte

// Data represents the input or output of contract invocations, as well as log
// payloads. Data values are treated as immutable once handed to a host.
type Data []byte

// Code represents the byte-code of a contract.
type Code []byte

// CallKind is an enum enabling the differentiation of the different types
// of nested contract calls supported by the host protocol.
type CallKind int

const (
	Call CallKind = iota
	DelegateCall
	CallCode
	Create
	Create2
)

// StorageStatus is an enum utilized to indicate the effect of a storage
// slot update on the respective slot in the context of the current
// transaction.
type StorageStatus int

const (
	// The comment indicates the storage values for the corresponding
	// configuration. X, Y, Z are non-zero numbers, distinct from each other,
	// while 0 is zero.
	//
	// <original> -> <current> -> <new>
	StorageAssigned         StorageStatus = iota
	StorageAdded                          // 0 -> 0 -> Z
	StorageDeleted                        // X -> X -> 0
	StorageModified                       // X -> X -> Z
	StorageDeletedAdded                   // X -> 0 -> Z
	StorageModifiedDeleted                // X -> Y -> 0
	StorageDeletedRestored                // X -> 0 -> X
	StorageAddedDeleted                   // 0 -> Y -> 0
	StorageModifiedRestored               // X -> Y -> X
)

func (s StorageStatus) String() string {
	switch s {
	case StorageAssigned:
		return "StorageAssigned"
	case StorageAdded:
		return "StorageAdded"
	case StorageDeleted:
		return "StorageDeleted"
	case StorageModified:
		return "StorageModified"
	case StorageDeletedAdded:
		return "StorageDeletedAdded"
	case StorageModifiedDeleted:
		return "StorageModifiedDeleted"
	case StorageDeletedRestored:
		return "StorageDeletedRestored"
	case StorageAddedDeleted:
		return "StorageAddedDeleted"
	case StorageModifiedRestored:
		return "StorageModifiedRestored"
	}
	return fmt.Sprintf("StorageStatus(%d)", int(s))
}

// StatusCode is the outcome of an execution as reported by an engine. The
// numeric values match the EVMC status codes.
type StatusCode int32

const (
	Success                   StatusCode = 0
	Failure                   StatusCode = 1
	Revert                    StatusCode = 2
	OutOfGas                  StatusCode = 3
	InvalidInstruction        StatusCode = 4
	UndefinedInstruction      StatusCode = 5
	StackOverflow             StatusCode = 6
	StackUnderflow            StatusCode = 7
	BadJumpDestination        StatusCode = 8
	InvalidMemoryAccess       StatusCode = 9
	CallDepthExceeded         StatusCode = 10
	StaticModeViolation       StatusCode = 11
	PrecompileFailure         StatusCode = 12
	ContractValidationFailure StatusCode = 13
	ArgumentOutOfRange        StatusCode = 14
	InsufficientBalance       StatusCode = 17
	InternalError             StatusCode = -1
	Rejected                  StatusCode = -2
	OutOfMemory               StatusCode = -3
)

func (c StatusCode) String() string {
	switch c {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case Revert:
		return "revert"
	case OutOfGas:
		return "out of gas"
	case InvalidInstruction:
		return "invalid instruction"
	case UndefinedInstruction:
		return "undefined instruction"
	case StackOverflow:
		return "stack overflow"
	case StackUnderflow:
		return "stack underflow"
	case BadJumpDestination:
		return "bad jump destination"
	case InvalidMemoryAccess:
		return "invalid memory access"
	case CallDepthExceeded:
		return "call depth exceeded"
	case StaticModeViolation:
		return "static mode violation"
	case PrecompileFailure:
		return "precompile failure"
	case ContractValidationFailure:
		return "contract validation failure"
	case ArgumentOutOfRange:
		return "argument out of range"
	case InsufficientBalance:
		return "insufficient balance"
	case InternalError:
		return "internal error"
	case Rejected:
		return "rejected"
	case OutOfMemory:
		return "out of memory"
	}
	return fmt.Sprintf("StatusCode(%d)", int32(c))
}

// Message summarizes the parameters of a single contract invocation. It is
// passed to an engine to start an execution and handed to a host for nested
// calls issued by the executed code.
type Message struct {
	Kind        CallKind
	Static      bool
	Sender      Address
	Destination Address
	Depth       int
	Gas         Word
	Input       Data
	Value       Word
}

// Result summarizes the outcome of one execution. CreateAddress is only
// meaningful for Create and Create2 kinds.
type Result struct {
	Status        StatusCode
	GasLeft       Word
	Output        Data
	CreateAddress Address
}

// Success is true if the execution ended with a STOP, RETURN or
// SELFDESTRUCT instruction.
func (r Result) Success() bool {
	return r.Status == Success
}

// TxContext is a snapshot of the transaction and block properties visible to
// executed code. It is constant for the lifetime of a session.
type TxContext struct {
	GasPrice        Word
	Origin          Address
	Coinbase        Address
	BlockNumber     Word
	BlockTimestamp  Word
	BlockGasLimit   Word
	BlockDifficulty Word
}
