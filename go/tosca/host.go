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

//go:generate mockgen -source host.go -destination host_mock.go -package tosca

// Host is the set of callbacks an engine may invoke while executing a
// message. It provides access to account state, block and transaction
// properties, and nested calls.
//
// Every callback returns an error. A non-nil error voids the execution that
// triggered the callback; engines must not retry or ignore it. Hosts are
// not required to be thread-safe, since an engine issues the callbacks of a
// single execution sequentially.
type Host interface {
	AccountExists(Address) (bool, error)

	GetStorage(addr Address, key Word) (Word, error)
	SetStorage(addr Address, key Word, value Word) (StorageStatus, error)

	GetBalance(Address) (Word, error)
	GetCodeSize(Address) (int, error)
	GetCodeHash(Address) (Word, error)
	CopyCode(addr Address, offset int, length int) (Data, error)

	SelfDestruct(addr Address, beneficiary Address) error

	// Call performs a nested call or contract creation as described by the
	// given message.
	Call(Message) (Result, error)

	GetTxContext() (TxContext, error)
	GetBlockHash(number Word) (Word, error)

	EmitLog(addr Address, data Data, topics []Word) error
}

// CodeSizeHinter is an optional extension of a Host. Some engines copy code
// on the host side and need to know how many bytes to request through
// CopyCode. Hint lookups are no callbacks and have no observable effect.
type CodeSizeHinter interface {
	CodeSizeHint(Address) int
}
