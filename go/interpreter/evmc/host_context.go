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
	"fmt"
	"math/big"

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/evmc/v11/bindings/go/evmc"
)

// hostContext allows a non-Go Engine implementation to access a tosca.Host.
// It implements the host interface of evmc's Go bindings. Since errors can
// not be passed through the native engine, the first error reported by the
// host is retained and neutral values are returned to the engine instead.
type hostContext struct {
	host tosca.Host
	err  error
}

func (ctx *hostContext) fail(err error) {
	if ctx.err == nil {
		ctx.err = err
	}
}

func (ctx *hostContext) AccountExists(addr evmc.Address) bool {
	exists, err := ctx.host.AccountExists(tosca.Address(addr))
	if err != nil {
		ctx.fail(err)
		return false
	}
	return exists
}

func (ctx *hostContext) GetStorage(addr evmc.Address, key evmc.Hash) evmc.Hash {
	value, err := ctx.host.GetStorage(tosca.Address(addr), tosca.Word(key))
	if err != nil {
		ctx.fail(err)
		return evmc.Hash{}
	}
	return evmc.Hash(value)
}

func (ctx *hostContext) SetStorage(addr evmc.Address, key evmc.Hash, value evmc.Hash) evmc.StorageStatus {
	status, err := ctx.host.SetStorage(tosca.Address(addr), tosca.Word(key), tosca.Word(value))
	if err != nil {
		ctx.fail(err)
		return evmc.StorageAssigned
	}
	res, err := toEvmcStorageStatus(status)
	if err != nil {
		ctx.fail(err)
	}
	return res
}

func toEvmcStorageStatus(status tosca.StorageStatus) (evmc.StorageStatus, error) {
	switch status {
	case tosca.StorageAssigned:
		return evmc.StorageAssigned, nil
	case tosca.StorageAdded:
		return evmc.StorageAdded, nil
	case tosca.StorageDeleted:
		return evmc.StorageDeleted, nil
	case tosca.StorageModified:
		return evmc.StorageModified, nil
	case tosca.StorageDeletedAdded:
		return evmc.StorageDeletedAdded, nil
	case tosca.StorageModifiedDeleted:
		return evmc.StorageModifiedDeleted, nil
	case tosca.StorageDeletedRestored:
		return evmc.StorageDeletedRestored, nil
	case tosca.StorageAddedDeleted:
		return evmc.StorageAddedDeleted, nil
	case tosca.StorageModifiedRestored:
		return evmc.StorageModifiedRestored, nil
	default:
		return evmc.StorageAssigned, fmt.Errorf("unsupported storage state: %v", status)
	}
}

func (ctx *hostContext) GetBalance(addr evmc.Address) evmc.Hash {
	balance, err := ctx.host.GetBalance(tosca.Address(addr))
	if err != nil {
		ctx.fail(err)
		return evmc.Hash{}
	}
	return evmc.Hash(balance)
}

func (ctx *hostContext) GetCodeSize(addr evmc.Address) int {
	size, err := ctx.host.GetCodeSize(tosca.Address(addr))
	if err != nil {
		ctx.fail(err)
		return 0
	}
	return size
}

func (ctx *hostContext) GetCodeHash(addr evmc.Address) evmc.Hash {
	hash, err := ctx.host.GetCodeHash(tosca.Address(addr))
	if err != nil {
		ctx.fail(err)
		return evmc.Hash{}
	}
	return evmc.Hash(hash)
}

// GetCode fetches the full code of an account. The EVMC Go binding slices the
// result for the requested range itself, so the full code is requested from
// the host. Hosts implementing tosca.CodeSizeHinter provide the length of the
// copy; for all others it is obtained through GetCodeSize.
func (ctx *hostContext) GetCode(addr evmc.Address) []byte {
	var size int
	if hinter, ok := ctx.host.(tosca.CodeSizeHinter); ok {
		size = hinter.CodeSizeHint(tosca.Address(addr))
	} else {
		var err error
		size, err = ctx.host.GetCodeSize(tosca.Address(addr))
		if err != nil {
			ctx.fail(err)
			return nil
		}
	}
	code, err := ctx.host.CopyCode(tosca.Address(addr), 0, size)
	if err != nil {
		ctx.fail(err)
		return nil
	}
	return code
}

func (ctx *hostContext) Selfdestruct(addr evmc.Address, beneficiary evmc.Address) bool {
	if err := ctx.host.SelfDestruct(tosca.Address(addr), tosca.Address(beneficiary)); err != nil {
		ctx.fail(err)
		return false
	}
	return true
}

func (ctx *hostContext) GetTxContext() evmc.TxContext {
	txContext, err := ctx.host.GetTxContext()
	if err != nil {
		ctx.fail(err)
		return evmc.TxContext{}
	}
	number, err := txContext.BlockNumber.Int64()
	if err != nil {
		ctx.fail(fmt.Errorf("invalid block number: %w", err))
	}
	timestamp, err := txContext.BlockTimestamp.Int64()
	if err != nil {
		ctx.fail(fmt.Errorf("invalid block timestamp: %w", err))
	}
	gasLimit, err := txContext.BlockGasLimit.Int64()
	if err != nil {
		ctx.fail(fmt.Errorf("invalid block gas limit: %w", err))
	}
	return evmc.TxContext{
		GasPrice:   evmc.Hash(txContext.GasPrice),
		Origin:     evmc.Address(txContext.Origin),
		Coinbase:   evmc.Address(txContext.Coinbase),
		Number:     number,
		Timestamp:  timestamp,
		GasLimit:   gasLimit,
		PrevRandao: evmc.Hash(txContext.BlockDifficulty),
	}
}

func (ctx *hostContext) GetBlockHash(number int64) evmc.Hash {
	word, err := tosca.WordFromBig(big.NewInt(number))
	if err != nil {
		ctx.fail(err)
		return evmc.Hash{}
	}
	hash, err := ctx.host.GetBlockHash(word)
	if err != nil {
		ctx.fail(err)
		return evmc.Hash{}
	}
	return evmc.Hash(hash)
}

func (ctx *hostContext) EmitLog(addr evmc.Address, topicsIn []evmc.Hash, data []byte) {
	topics := make([]tosca.Word, len(topicsIn))
	for i := range topics {
		topics[i] = tosca.Word(topicsIn[i])
	}
	if err := ctx.host.EmitLog(tosca.Address(addr), data, topics); err != nil {
		ctx.fail(err)
	}
}

func (ctx *hostContext) Call(kind evmc.CallKind, recipient evmc.Address, sender evmc.Address, value evmc.Hash, input []byte, gas int64, depth int, static bool, salt evmc.Hash, codeAddress evmc.Address) (output []byte, gasLeft int64, gasRefund int64, createAddr evmc.Address, err error) {
	callKind, err := fromEvmcCallKind(kind)
	if err != nil {
		ctx.fail(err)
		return nil, 0, 0, evmc.Address{}, evmc.Failure
	}

	result, err := ctx.host.Call(tosca.Message{
		Kind:        callKind,
		Static:      static,
		Sender:      tosca.Address(sender),
		Destination: tosca.Address(recipient),
		Depth:       depth,
		Gas:         gasToWord(gas),
		Input:       input,
		Value:       tosca.Word(value),
	})
	if err != nil {
		ctx.fail(err)
		return nil, 0, 0, evmc.Address{}, evmc.Failure
	}

	left, err := result.GasLeft.Int64()
	if err != nil {
		ctx.fail(fmt.Errorf("invalid gas left by nested call: %w", err))
		return nil, 0, 0, evmc.Address{}, evmc.Failure
	}

	switch result.Status {
	case tosca.Success:
		err = nil
	case tosca.Revert:
		err = evmc.Revert
	default:
		err = evmc.Error(result.Status)
	}
	return result.Output, left, 0, evmc.Address(result.CreateAddress), err
}

// All accounts and slots are considered warm.
func (ctx *hostContext) AccessAccount(evmc.Address) evmc.AccessStatus {
	return evmc.WarmAccess
}

func (ctx *hostContext) AccessStorage(evmc.Address, evmc.Hash) evmc.AccessStatus {
	return evmc.WarmAccess
}
