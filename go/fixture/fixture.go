// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package fixture provides the canonical account, storage, block, and
// transaction values a conformance host validates engine callbacks against.
package fixture

import (
	"encoding/json"
	"slices"

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Fixture is a table of test values. The JSON names are those used by the
// configuration endpoint of the HTTP front end.
type Fixture struct {
	StorageKey   tosca.Word `json:"STORAGE_ADDRESS"`
	StorageValue tosca.Word `json:"STORAGE_VALUE"`

	BalanceAccount tosca.Address `json:"BALANCE_ACCOUNT"`
	Balance        tosca.Word    `json:"BALANCE_BALANCE"`
	CodeSize       int           `json:"BALANCE_CODESIZE"`
	CodeHash       tosca.Word    `json:"BALANCE_CODEHASH"`

	BlockNumber     tosca.Word    `json:"BLOCK_NUMBER"`
	BlockCoinbase   tosca.Address `json:"BLOCK_COINBASE"`
	BlockTimestamp  tosca.Word    `json:"BLOCK_TIMESTAMP"`
	BlockGasLimit   tosca.Word    `json:"BLOCK_GASLIMIT"`
	BlockDifficulty tosca.Word    `json:"BLOCK_DIFFICULTY"`

	TxOrigin      tosca.Address `json:"TX_ORIGIN"`
	TxGasPrice    tosca.Word    `json:"TX_GASPRICE"`
	TxDestination tosca.Address `json:"TX_DESTINATION"`
	TxGas         tosca.Word    `json:"TX_GAS"`

	CallAccount   tosca.Address `json:"CALL_ACCOUNT"`
	CallInput     tosca.Data    `json:"CODE_INPUT_DATA"`
	CallOutput    tosca.Data    `json:"CODE_OUTPUT_DATA"`
	CallGasLeft   tosca.Word    `json:"CALL_GAS_LEFT"`
	CreateAddress tosca.Address `json:"CREATE_OUTPUT_ACCOUNT"`

	BlockHashNumber tosca.Word `json:"BLOCKHASH_NUM"` // < BlockNumber - 4
	BlockHash       tosca.Word `json:"BLOCKHASH_HASH"`

	SelfDestructBeneficiary tosca.Address `json:"SELF_DESTRUCT_BENEFICIARY"`

	LogData   tosca.Data `json:"LOG_DATA"`
	LogTopic1 tosca.Word `json:"LOG_TOPIC1"`
	LogTopic2 tosca.Word `json:"LOG_TOPIC2"`

	CodeAccount tosca.Address `json:"CODE_ACCOUNT"`
	Code        tosca.Data    `json:"CODE_CODE"`
}

// BlockHashOffset is the distance between the current block and the block
// whose hash is known to the fixture.
const BlockHashOffset = 4

// canonical is built once during package initialization and never modified.
// Clients obtain copies through Default().
var canonical = newCanonical()

func newCanonical() Fixture {
	blockNumber := tosca.MustWord("0x10001000")
	balanceAccount := tosca.MustAddress("0x174201554d57715a2382555c6dd9028166ab20ea")
	return Fixture{
		StorageKey:   tosca.MustWord("0x42"),
		StorageValue: tosca.MustWord("0x05"),

		BalanceAccount: balanceAccount,
		Balance:        tosca.MustWord("0xabcdef12345500"),
		CodeSize:       24023,
		CodeHash:       tosca.MustWord("0xecd99ffdcb9df33c9ca049ed55f74447201e3774684815bc590354427595232b"),

		BlockNumber:     blockNumber,
		BlockCoinbase:   tosca.MustAddress("0x2fab01632ab26a6349aedd19f5f8e4bbd477718"),
		BlockTimestamp:  tosca.WordFromUint64(1551402771),
		BlockGasLimit:   tosca.WordFromUint64(10000000000),
		BlockDifficulty: tosca.WordFromUint64(2427903418305647),

		TxOrigin:      tosca.MustAddress("0xea674fdde714fd979de3edf0f56aa9716b898ec8"),
		TxGasPrice:    tosca.WordFromUint64(100),
		TxDestination: balanceAccount,
		TxGas:         tosca.WordFromUint64(600000000),

		CallAccount: tosca.MustAddress("0x44fd3ab8381cc3d14afa7c4af7fd13cdc65026e1"),
		// ABI encoding of a call to getCounter() of the counter contract.
		CallInput:     tosca.Data{0x8a, 0xda, 0x06, 0x6e},
		CallOutput:    mustDecode("0xb745858cc23a311a303b43f18813d7331a257a817201576533298ffbe3809b32"),
		CallGasLeft:   tosca.WordFromUint64(10000),
		CreateAddress: tosca.MustAddress("0xa643e67b31f2e0a7672fd87d3faa28eaa845e311"),

		BlockHashNumber: subtract(blockNumber, BlockHashOffset),
		BlockHash:       tosca.MustWord("0xecd99ffdcb9df33c9ca049ed55f74447201e3774684815bc590354427595232b"),

		SelfDestructBeneficiary: tosca.MustAddress("0xa643e67b31f2e0a7672fd87d3faa28eaa845e311"),

		LogData:   tosca.Data{0xab, 0xfe},
		LogTopic1: tosca.MustWord("0xecd99eedcb9df33c9ca049ed55f74447201e3774684815bc590354427595232b"),
		LogTopic2: tosca.MustWord("0x2fab01632ab26a6349aedd19f5f8e4bbd47771"),

		CodeAccount: tosca.MustAddress("0xa53432ff16287dae8c4e09209a70cca8aaa3f50a"),
		Code:        mustDecode("0xecd99eedcb9df33c9ca049ed55f74447201e3774684815bc590354427595232b"),
	}
}

// Default returns a copy of the canonical fixture.
func Default() *Fixture {
	return canonical.Clone()
}

// Clone creates an independent deep copy of this fixture.
func (f *Fixture) Clone() *Fixture {
	res := *f
	res.CallInput = slices.Clone(f.CallInput)
	res.CallOutput = slices.Clone(f.CallOutput)
	res.LogData = slices.Clone(f.LogData)
	res.Code = slices.Clone(f.Code)
	return &res
}

// Hash computes the keccak256 hash of the JSON encoding of this fixture. Equal
// fixtures have equal hashes.
func (f *Fixture) Hash() (tosca.Word, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return tosca.Word{}, err
	}
	var res tosca.Word
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write(data)
	hasher.Sum(res[0:0])
	return res, nil
}

// TxContext produces the transaction context snapshot described by this
// fixture.
func (f *Fixture) TxContext() tosca.TxContext {
	return tosca.TxContext{
		GasPrice:        f.TxGasPrice,
		Origin:          f.TxOrigin,
		Coinbase:        f.BlockCoinbase,
		BlockNumber:     f.BlockNumber,
		BlockTimestamp:  f.BlockTimestamp,
		BlockGasLimit:   f.BlockGasLimit,
		BlockDifficulty: f.BlockDifficulty,
	}
}

// Message creates a top-level call message sent from the transaction origin
// to the transaction destination, carrying the given input.
func (f *Fixture) Message(input tosca.Data) tosca.Message {
	return tosca.Message{
		Kind:        tosca.Call,
		Sender:      f.TxOrigin,
		Destination: f.TxDestination,
		Depth:       0,
		Gas:         f.TxGas,
		Input:       input,
	}
}

func subtract(w tosca.Word, delta uint64) tosca.Word {
	res := new(uint256.Int).Sub(w.ToUint256(), uint256.NewInt(delta))
	return tosca.WordFromUint256(res)
}

func mustDecode(hex string) tosca.Data {
	var res tosca.Data
	if err := res.UnmarshalText([]byte(hex)); err != nil {
		panic(err)
	}
	return res
}
