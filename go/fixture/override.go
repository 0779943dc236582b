// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fixture

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
)

// Override lists optional replacements for fixture fields. Fields that are
// nil keep the value of the fixture the override is applied to.
type Override struct {
	StorageKey   *tosca.Word `json:"STORAGE_ADDRESS"`
	StorageValue *tosca.Word `json:"STORAGE_VALUE"`

	BalanceAccount *tosca.Address `json:"BALANCE_ACCOUNT"`
	Balance        *tosca.Word    `json:"BALANCE_BALANCE"`
	CodeSize       *int           `json:"BALANCE_CODESIZE"`
	CodeHash       *tosca.Word    `json:"BALANCE_CODEHASH"`

	BlockNumber     *tosca.Word    `json:"BLOCK_NUMBER"`
	BlockCoinbase   *tosca.Address `json:"BLOCK_COINBASE"`
	BlockTimestamp  *tosca.Word    `json:"BLOCK_TIMESTAMP"`
	BlockGasLimit   *tosca.Word    `json:"BLOCK_GASLIMIT"`
	BlockDifficulty *tosca.Word    `json:"BLOCK_DIFFICULTY"`

	TxOrigin      *tosca.Address `json:"TX_ORIGIN"`
	TxGasPrice    *tosca.Word    `json:"TX_GASPRICE"`
	TxDestination *tosca.Address `json:"TX_DESTINATION"`
	TxGas         *tosca.Word    `json:"TX_GAS"`

	CallAccount   *tosca.Address `json:"CALL_ACCOUNT"`
	CallInput     *tosca.Data    `json:"CODE_INPUT_DATA"`
	CallOutput    *tosca.Data    `json:"CODE_OUTPUT_DATA"`
	CallGasLeft   *tosca.Word    `json:"CALL_GAS_LEFT"`
	CreateAddress *tosca.Address `json:"CREATE_OUTPUT_ACCOUNT"`

	BlockHashNumber *tosca.Word `json:"BLOCKHASH_NUM"`
	BlockHash       *tosca.Word `json:"BLOCKHASH_HASH"`

	SelfDestructBeneficiary *tosca.Address `json:"SELF_DESTRUCT_BENEFICIARY"`

	LogData   *tosca.Data `json:"LOG_DATA"`
	LogTopic1 *tosca.Word `json:"LOG_TOPIC1"`
	LogTopic2 *tosca.Word `json:"LOG_TOPIC2"`

	CodeAccount *tosca.Address `json:"CODE_ACCOUNT"`
	Code        *tosca.Data    `json:"CODE_CODE"`
}

// ParseOverride decodes an override from its JSON form. Unknown fields are
// rejected to surface typos in field names.
func ParseOverride(data []byte) (Override, error) {
	var res Override
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&res); err != nil {
		return Override{}, err
	}
	return res, nil
}

// Apply creates a new fixture by replacing all fields of f present in the
// given override. The merge is field-by-field; no consistency between
// fields is checked or restored. In particular, BlockHashNumber is not
// adjusted if only BlockNumber is overridden.
func (f *Fixture) Apply(o Override) *Fixture {
	res := f.Clone()

	pick(&res.StorageKey, o.StorageKey)
	pick(&res.StorageValue, o.StorageValue)

	pick(&res.BalanceAccount, o.BalanceAccount)
	pick(&res.Balance, o.Balance)
	pick(&res.CodeSize, o.CodeSize)
	pick(&res.CodeHash, o.CodeHash)

	pick(&res.BlockNumber, o.BlockNumber)
	pick(&res.BlockCoinbase, o.BlockCoinbase)
	pick(&res.BlockTimestamp, o.BlockTimestamp)
	pick(&res.BlockGasLimit, o.BlockGasLimit)
	pick(&res.BlockDifficulty, o.BlockDifficulty)

	pick(&res.TxOrigin, o.TxOrigin)
	pick(&res.TxGasPrice, o.TxGasPrice)
	pick(&res.TxDestination, o.TxDestination)
	pick(&res.TxGas, o.TxGas)

	pick(&res.CallAccount, o.CallAccount)
	pickData(&res.CallInput, o.CallInput)
	pickData(&res.CallOutput, o.CallOutput)
	pick(&res.CallGasLeft, o.CallGasLeft)
	pick(&res.CreateAddress, o.CreateAddress)

	pick(&res.BlockHashNumber, o.BlockHashNumber)
	pick(&res.BlockHash, o.BlockHash)

	pick(&res.SelfDestructBeneficiary, o.SelfDestructBeneficiary)

	pickData(&res.LogData, o.LogData)
	pick(&res.LogTopic1, o.LogTopic1)
	pick(&res.LogTopic2, o.LogTopic2)

	pick(&res.CodeAccount, o.CodeAccount)
	pickData(&res.Code, o.Code)

	return res
}

func pick[T any](trg *T, value *T) {
	if value != nil {
		*trg = *value
	}
}

func pickData(trg *tosca.Data, value *tosca.Data) {
	if value != nil {
		*trg = slices.Clone(*value)
	}
}
