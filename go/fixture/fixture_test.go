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
	"encoding/json"
	"reflect"
	"testing"

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/holiman/uint256"
)

func TestFixture_BlockHashNumberIsFourBlocksBeforeCurrentBlock(t *testing.T) {
	f := Default()
	want := new(uint256.Int).Sub(f.BlockNumber.ToUint256(), uint256.NewInt(BlockHashOffset))
	if got := f.BlockHashNumber.ToUint256(); !got.Eq(want) {
		t.Errorf("unexpected block hash number, wanted %v, got %v", want, got)
	}
	if want, got := tosca.WordFromUint64(0x10001000-4), f.BlockHashNumber; want != got {
		t.Errorf("unexpected block hash number, wanted %v, got %v", want, got)
	}
}

func TestFixture_CanonicalValues(t *testing.T) {
	f := Default()
	tests := map[string]struct {
		got, want any
	}{
		"storage key":      {f.StorageKey, tosca.WordFromUint64(0x42)},
		"storage value":    {f.StorageValue, tosca.WordFromUint64(0x05)},
		"balance":          {f.Balance, tosca.WordFromUint64(0xabcdef12345500)},
		"code size":        {f.CodeSize, 24023},
		"destination":      {f.TxDestination, f.BalanceAccount},
		"gas":              {f.TxGas, tosca.WordFromUint64(600000000)},
		"call gas left":    {f.CallGasLeft, tosca.WordFromUint64(10000)},
		"coinbase":         {f.BlockCoinbase, tosca.MustAddress("0x02fab01632ab26a6349aedd19f5f8e4bbd477718")},
		"log data":         {f.LogData, tosca.Data{0xab, 0xfe}},
		"code length":      {len(f.Code), 32},
		"call input":       {f.CallInput, tosca.Data{0x8a, 0xda, 0x06, 0x6e}},
		"beneficiary":      {f.SelfDestructBeneficiary, f.CreateAddress},
		"block hash":       {f.BlockHash, f.CodeHash},
		"block difficulty": {f.BlockDifficulty, tosca.WordFromUint64(2427903418305647)},
	}
	for name, test := range tests {
		if !reflect.DeepEqual(test.got, test.want) {
			t.Errorf("unexpected %s, wanted %v, got %v", name, test.want, test.got)
		}
	}
}

func TestFixture_DefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	a.Code[0] = 0
	a.StorageKey = tosca.Word{}

	b := Default()
	if b.Code[0] != 0xec {
		t.Errorf("modification of a copy leaked into the canonical fixture")
	}
	if b.StorageKey != tosca.WordFromUint64(0x42) {
		t.Errorf("modification of a copy leaked into the canonical fixture")
	}
}

func TestFixture_TxContextSnapshot(t *testing.T) {
	f := Default()
	ctxt := f.TxContext()
	want := tosca.TxContext{
		GasPrice:        tosca.WordFromUint64(100),
		Origin:          f.TxOrigin,
		Coinbase:        f.BlockCoinbase,
		BlockNumber:     tosca.WordFromUint64(0x10001000),
		BlockTimestamp:  tosca.WordFromUint64(1551402771),
		BlockGasLimit:   tosca.WordFromUint64(10000000000),
		BlockDifficulty: tosca.WordFromUint64(2427903418305647),
	}
	if ctxt != want {
		t.Errorf("unexpected tx context, wanted %v, got %v", want, ctxt)
	}
}

func TestFixture_Message(t *testing.T) {
	f := Default()
	msg := f.Message(f.CallInput)
	if msg.Kind != tosca.Call || msg.Sender != f.TxOrigin || msg.Destination != f.TxDestination {
		t.Errorf("unexpected message routing: %+v", msg)
	}
	if msg.Gas != f.TxGas || !msg.Value.IsZero() || msg.Depth != 0 {
		t.Errorf("unexpected message parameters: %+v", msg)
	}
	if !msg.Input.Equal(f.CallInput) {
		t.Errorf("unexpected input, wanted %v, got %v", f.CallInput, msg.Input)
	}
}

func TestOverride_EmptyOverrideKeepsAllFields(t *testing.T) {
	f := Default()
	if got := f.Apply(Override{}); !reflect.DeepEqual(f, got) {
		t.Errorf("empty override changed the fixture, wanted %v, got %v", f, got)
	}
}

func TestOverride_PresentFieldsAreReplaced(t *testing.T) {
	override, err := ParseOverride([]byte(`{
		"STORAGE_ADDRESS": "0x43",
		"BALANCE_CODESIZE": 12,
		"BLOCK_NUMBER": 100,
		"TX_ORIGIN": "0x01",
		"LOG_DATA": "0x0102",
		"LOG_TOPIC2": null
	}`))
	if err != nil {
		t.Fatalf("failed to parse override: %v", err)
	}

	f := Default()
	got := f.Apply(override)

	want := Default()
	want.StorageKey = tosca.WordFromUint64(0x43)
	want.CodeSize = 12
	want.BlockNumber = tosca.WordFromUint64(100)
	want.TxOrigin = tosca.MustAddress("0x01")
	want.LogData = tosca.Data{1, 2}

	if !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected merge result, wanted %+v, got %+v", want, got)
	}
	if f.StorageKey != tosca.WordFromUint64(0x42) {
		t.Errorf("apply modified the base fixture")
	}
}

func TestOverride_BlockHashNumberIsNotRecomputed(t *testing.T) {
	blockNumber := tosca.WordFromUint64(100)
	got := Default().Apply(Override{BlockNumber: &blockNumber})
	if want := Default().BlockHashNumber; got.BlockHashNumber != want {
		t.Errorf("block hash number changed, wanted %v, got %v", want, got.BlockHashNumber)
	}
}

func TestOverride_InvalidInputIsRejected(t *testing.T) {
	inputs := map[string]string{
		"not json":          `{`,
		"unknown field":     `{"STORAGE_KEY": "0x42"}`,
		"address too long":  `{"TX_ORIGIN": "0x010000000000000000000000000000000000000000"}`,
		"word not a number": `{"TX_GAS": true}`,
		"invalid data":      `{"CODE_CODE": "0xabc"}`,
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseOverride([]byte(input)); err == nil {
				t.Errorf("expected parsing to fail")
			}
		})
	}
}

func TestFixture_JSONRoundTrip(t *testing.T) {
	f := Default()
	encoded, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	var restored Fixture
	if err := json.Unmarshal(encoded, &restored); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	if !reflect.DeepEqual(f, &restored) {
		t.Errorf("unexpected restored fixture, wanted %v, got %v", f, restored)
	}
}

func TestFixture_HashIdentifiesContent(t *testing.T) {
	a, err := Default().Hash()
	if err != nil {
		t.Fatalf("failed to hash fixture: %v", err)
	}
	b, err := Default().Hash()
	if err != nil {
		t.Fatalf("failed to hash fixture: %v", err)
	}
	if a != b {
		t.Errorf("equal fixtures should have equal hashes, got %v and %v", a, b)
	}

	modified := Default()
	modified.LogData = tosca.Data{0xab}
	c, err := modified.Hash()
	if err != nil {
		t.Fatalf("failed to hash fixture: %v", err)
	}
	if a == c {
		t.Errorf("different fixtures should have different hashes")
	}
}
