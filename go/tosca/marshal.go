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

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

const (
	addressWidth = len(Address{})
	wordWidth    = len(Word{})
)

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

func (a Address) ToBig() *big.Int {
	return new(big.Int).SetBytes(a[:])
}

// AddressFromBig encodes the given value as a big-endian address. Negative
// values and values requiring more than 160 bits are rejected.
func AddressFromBig(value *big.Int) (Address, error) {
	var res Address
	err := fillFromBig(res[:], value)
	return res, err
}

// MustAddress parses a hex-encoded address literal, panicking on failure.
// It is intended for defining constants.
func MustAddress(hex string) Address {
	var res Address
	if err := res.UnmarshalText([]byte(hex)); err != nil {
		panic(err)
	}
	return res
}

func (a Address) MarshalText() ([]byte, error) {
	return bytesToText(a[:]), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (w Word) String() string {
	return fmt.Sprintf("0x%x", w[:])
}

func (w Word) ToBig() *big.Int {
	return new(big.Int).SetBytes(w[:])
}

func (w Word) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

func (w Word) IsZero() bool {
	return w == Word{}
}

// Uint64 converts the word into an uint64, failing if the value exceeds the
// range of the target type.
func (w Word) Uint64() (uint64, error) {
	for _, b := range w[:wordWidth-8] {
		if b != 0 {
			return 0, &EncodingError{Width: 8, Value: w.String()}
		}
	}
	return binary.BigEndian.Uint64(w[wordWidth-8:]), nil
}

// Int64 converts the word into a non-negative int64, failing if the value
// exceeds the range of the target type.
func (w Word) Int64() (int64, error) {
	res, err := w.Uint64()
	if err != nil {
		return 0, err
	}
	if res > math.MaxInt64 {
		return 0, &EncodingError{Width: 8, Value: w.String()}
	}
	return int64(res), nil
}

// WordFromBig encodes the given value as a big-endian word. Negative values
// and values requiring more than 256 bits are rejected.
func WordFromBig(value *big.Int) (Word, error) {
	var res Word
	err := fillFromBig(res[:], value)
	return res, err
}

// WordFromUint256 converts a *uint256.Int to a Word.
// If the input is nil, it returns 0.
func WordFromUint256(value *uint256.Int) Word {
	if value == nil {
		return Word{}
	}
	return value.Bytes32()
}

func WordFromUint64(value uint64) (res Word) {
	binary.BigEndian.PutUint64(res[wordWidth-8:], value)
	return
}

// MustWord parses a hex-encoded word literal, panicking on failure.
// It is intended for defining constants.
func MustWord(hex string) Word {
	var res Word
	if err := res.UnmarshalText([]byte(hex)); err != nil {
		panic(err)
	}
	return res
}

func (w Word) MarshalText() ([]byte, error) {
	return bytesToText(w[:]), nil
}

func (w *Word) UnmarshalText(data []byte) error {
	return textToBytes(w[:], data)
}

// UnmarshalJSON accepts hex strings as well as plain (decimal) JSON numbers.
func (w *Word) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return w.UnmarshalText([]byte(s))
	}
	value, ok := new(big.Int).SetString(string(data), 10)
	if !ok {
		return fmt.Errorf("invalid number: %s", data)
	}
	res, err := WordFromBig(value)
	if err != nil {
		return err
	}
	*w = res
	return nil
}

// Equal reports whether both buffers have the same length and content. The
// empty buffer is only equal to another empty buffer.
func (d Data) Equal(other Data) bool {
	return bytes.Equal(d, other)
}

func (d Data) String() string {
	return hexutil.Encode(d)
}

func (d Data) MarshalText() ([]byte, error) {
	return hexutil.Bytes(d).MarshalText()
}

func (d *Data) UnmarshalText(data []byte) error {
	var res hexutil.Bytes
	if err := res.UnmarshalText(data); err != nil {
		return err
	}
	*d = Data(res)
	return nil
}

func (c Code) String() string {
	return hexutil.Encode(c)
}

func (k CallKind) String() string {
	switch k {
	case Call:
		return "call"
	case DelegateCall:
		return "delegate_call"
	case CallCode:
		return "call_code"
	case Create:
		return "create"
	case Create2:
		return "create2"
	default:
		return "unknown"
	}
}

func (k CallKind) MarshalJSON() ([]byte, error) {
	switch k {
	case Call, DelegateCall, CallCode, Create, Create2:
		return json.Marshal(k.String())
	}
	return nil, fmt.Errorf("invalid call kind: %d", int(k))
}

func (k *CallKind) UnmarshalJSON(data []byte) error {
	var kind string
	if err := json.Unmarshal(data, &kind); err != nil {
		return err
	}
	switch strings.ToLower(kind) {
	case "call":
		*k = Call
	case "delegate_call":
		*k = DelegateCall
	case "call_code":
		*k = CallCode
	case "create":
		*k = Create
	case "create2":
		*k = Create2
	default:
		return fmt.Errorf("unknown call kind: %s", kind)
	}
	return nil
}

func fillFromBig(trg []byte, value *big.Int) error {
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() < 0 || value.BitLen() > 8*len(trg) {
		return &EncodingError{Width: len(trg), Value: fmt.Sprintf("0x%x", value)}
	}
	value.FillBytes(trg)
	return nil
}

func bytesToText(data []byte) []byte {
	return []byte(fmt.Sprintf("0x%x", data))
}

// textToBytes parses a 0x-prefixed hex quantity into the given fixed-width
// target. Leading zeros may be omitted.
func textToBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	digits := s[2:]
	if len(digits) == 0 {
		return fmt.Errorf("invalid format, no digits: %v", s)
	}
	value, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return fmt.Errorf("invalid format, not a hex number: %v", s)
	}
	return fillFromBig(trg, value)
}
