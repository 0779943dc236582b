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
	"strings"
	"sync"

	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// The counter contract keeps a single counter in storage slot 0:
//
//	contract Counter {
//	    uint256 counter;
//	    constructor() { counter = 1; }
//	    function add(uint256 v) public { counter += v; }
//	    function getCounter() public view returns (uint256) { return counter; }
//	    function increment() public { counter++; }
//	}
const (
	counterCode = "0x608060405234801561001057600080fd5b50600160008190555060f3806100276000396000f3fe6080604052348015600f57600080fd5b5060043610603c5760003560e01c80631003e2d21460415780638ada066e14606c578063d09de08a146088575b600080fd5b606a60048036036020811015605557600080fd5b81019080803590602001909291905050506090565b005b607260a2565b6040518082815260200191505060405180910390f35b608e60ab565b005b80600080828254019250508190555050565b60008054905090565b600080815480929190600101919050555056fea265627a7a72305820cdc3ec8e978662bd66eac7a0456271f4b2f7a63d784a514bbc87e208d8aae20f64736f6c634300050a0032"

	// CounterABI is the JSON description of the counter contract's interface.
	CounterABI = `[
	{"constant":false,"inputs":[{"name":"v","type":"uint256"}],"name":"add","outputs":[],"payable":false,"stateMutability":"nonpayable","type":"function"},
	{"constant":true,"inputs":[],"name":"getCounter","outputs":[{"name":"","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[],"name":"increment","outputs":[],"payable":false,"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"payable":false,"stateMutability":"nonpayable","type":"constructor"}
]`

	// The constructor copies the runtime code from this range of the
	// deployment code.
	counterRuntimeOffset = 0x27
	counterRuntimeLength = 0xf3
)

// CounterCode returns the deployment code of the counter contract.
func CounterCode() tosca.Code {
	return tosca.Code(hexutil.MustDecode(counterCode))
}

// CounterRuntimeCode returns the code installed by the counter's constructor.
func CounterRuntimeCode() tosca.Code {
	return CounterCode()[counterRuntimeOffset : counterRuntimeOffset+counterRuntimeLength]
}

var counterABI = sync.OnceValues(func() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(CounterABI))
})

// EncodeCall produces the ABI encoded input of a call to the given method of
// the counter contract. Integer arguments must be passed as *big.Int.
func EncodeCall(method string, args ...any) (tosca.Data, error) {
	parsed, err := counterABI()
	if err != nil {
		return nil, err
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	return tosca.Data(data), nil
}
