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

// ConstError is a error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// ContractViolation is reported by a host whenever a callback is invoked with
// arguments not matching the expectations of the host. It is fatal for the
// execution issuing the callback.
type ContractViolation struct {
	Callback string // the name of the offending callback, e.g. getStorage
	Expected string
	Got      string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("contract violation in %s: expected %s, got %s", e.Callback, e.Expected, e.Got)
}

// UsageError signals that an operation was invoked on a component not being
// in the state required by the operation. It indicates a bug in client code.
type UsageError struct {
	Op    string
	State string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid use of %s in state %s", e.Op, e.State)
}

// EncodingError is produced when a value does not fit into the fixed width
// of the type it is converted to.
type EncodingError struct {
	Width int    // in bytes
	Value string // the offending value in a printable form
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("value %s does not fit into %d bytes", e.Value, e.Width)
}
