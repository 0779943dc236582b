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

//go:generate mockgen -source engine.go -destination engine_mock.go -package tosca

// Engine is a component capable of executing byte-code against a Host. It is
// typically provided by a natively loaded library.
type Engine interface {
	// Execute runs the given code for the given message. The engine drives
	// zero or more callbacks on the host before returning. A non-nil error is
	// returned if the execution could not be completed, including the case
	// of a host reporting an error from within a callback. In such a case the
	// result is undefined.
	Execute(host Host, message Message, code Code) (Result, error)

	// Release frees all resources bound by the engine. No other operation
	// may be invoked afterwards.
	Release() error
}
