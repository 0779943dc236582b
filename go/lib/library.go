// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package lib locates natively compiled engine libraries.
package lib

import (
	"path/filepath"
	"runtime"
)

// DefaultEngine is the base name of the engine library loaded if no other
// library is configured.
const DefaultEngine = "aleth-interpreter"

// Extension returns the file extension of dynamic libraries on the given
// operating system, named as in runtime.GOOS.
func Extension(goos string) string {
	switch goos {
	case "windows":
		return "dll"
	case "darwin":
		return "dylib"
	default:
		return "so"
	}
}

// LibraryName returns the file name of the library with the given base name
// on the current platform, e.g. libevmone.so on Linux.
func LibraryName(base string) string {
	return libraryName(runtime.GOOS, base)
}

func libraryName(goos string, base string) string {
	return "lib" + base + "." + Extension(goos)
}

// Resolve returns the path of the library with the given base name in the
// given directory.
func Resolve(dir string, base string) string {
	return filepath.Join(dir, LibraryName(base))
}
