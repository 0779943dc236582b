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
	"testing"

	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
)

func TestProgramCache_ReusesProgramsOfEqualFixtures(t *testing.T) {
	cache, err := NewProgramCache(4)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	a, err := cache.Get(fixture.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := cache.Get(fixture.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if &a[0] != &b[0] {
		t.Errorf("programs of equal fixtures should be shared")
	}
	if want, got := 1, cache.Len(); want != got {
		t.Errorf("unexpected cache size, wanted %d, got %d", want, got)
	}
}

func TestProgramCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewProgramCache(2)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	for i := 0; i < 5; i++ {
		f := fixture.Default()
		f.StorageValue = tosca.WordFromUint64(uint64(i))
		if _, err := cache.Get(f); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if want, got := 2, cache.Len(); want != got {
		t.Errorf("unexpected cache size, wanted %d, got %d", want, got)
	}
}

func TestProgramCache_InvalidSizeIsRejected(t *testing.T) {
	if _, err := NewProgramCache(0); err == nil {
		t.Errorf("expected invalid size to be rejected")
	}
}
