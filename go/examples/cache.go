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
	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ProgramCache retains the programs assembled for recently used fixtures.
// It is safe for concurrent use.
type ProgramCache struct {
	cache *lru.Cache[tosca.Word, []Program]
}

func NewProgramCache(size int) (*ProgramCache, error) {
	cache, err := lru.New[tosca.Word, []Program](size)
	if err != nil {
		return nil, err
	}
	return &ProgramCache{cache: cache}, nil
}

// Get provides the programs for the given fixture, assembling them if they
// are not cached. The result is shared and must not be modified.
func (c *ProgramCache) Get(f *fixture.Fixture) ([]Program, error) {
	hash, err := f.Hash()
	if err != nil {
		return nil, err
	}
	if programs, found := c.cache.Get(hash); found {
		return programs, nil
	}
	programs := GetPrograms(f)
	c.cache.Add(hash, programs)
	return programs, nil
}

func (c *ProgramCache) Len() int {
	return c.cache.Len()
}
