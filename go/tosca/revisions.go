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
	"encoding/json"
	"fmt"
	"strings"
)

// Revision is an enumeration for EVM specification revisions (aka. Hard-Forks)
// an engine may be asked to follow.
type Revision int

const (
	R07_Istanbul Revision = iota
	R09_Berlin
	R10_London
	R11_Paris
	R12_Shanghai
	R13_Cancun
	numRevisions int = iota
)

var revisionNames = [numRevisions]string{
	"Istanbul",
	"Berlin",
	"London",
	"Paris",
	"Shanghai",
	"Cancun",
}

func (r Revision) String() string {
	if r < 0 || int(r) >= numRevisions {
		return fmt.Sprintf("Revision(%d)", r)
	}
	return revisionNames[r]
}

// ParseRevision resolves a revision by its name, ignoring the case.
func ParseRevision(name string) (Revision, error) {
	for i, cur := range revisionNames {
		if strings.EqualFold(cur, name) {
			return Revision(i), nil
		}
	}
	return 0, fmt.Errorf("unknown revision: %s", name)
}

func (r Revision) MarshalJSON() ([]byte, error) {
	if r < 0 || int(r) >= numRevisions {
		return nil, &json.UnsupportedValueError{Str: r.String()}
	}
	return json.Marshal(r.String())
}

func (r *Revision) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	// JSON names are case-sensitive, unlike command line arguments.
	for i, cur := range revisionNames {
		if cur == s {
			*r = Revision(i)
			return nil
		}
	}
	return fmt.Errorf("unknown revision: %q", s)
}
