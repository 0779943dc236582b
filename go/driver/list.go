// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	cliUtils "github.com/Fantom-foundation/Tosca-host/go/driver/cli"
	"github.com/Fantom-foundation/Tosca-host/go/examples"
	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/urfave/cli/v2"
)

var ListCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doList,
	Name:   "list",
	Usage:  "Lists the sample programs and the callbacks they trigger",
	Flags: []cli.Flag{
		cliUtils.FilterFlag,
		fixtureFlag,
	},
})

func doList(context *cli.Context) error {
	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}
	f, err := loadFixture(context.String(fixtureFlag.Name))
	if err != nil {
		return err
	}
	listPrograms(os.Stdout, f, filter)
	return nil
}

func listPrograms(out io.Writer, f *fixture.Fixture, filter *regexp.Regexp) {
	for _, program := range examples.GetPrograms(f) {
		if !filter.MatchString(program.Name) {
			continue
		}
		expected := program.Status.String()
		if program.Violation != "" {
			expected = "violation in " + program.Violation
		}
		fmt.Fprintf(out, "%-20s %4d bytes  %-28s [%s]\n",
			program.Name, len(program.Code), expected, strings.Join(program.Callbacks, ", "),
		)
	}
}
