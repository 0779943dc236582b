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
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	cliUtils "github.com/Fantom-foundation/Tosca-host/go/driver/cli"
	"github.com/Fantom-foundation/Tosca-host/go/examples"
	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/session"
	"github.com/urfave/cli/v2"
)

var RunCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doRun,
	Name:   "run",
	Usage:  "Runs the sample programs on an engine against the simulated host",
	Flags: []cli.Flag{
		engineFlag,
		cliUtils.LibraryFlag,
		cliUtils.RevisionFlag,
		cliUtils.FilterFlag,
		fixtureFlag,
	},
})

var fixtureFlag = &cli.StringFlag{
	Name:      "fixture",
	Usage:     "JSON file with fixture values overriding the canonical ones",
	TakesFile: true,
}

func doRun(context *cli.Context) error {
	engine, config, err := getEngineConfig(context)
	if err != nil {
		return err
	}
	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}
	f, err := loadFixture(context.String(fixtureFlag.Name))
	if err != nil {
		return err
	}
	failed, err := runPrograms(os.Stdout, engine, config, f, filter)
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d programs failed", failed)
	}
	return nil
}

// loadFixture reads overrides from the given file and applies them to the
// canonical fixture. An empty path yields the canonical fixture.
func loadFixture(path string) (*fixture.Fixture, error) {
	if path == "" {
		return fixture.Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	override, err := fixture.ParseOverride(data)
	if err != nil {
		return nil, fmt.Errorf("invalid fixture file %s: %w", path, err)
	}
	return fixture.Default().Apply(override), nil
}

// runPrograms executes every selected sample program in a fresh session of
// the given engine and reports the outcome. It returns the number of failed
// programs.
func runPrograms(out io.Writer, engine string, config any, f *fixture.Fixture, filter *regexp.Regexp) (int, error) {
	failed := 0
	for _, program := range examples.GetPrograms(f) {
		if !filter.MatchString(program.Name) {
			continue
		}
		s, err := session.Open(engine, config, f)
		if err != nil {
			return failed, fmt.Errorf("failed to open session: %w", err)
		}
		res, execErr := program.RunOn(s)
		check := program.Check(res, execErr, s.Records())
		verdict := "OK"
		if check != nil {
			verdict = "FAILED"
			failed++
		}
		fmt.Fprintf(out, "%-20s %-6s status=%v gasLeft=%d invocations=%d violations=%d\n",
			program.Name, verdict, res.Status, res.GasLeft.ToBig(), s.Invocations(), s.Violations(),
		)
		if check != nil {
			fmt.Fprintf(out, "    %v\n", check)
		}
		if err := s.Release(); err != nil {
			return failed, errors.Join(check, err)
		}
	}
	return failed, nil
}
