// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"runtime/pprof"

	"github.com/Fantom-foundation/Tosca-host/go/interpreter/evmc"
	"github.com/Fantom-foundation/Tosca-host/go/lib"
	"github.com/Fantom-foundation/Tosca-host/go/tosca"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

type filterFlagType struct {
	cli.StringFlag
}

var FilterFlag = &filterFlagType{
	cli.StringFlag{
		Name:    "filter",
		Aliases: []string{"f"},
		Usage:   "execute only programs which name matches the given regex",
		Value:   "",
	},
}

func (f *filterFlagType) Fetch(context *cli.Context) (*regexp.Regexp, error) {
	return regexp.Compile(context.String(f.Name))
}

type jobsFlagType struct {
	cli.IntFlag
}

var JobsFlag = &jobsFlagType{
	cli.IntFlag{
		Name:    "jobs",
		Aliases: []string{"j"},
		Usage:   "number of sessions run simultaneously",
		Value:   runtime.NumCPU(),
	},
}

func (f *jobsFlagType) Fetch(context *cli.Context) int {
	if jobs := context.Int(f.Name); jobs > 0 {
		return jobs
	}
	return runtime.NumCPU()
}

type iterationsFlagType struct {
	cli.IntFlag
}

var IterationsFlag = &iterationsFlagType{
	cli.IntFlag{
		Name:    "iterations",
		Aliases: []string{"n"},
		Usage:   "number of executions per session",
		Value:   1000,
	},
}

func (f *iterationsFlagType) Fetch(context *cli.Context) (int, error) {
	iterations := context.Int(f.Name)
	if iterations <= 0 {
		return 0, fmt.Errorf("invalid number of iterations: %d", iterations)
	}
	return iterations, nil
}

type libraryFlagType struct {
	cli.StringFlag
}

var LibraryFlag = &libraryFlagType{
	cli.StringFlag{
		Name:      "library",
		Aliases:   []string{"l"},
		Usage:     "file name or path of the EVMC library to load",
		EnvVars:   []string{"EVMC_LIBRARY"},
		Value:     lib.LibraryName(lib.DefaultEngine),
		TakesFile: true,
	},
}

func (f *libraryFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type revisionFlagType struct {
	cli.StringFlag
}

var RevisionFlag = &revisionFlagType{
	cli.StringFlag{
		Name:    "revision",
		Aliases: []string{"r"},
		Usage:   "revision the engine is asked to follow",
		Value:   evmc.NewestSupportedRevision.String(),
	},
}

func (f *revisionFlagType) Fetch(context *cli.Context) (tosca.Revision, error) {
	return tosca.ParseRevision(context.String(f.Name))
}

type portFlagType struct {
	cli.IntFlag
}

var PortFlag = &portFlagType{
	cli.IntFlag{
		Name:    "port",
		Aliases: []string{"p"},
		Usage:   "TCP port the server listens on",
		EnvVars: []string{"PORT"},
		Value:   3000,
	},
}

func (f *portFlagType) Fetch(context *cli.Context) (int, error) {
	port := context.Int(f.Name)
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port: %d", port)
	}
	return port, nil
}

type cpuProfileType struct {
	cli.StringFlag
}

var CpuProfileFlag = &cpuProfileType{
	cli.StringFlag{
		Name:      "cpuprofile",
		Usage:     "store CPU profile in the provided filename",
		TakesFile: true,
	},
}

func (f *cpuProfileType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type verbosityFlagType struct {
	cli.IntFlag
}

var VerbosityFlag = &verbosityFlagType{
	cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	},
}

func (f *verbosityFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

var commonFlags = []cli.Flag{
	CpuProfileFlag,
	VerbosityFlag,
}

// AddCommonFlags extends the given command by the flags shared by all
// commands and wraps its action to set up logging and profiling.
func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {
		SetupLogging(VerbosityFlag.Fetch(ctx))

		if cpuprofileFilename := CpuProfileFlag.Fetch(ctx); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}

// SetupLogging installs a terminal logger on stderr filtering messages below
// the given verbosity.
func SetupLogging(verbosity int) {
	if verbosity <= 0 {
		log.SetDefault(log.NewLogger(log.DiscardHandler()))
		return
	}
	level := log.FromLegacyLevel(verbosity)
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, level, true)))
}
