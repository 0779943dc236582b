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
	"os/signal"
	"syscall"

	cliUtils "github.com/Fantom-foundation/Tosca-host/go/driver/cli"
	"github.com/Fantom-foundation/Tosca-host/go/server"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

var ServeCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doServe,
	Name:   "serve",
	Usage:  "Serves fixture configurations and sample program runs over HTTP",
	Flags: []cli.Flag{
		cliUtils.PortFlag,
		engineFlag,
		cliUtils.LibraryFlag,
		cliUtils.RevisionFlag,
		&cli.BoolFlag{
			Name:  "no-engine",
			Usage: "disable running sample programs through the server",
		},
	},
})

func doServe(context *cli.Context) error {
	port, err := cliUtils.PortFlag.Fetch(context)
	if err != nil {
		return err
	}
	config := server.Config{}
	if !context.Bool("no-engine") {
		engine, engineConfig, err := getEngineConfig(context)
		if err != nil {
			return err
		}
		config.Engine = engine
		config.EngineConfig = engineConfig
	}

	srv, err := server.New(log.Root(), config)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, fmt.Sprintf(":%d", port))
}
