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
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	cliUtils "github.com/Fantom-foundation/Tosca-host/go/driver/cli"
	"github.com/Fantom-foundation/Tosca-host/go/examples"
	"github.com/Fantom-foundation/Tosca-host/go/fixture"
	"github.com/Fantom-foundation/Tosca-host/go/session"
	"github.com/dsnet/golib/unitconv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var BenchCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doBench,
	Name:   "bench",
	Usage:  "Measures session setup and execution rates of an engine",
	Flags: []cli.Flag{
		engineFlag,
		cliUtils.LibraryFlag,
		cliUtils.RevisionFlag,
		cliUtils.FilterFlag,
		cliUtils.JobsFlag,
		cliUtils.IterationsFlag,
	},
})

func doBench(context *cli.Context) error {
	engine, config, err := getEngineConfig(context)
	if err != nil {
		return err
	}
	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}
	iterations, err := cliUtils.IterationsFlag.Fetch(context)
	if err != nil {
		return err
	}
	jobs := cliUtils.JobsFlag.Fetch(context)

	f := fixture.Default()
	var programs []examples.Program
	for _, program := range examples.GetPrograms(f) {
		if filter.MatchString(program.Name) {
			programs = append(programs, program)
		}
	}

	params := benchParams{
		engine:     engine,
		config:     config,
		fixture:    f,
		programs:   programs,
		jobs:       jobs,
		iterations: iterations,
	}

	printProgress := func(relativeTime time.Duration, rate float64, current int64) {
		fmt.Printf(
			"[t=%4d:%02d] - Processing ~%s executions per second, total %d\n",
			int(relativeTime.Seconds())/60, int(relativeTime.Seconds())%60,
			unitconv.FormatPrefix(rate, unitconv.SI, 0), current,
		)
	}

	fmt.Printf("Running %d iterations in each of %d sessions ...\n", iterations, jobs)
	stats, err := benchmark(context.Context, params, printProgress)
	if err != nil {
		return err
	}
	fmt.Println(stats)
	return nil
}

type benchParams struct {
	engine     string
	config     any
	fixture    *fixture.Fixture
	programs   []examples.Program
	jobs       int
	iterations int
}

type benchStats struct {
	sessions   int
	executions int64
	setup      time.Duration
	elapsed    time.Duration
}

func (s benchStats) String() string {
	setupRate := float64(s.sessions) / s.setup.Seconds()
	executionRate := float64(s.executions) / s.elapsed.Seconds()
	return fmt.Sprintf(
		"sessions: %d in %v (%s/s), executions: %d in %v (%s/s)",
		s.sessions, s.setup, unitconv.FormatPrefix(setupRate, unitconv.SI, 1),
		s.executions, s.elapsed, unitconv.FormatPrefix(executionRate, unitconv.SI, 1),
	)
}

// benchmark opens one session per job and runs the given programs round-robin
// in all sessions in parallel. Any unexpected program outcome aborts the run.
func benchmark(
	ctx context.Context,
	params benchParams,
	printProgress func(relativeTime time.Duration, rate float64, current int64),
) (benchStats, error) {
	if len(params.programs) == 0 {
		return benchStats{}, fmt.Errorf("no programs selected")
	}
	if params.jobs <= 0 || params.iterations <= 0 {
		return benchStats{}, fmt.Errorf("invalid benchmark size: %d jobs, %d iterations", params.jobs, params.iterations)
	}

	start := time.Now()
	sessions := make([]*session.Session, 0, params.jobs)
	release := func() error {
		var errs []error
		for _, s := range sessions {
			errs = append(errs, s.Release())
		}
		return errors.Join(errs...)
	}
	for i := 0; i < params.jobs; i++ {
		s, err := session.Open(params.engine, params.config, params.fixture)
		if err != nil {
			return benchStats{}, errors.Join(fmt.Errorf("failed to open session: %w", err), release())
		}
		sessions = append(sessions, s)
	}
	setup := time.Since(start)

	var counter atomic.Int64
	stop := reportProgress(&counter, 5*time.Second, printProgress)

	start = time.Now()
	group, ctx := errgroup.WithContext(ctx)
	for _, s := range sessions {
		group.Go(func() error {
			for i := 0; i < params.iterations; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				program := params.programs[i%len(params.programs)]
				res, err := program.RunOn(s)
				if check := program.Check(res, err, nil); check != nil {
					return fmt.Errorf("program %s: %w", program.Name, check)
				}
				counter.Add(1)
			}
			return nil
		})
	}
	err := group.Wait()
	elapsed := time.Since(start)
	stop()

	stats := benchStats{
		sessions:   len(sessions),
		executions: counter.Load(),
		setup:      setup,
		elapsed:    elapsed,
	}
	return stats, errors.Join(err, release())
}

// reportProgress periodically reports the rate at which the given counter
// grows until the returned stop function is called.
func reportProgress(
	counter *atomic.Int64,
	period time.Duration,
	printProgress func(relativeTime time.Duration, rate float64, current int64),
) (stop func()) {
	done := make(chan struct{})
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		startTime := time.Now()
		lastTime := startTime
		lastCounter := int64(0)
		for {
			select {
			case <-done:
				return
			case curTime := <-ticker.C:
				cur := counter.Load()

				diffCounter := cur - lastCounter
				diffTime := curTime.Sub(lastTime)

				lastTime = curTime
				lastCounter = cur

				relativeTime := curTime.Sub(startTime)
				rate := float64(diffCounter) / diffTime.Seconds()
				printProgress(relativeTime, rate, cur)
			}
		}
	}()
	return func() {
		close(done)
		<-printerDone
	}
}
