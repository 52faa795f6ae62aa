// Command tacopt is a demo driver for the core pipeline: assemble one of a
// few built-in scenarios, run it through CFG construction, SSA construction
// and graph-coloring register allocation, and print the result. It exists
// to exercise the library surface described by the core; it owns no wire
// format of its own.
package main

import (
	"fmt"
	"os"
	"sync"

	"tacopt/src/cfg"
	"tacopt/src/debug"
	"tacopt/src/regalloc"
	"tacopt/src/ssa"
	"tacopt/src/util"
)

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("argument error: %s\n", err)
		os.Exit(1)
	}

	// One pipeline per worker, run concurrently; results and errors are
	// collected through a shared error listener rather than a shared CFG.
	pe := util.NewPerror(opt.Workers)
	results := make([]*runResult, opt.Workers)

	var wg sync.WaitGroup
	for i := 0; i < opt.Workers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			tag := util.NewTag(util.TagWorker)
			res, err := run(opt, tag)
			if err != nil {
				pe.Append(fmt.Errorf("%s: %w", tag, err))
				return
			}
			results[i] = res
		}()
	}
	wg.Wait()
	pe.Stop()

	if errs := pe.Drain(); len(errs) > 0 {
		for _, err := range errs {
			fmt.Println(err)
		}
		os.Exit(1)
	}

	for _, res := range results {
		if res == nil {
			continue
		}
		fmt.Printf("=== %s (scenario %q, K=%d) ===\n", res.tag, opt.Scenario, opt.Colors)
		debug.PrintGraph(os.Stdout, res.graph)
		if opt.Dump {
			debug.DumpColoring(os.Stdout, res.graph, res.coloring)
		}
	}
}

type runResult struct {
	tag      string
	graph    *cfg.Graph
	coloring *regalloc.Coloring
}

// run assembles opt.Scenario, builds its CFG, converts to SSA, and
// allocates with opt.Colors, printing intermediate CFGs when opt.Verbose.
func run(opt util.Options, tag string) (*runResult, error) {
	insts, err := build(opt.Scenario)
	if err != nil {
		return nil, err
	}

	g, err := cfg.Build(insts)
	if err != nil {
		return nil, fmt.Errorf("cfg build: %w", err)
	}
	if opt.Verbose {
		fmt.Printf("--- %s: normal-form CFG ---\n", tag)
		debug.PrintGraph(os.Stdout, g)
	}

	if err := ssa.ToSSA(g); err != nil {
		return nil, fmt.Errorf("ssa construction: %w", err)
	}
	if opt.Verbose {
		fmt.Printf("--- %s: SSA-form CFG ---\n", tag)
		debug.PrintGraph(os.Stdout, g)
	}

	coloring, err := regalloc.Allocate(g, opt.Colors)
	if err != nil {
		return nil, fmt.Errorf("register allocation: %w", err)
	}

	return &runResult{tag: tag, graph: g, coloring: coloring}, nil
}
