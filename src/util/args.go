package util

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options holds the demo driver's command line configuration: which
// scenario to run, how many colors the allocator gets, how many procedures
// to pipeline concurrently, and how verbose to be about it.
type Options struct {
	Scenario string // Which built-in scenario to assemble and run.
	Colors   int    // K passed to the register allocator.
	Workers  int    // Number of scenario pipelines to run concurrently.
	Verbose  bool   // Set true to print every stage's CFG, not just the final one.
	Dump     bool   // Set true to spew.Dump the final coloring.
}

// ---------------------
// ----- Constants -----
// ---------------------

const maxWorkers = 64 // Maximum pipelines allowed executing in parallel.
const appVersion = "tacopt demo driver 1.0"

// ---------------------
// ----- functions -----
// ---------------------

// ParseArgs parses command line arguments into an Options, applying
// defaults (scenario "ifelse", K=3, one worker) when a flag is omitted.
func ParseArgs() (Options, error) {
	opt := Options{Scenario: "ifelse", Colors: 3, Workers: 1}
	if len(os.Args) < 2 {
		return opt, nil
	}
	args := os.Args[1:]
	for i1 := 0; i1 < len(args); i1++ {
		switch args[i1] {
		case "-h", "--h", "-help", "--help":
			// Help and usage.
			printHelp()
			os.Exit(0)
		case "-scenario":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			if strings.HasPrefix(args[i1+1], "-") {
				return opt, fmt.Errorf("expected scenario name, got new flag %s", args[i1+1])
			}
			opt.Scenario = args[i1+1]
			i1++
		case "-k":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			k, err := strconv.Atoi(args[i1+1])
			if err != nil || k <= 0 {
				return opt, fmt.Errorf("-k expects a positive integer color count, got: %s", args[i1+1])
			}
			opt.Colors = k
			i1++
		case "-workers":
			if i1+1 >= len(args) {
				return opt, fmt.Errorf("got flag %s but no argument", args[i1])
			}
			w, err := strconv.Atoi(args[i1+1])
			if err != nil || w <= 0 || w > maxWorkers {
				return opt, fmt.Errorf("-workers expects an integer in range [1, %d], got: %s", maxWorkers, args[i1+1])
			}
			opt.Workers = w
			i1++
		case "-v", "--v", "-version", "--version":
			// Application version.
			fmt.Println(appVersion)
			os.Exit(0)
		case "-vb":
			// Verbose mode.
			opt.Verbose = true
		case "-dump":
			opt.Dump = true
		default:
			return opt, fmt.Errorf("unexpected flag: %s", args[i1])
		}
	}
	return opt, nil
}

// printHelp prints a helpful usage message to stdout.
func printHelp() {
	w := tabwriter.NewWriter(os.Stdout, 6, 1, 1, 0, 0)
	_, _ = fmt.Fprintln(w, "-h, -help\tPrints this help message and exits the application.")
	_, _ = fmt.Fprintln(w, "--h, --help")
	_, _ = fmt.Fprintln(w, "-scenario\tBuilt-in scenario to assemble and run: straightline, ifelse, loop. Defaults to ifelse. Pass -k 1 to force spilling on any of them.")
	_, _ = fmt.Fprintln(w, "-k\tNumber of colors (registers) given to the allocator. Defaults to 3.")
	_, _ = fmt.Fprintf(w, "-workers\tNumber of scenario pipelines to run concurrently. Must be in range [1, %d].\n", maxWorkers)
	_, _ = fmt.Fprintln(w, "-v, -version\tPrints application version and exits the application.")
	_, _ = fmt.Fprintln(w, "--v, --version")
	_, _ = fmt.Fprintln(w, "-vb\tVerbose mode: print every stage's CFG, not just the final one.")
	_, _ = fmt.Fprintln(w, "-dump\tspew.Dump the final coloring after a run.")
	_ = w.Flush()
}
