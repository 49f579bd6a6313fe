package main

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"meel/internal/prof"
)

func addProfileFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("cpu-profile", "", "write a CPU profile of the run to file")
	flags.String("mem-profile", "", "write a heap profile to file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to file")
}

// profileTargets are the output paths of the profiling flags; empty means off.
type profileTargets struct {
	cpu, mem, runtimeTrace string
}

func readProfileTargets(cmd *cobra.Command) (profileTargets, error) {
	flags := cmd.Root().PersistentFlags()
	var (
		pt   profileTargets
		errs []error
	)
	for name, dst := range map[string]*string{
		"cpu-profile":   &pt.cpu,
		"mem-profile":   &pt.mem,
		"runtime-trace": &pt.runtimeTrace,
	} {
		v, err := flags.GetString(name)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to get %s flag: %w", name, err))
			continue
		}
		*dst = v
	}
	return pt, errors.Join(errs...)
}

// setupProfiling starts the profilers asked for on the command line.
// The heap profile is taken when the returned cleanup runs, after the
// check or the language server is done. Cleanup runs at most once.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	pt, err := readProfileTargets(cmd)
	if err != nil {
		return nil, err
	}

	var stops []func()
	stopAll := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}

	if pt.cpu != "" {
		if err := prof.StartCPU(pt.cpu); err != nil {
			return nil, fmt.Errorf("failed to start cpu profile: %w", err)
		}
		stops = append(stops, prof.StopCPU)
	}
	if pt.runtimeTrace != "" {
		if err := prof.StartTrace(pt.runtimeTrace); err != nil {
			stopAll()
			return nil, fmt.Errorf("failed to start runtime trace: %w", err)
		}
		stops = append(stops, prof.StopTrace)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			stopAll()
			if pt.mem == "" {
				return
			}
			if err := prof.WriteMem(pt.mem); err != nil {
				fmt.Fprintf(os.Stderr, "failed to write heap profile: %v\n", err)
			}
		})
	}, nil
}
