// Package prof wires runtime/pprof and runtime/trace behind the
// --cpu-profile, --mem-profile and --runtime-trace CLI flags.
package prof

import (
	"errors"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"
	"sync"
)

// recorder is one running profiler and the file it streams into.
type recorder struct {
	mu   sync.Mutex
	file *os.File
	stop func()
}

var (
	cpu   recorder
	trace recorder
)

var errRunning = errors.New("profile already running")

func (r *recorder) start(path string, begin func(io.Writer) error, stop func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		return errRunning
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := begin(f); err != nil {
		return errors.Join(err, f.Close())
	}
	r.file, r.stop = f, stop
	return nil
}

// finish stops the profiler and closes its file; a second call does nothing.
func (r *recorder) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	r.stop()
	_ = r.file.Close()
	r.file, r.stop = nil, nil
}

// StartCPU starts sampling the CPU into path.
func StartCPU(path string) error {
	return cpu.start(path, pprof.StartCPUProfile, pprof.StopCPUProfile)
}

// StopCPU stops the CPU profile started by StartCPU.
func StopCPU() { cpu.finish() }

// StartTrace records a runtime execution trace into path.
func StartTrace(path string) error {
	return trace.start(path, rtrace.Start, rtrace.Stop)
}

// StopTrace ends the runtime trace started by StartTrace.
func StopTrace() { trace.finish() }

// WriteMem forces a GC so the heap profile reflects live templates and
// caches only, then writes it to path.
func WriteMem(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
