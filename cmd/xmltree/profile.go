package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// profileError reports a failure writing a cpu or heap profile.
type profileError struct {
	kind string
	path string
	err  error
}

func (e *profileError) Error() string {
	return fmt.Sprintf("%s profile %s: %v", e.kind, e.path, e.err)
}

func (e *profileError) Unwrap() error { return e.err }

// profiler owns the profiles requested by --cpuprofile and --memprofile.
// The cpu profile runs from start until stop; the heap profile is taken at
// stop. stop may be called more than once.
type profiler struct {
	cpuPath string
	memPath string

	cpu     *os.File
	stopped bool
}

func (p *profiler) start() error {
	if p.cpuPath == "" || p.cpu != nil {
		return nil
	}
	f, err := os.Create(p.cpuPath)
	if err != nil {
		return &profileError{kind: "cpu", path: p.cpuPath, err: err}
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		return &profileError{kind: "cpu", path: p.cpuPath, err: errors.Join(err, f.Close())}
	}
	p.cpu = f
	return nil
}

func (p *profiler) stop() error {
	if p.stopped {
		return nil
	}
	p.stopped = true
	var errs []error
	if p.cpu != nil {
		pprof.StopCPUProfile()
		if err := p.cpu.Close(); err != nil {
			errs = append(errs, &profileError{kind: "cpu", path: p.cpuPath, err: err})
		}
		p.cpu = nil
	}
	if p.memPath != "" {
		if err := writeHeapProfile(p.memPath); err != nil {
			errs = append(errs, &profileError{kind: "heap", path: p.memPath, err: err})
		}
	}
	return errors.Join(errs...)
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return errors.Join(err, f.Close())
	}
	return f.Close()
}
