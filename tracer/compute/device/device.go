// Package device provides the compute device abstraction the tracer kernels
// are dispatched on: a fixed pool of workers executing a kernel function over
// a 1D or 2D global work grid. Lanes within a dispatch run to completion and
// never block on one another; any cross-lane coordination happens through
// atomic operations on the shared buffers the kernels close over.
package device

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// A kernel invoked once per global work item of a 1D dispatch.
type KernelFunc1D func(gid int)

// A kernel invoked once per global work item of a 2D dispatch.
type KernelFunc2D func(gidX, gidY int)

type Device struct {
	// Device name.
	Name string

	workers int
}

// Create a new compute device with the given worker count. A non-positive
// count selects one worker per logical CPU.
func New(workers int) *Device {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Device{
		Name:    fmt.Sprintf("cpu (%d workers)", workers),
		workers: workers,
	}
}

func (d *Device) String() string {
	return d.Name
}

// Get the number of workers lanes are fanned out across.
func (d *Device) Workers() int {
	return d.workers
}

// Get the device computation speed estimate.
func (d *Device) SpeedEstimate() uint32 {
	return uint32(d.workers)
}

// Execute a 1D kernel over globalWorkSize work items starting at offset.
func (d *Device) Exec1D(offset, globalWorkSize int, kernel KernelFunc1D) (time.Duration, error) {
	if globalWorkSize < 0 {
		return 0, fmt.Errorf("compute device (%s): invalid global work size %d", d.Name, globalWorkSize)
	}

	tick := time.Now()
	d.dispatch(globalWorkSize, func(begin, end int) {
		for gid := begin; gid < end; gid++ {
			kernel(offset + gid)
		}
	})
	return time.Since(tick), nil
}

// Execute a 2D kernel over a globalWorkSizeX x globalWorkSizeY grid starting
// at (offsetX, offsetY). Work items are distributed to workers by row.
func (d *Device) Exec2D(offsetX, offsetY, globalWorkSizeX, globalWorkSizeY int, kernel KernelFunc2D) (time.Duration, error) {
	if globalWorkSizeX < 0 || globalWorkSizeY < 0 {
		return 0, fmt.Errorf("compute device (%s): invalid global work size %dx%d", d.Name, globalWorkSizeX, globalWorkSizeY)
	}

	tick := time.Now()
	d.dispatch(globalWorkSizeY, func(begin, end int) {
		for gy := begin; gy < end; gy++ {
			for gx := 0; gx < globalWorkSizeX; gx++ {
				kernel(offsetX+gx, offsetY+gy)
			}
		}
	})
	return time.Since(tick), nil
}

// Fan out the [0, size) index range across the worker pool in contiguous
// chunks and wait for all workers to drain.
func (d *Device) dispatch(size int, run func(begin, end int)) {
	if size == 0 {
		return
	}

	workers := d.workers
	if workers > size {
		workers = size
	}
	chunk := (size + workers - 1) / workers

	var wg sync.WaitGroup
	for begin := 0; begin < size; begin += chunk {
		end := begin + chunk
		if end > size {
			end = size
		}

		wg.Add(1)
		go func(begin, end int) {
			defer wg.Done()
			run(begin, end)
		}(begin, end)
	}
	wg.Wait()
}
