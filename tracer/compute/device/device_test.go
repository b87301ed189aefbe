package device

import (
	"sync/atomic"
	"testing"
)

func TestExec1DCoversWorkRange(t *testing.T) {
	type spec struct {
		workers        int
		offset         int
		globalWorkSize int
	}
	specs := []spec{
		{1, 0, 64},
		{4, 0, 64},
		{4, 10, 7},
		{16, 0, 3},
	}

	for index, s := range specs {
		dev := New(s.workers)

		visits := make([]int32, s.offset+s.globalWorkSize)
		_, err := dev.Exec1D(s.offset, s.globalWorkSize, func(gid int) {
			atomic.AddInt32(&visits[gid], 1)
		})
		if err != nil {
			t.Fatalf("[spec %d] expected no error; got %v", index, err)
		}

		for gid := 0; gid < s.offset; gid++ {
			if visits[gid] != 0 {
				t.Fatalf("[spec %d] expected gid %d below offset not to be visited; got %d visits", index, gid, visits[gid])
			}
		}
		for gid := s.offset; gid < s.offset+s.globalWorkSize; gid++ {
			if visits[gid] != 1 {
				t.Fatalf("[spec %d] expected gid %d to be visited exactly once; got %d visits", index, gid, visits[gid])
			}
		}
	}
}

func TestExec2DCoversWorkGrid(t *testing.T) {
	var (
		workSizeX = 7
		workSizeY = 5
	)

	dev := New(4)

	visits := make([]int32, workSizeX*workSizeY)
	_, err := dev.Exec2D(0, 0, workSizeX, workSizeY, func(gidX, gidY int) {
		atomic.AddInt32(&visits[gidY*workSizeX+gidX], 1)
	})
	if err != nil {
		t.Fatalf("expected no error; got %v", err)
	}

	for index, count := range visits {
		if count != 1 {
			t.Fatalf("expected work item %d to be visited exactly once; got %d visits", index, count)
		}
	}
}

func TestExecErrors(t *testing.T) {
	dev := New(2)

	if _, err := dev.Exec1D(0, -1, func(gid int) {}); err == nil {
		t.Fatal("expected an error for a negative 1D global work size")
	}

	if _, err := dev.Exec2D(0, 0, 4, -1, func(gidX, gidY int) {}); err == nil {
		t.Fatal("expected an error for a negative 2D global work size")
	}
}

func TestExecEmptyWorkSize(t *testing.T) {
	dev := New(2)

	var visits int32
	if _, err := dev.Exec1D(0, 0, func(gid int) { atomic.AddInt32(&visits, 1) }); err != nil {
		t.Fatalf("expected no error; got %v", err)
	}
	if visits != 0 {
		t.Fatalf("expected no kernel invocations for an empty dispatch; got %d", visits)
	}
}

func TestNewDefaultsToNumCPU(t *testing.T) {
	dev := New(0)
	if dev.Workers() <= 0 {
		t.Fatalf("expected a positive worker count; got %d", dev.Workers())
	}
	if dev.SpeedEstimate() != uint32(dev.Workers()) {
		t.Fatalf("expected speed estimate %d; got %d", dev.Workers(), dev.SpeedEstimate())
	}
}
