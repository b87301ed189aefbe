package compute

import (
	"sync"
	"testing"

	"github.com/lumen-rt/lumen/scene"
	"github.com/lumen-rt/lumen/types"
)

func TestSlotMappingRoundTrip(t *testing.T) {
	type spec struct {
		frameW       uint32
		frameH       uint32
		supersamples uint32
	}
	specs := []spec{
		{1, 1, 1},
		{4, 4, 2},
		{7, 3, 4},
		{16, 16, 1},
	}

	for index, s := range specs {
		numSlots := int(s.frameW) * int(s.frameH) * int(s.supersamples)
		for slot := 0; slot < numSlots; slot++ {
			x, y, sample := SlotPixel(slot, s.frameW, s.supersamples)

			if x >= s.frameW || y >= s.frameH || sample >= s.supersamples {
				t.Fatalf("[spec %d] slot %d mapped out of bounds: (%d, %d, %d)", index, slot, x, y, sample)
			}

			if got := SlotIndex(x, y, sample, s.frameW, s.supersamples); got != slot {
				t.Fatalf("[spec %d] expected slot %d to round-trip; got %d", index, slot, got)
			}
		}
	}
}

func TestNextSlotCoversWindowBeforeWrapping(t *testing.T) {
	bs := newBufferSet(4, 2, 2)
	numSlots := bs.SlotCount()

	seen := make(map[int]struct{}, numSlots)
	for i := 0; i < numSlots; i++ {
		slot := bs.NextSlot()
		if slot < bs.SlotBase() || slot >= bs.SlotBase()+numSlots {
			t.Fatalf("expected slot in [%d, %d); got %d", bs.SlotBase(), bs.SlotBase()+numSlots, slot)
		}
		if _, exists := seen[slot]; exists {
			t.Fatalf("expected %d unique slots before the counter wraps; slot %d drawn twice", numSlots, slot)
		}
		seen[slot] = struct{}{}
	}

	if slot := bs.NextSlot(); slot != bs.SlotBase() {
		t.Fatalf("expected counter to wrap back to slot %d; got %d", bs.SlotBase(), slot)
	}
}

func TestSetBlock(t *testing.T) {
	bs := newBufferSet(4, 4, 1)

	live := Ray{Dir: types.Vec3{0, 0, -1}, Bounces: 2}
	bs.Rays[1] = live

	bs.SetBlock(2, 2)

	if base, count := bs.SlotBase(), bs.SlotCount(); base != 8 || count != 8 {
		t.Fatalf("expected slot window [8, 16); got base %d count %d", base, count)
	}
	for slot := 8; slot < 16; slot++ {
		if !bs.Rays[slot].Empty() || bs.Rays[slot].Mat != scene.MatNone {
			t.Fatalf("expected slot %d of the new window to be empty; got %+v", slot, bs.Rays[slot])
		}
	}
	if bs.Rays[1] != live {
		t.Fatalf("expected slot outside the window to be untouched; got %+v", bs.Rays[1])
	}
	if slot := bs.NextSlot(); slot != 8 {
		t.Fatalf("expected slot counter to restart at the window base; got %d", slot)
	}

	// Setting the same block again must not drop in-flight rays.
	bs.Rays[9] = live
	bs.SetBlock(2, 2)
	if bs.Rays[9] != live {
		t.Fatalf("expected in-flight ray to survive a no-op block assignment; got %+v", bs.Rays[9])
	}
}

func TestTerminate(t *testing.T) {
	bs := newBufferSet(2, 2, 2)
	bs.Attach(make([]float32, 2*2*4), make([]uint8, 2*2*4))

	slotA := SlotIndex(1, 1, 0, 2, 2)
	slotB := SlotIndex(1, 1, 1, 2, 2)
	bs.Rays[slotA] = Ray{Dir: types.Vec3{0, 0, -1}}
	bs.Rays[slotB] = Ray{Dir: types.Vec3{0, 0, -1}}

	bs.Terminate(slotA, types.Vec3{1, 2, 3})

	idx := (1*2 + 1) * 4
	if got := bs.Accumulator[idx : idx+4]; got[0] != 1 || got[1] != 2 || got[2] != 3 || got[3] != 1 {
		t.Fatalf("expected accumulator entry [1 2 3 1]; got %v", got)
	}
	if !bs.Rays[slotA].Empty() || bs.Rays[slotA].Mat != scene.MatNone {
		t.Fatalf("expected terminated slot to be reset; got %+v", bs.Rays[slotA])
	}

	// A second sample of the same pixel adds on top.
	bs.Terminate(slotB, types.Vec3{1, 2, 3})
	if got := bs.Accumulator[idx : idx+4]; got[0] != 2 || got[1] != 4 || got[2] != 6 || got[3] != 2 {
		t.Fatalf("expected accumulator entry [2 4 6 2]; got %v", got)
	}
}

func TestAtomicAddFloat32(t *testing.T) {
	var (
		numWorkers      = 8
		addsPerWorker   = 1000
		value   float32 = 0
	)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < addsPerWorker; i++ {
				atomicAddFloat32(&value, 0.5)
			}
		}()
	}
	wg.Wait()

	exp := float32(numWorkers*addsPerWorker) * 0.5
	if value != exp {
		t.Fatalf("expected %f; got %f", exp, value)
	}
}
