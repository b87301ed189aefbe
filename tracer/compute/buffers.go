package compute

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/lumen-rt/lumen/scene"
	"github.com/lumen-rt/lumen/types"
)

// A ray slot as persisted in the ray buffer. A slot is either empty (zero
// direction, everything else reset, material set to the none sentinel) or
// live (non-zero direction and bounces below the bounce budget). Slots are
// created empty, populated by the camera-ray initializer, advanced by the
// trace kernel and reset back to empty exactly when their path terminates.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	// Accumulated radiance-throughput product along the path so far.
	Color types.Vec3

	// Count of bounces already applied to this path.
	Bounces uint32

	// Last-hit material index or scene.MatNone.
	Mat int32
}

// Check whether the slot is empty and available for (re)initialization.
func (r *Ray) Empty() bool {
	return r.Dir == (types.Vec3{})
}

// The set of buffers shared between the tracer kernels. The ray buffer holds
// one slot per (pixel, supersample layer) pair for the full frame; the
// accumulation and frame buffers are shared with the host, which hands this
// tracer a block of rows to operate on via SetBlock.
//
// The accumulation buffer stores 4 floats per pixel: RGB holds the
// unnormalized sum of per-sample radiances and the 4th channel holds the
// count of samples summed so far. The channel repurposing is intentional and
// relied upon by the flatten kernel.
type bufferSet struct {
	// Persistent ray slots for the full frame.
	Rays []Ray

	// Shared accumulation buffer, frameW*frameH*4 floats.
	Accumulator []float32

	// Shared RGBA8 output framebuffer.
	FrameBuffer []uint8

	// Shared slot allocation counter. Wraps over the active slot window.
	rayCounter uint32

	frameW       uint32
	frameH       uint32
	supersamples uint32

	// Active block of rows.
	blockY uint32
	blockH uint32
}

func newBufferSet(frameW, frameH, supersamples uint32) *bufferSet {
	bs := &bufferSet{
		Rays:         make([]Ray, int(frameW)*int(frameH)*int(supersamples)),
		frameW:       frameW,
		frameH:       frameH,
		supersamples: supersamples,
		blockH:       frameH,
	}
	bs.wipeSlots()
	return bs
}

// Attach the host-shared accumulation and frame buffers.
func (bs *bufferSet) Attach(accumBuffer []float32, frameBuffer []uint8) {
	bs.Accumulator = accumBuffer
	bs.FrameBuffer = frameBuffer
}

// Set the active block of rows. Changing the window drops any in-flight rays
// of the new window so the camera-ray initializer can repopulate them.
func (bs *bufferSet) SetBlock(blockY, blockH uint32) {
	if bs.blockY == blockY && bs.blockH == blockH {
		return
	}
	bs.blockY = blockY
	bs.blockH = blockH
	bs.wipeSlots()
	atomic.StoreUint32(&bs.rayCounter, 0)
}

// Reset every slot of the active window to the empty sentinel.
func (bs *bufferSet) wipeSlots() {
	base, count := bs.SlotBase(), bs.SlotCount()
	for i := base; i < base+count; i++ {
		bs.Rays[i] = Ray{Mat: scene.MatNone}
	}
}

// Get the first slot index of the active window.
func (bs *bufferSet) SlotBase() int {
	return int(bs.blockY) * int(bs.frameW) * int(bs.supersamples)
}

// Get the number of slots in the active window.
func (bs *bufferSet) SlotCount() int {
	return int(bs.blockH) * int(bs.frameW) * int(bs.supersamples)
}

// Acquire the next ray slot. Every invocation obtains a unique index within a
// dispatch wave by atomically incrementing the shared counter and wrapping it
// to the window size; callers must only ever touch the slot they drew. Over
// many dispatches this approximates round-robin coverage of the window.
func (bs *bufferSet) NextSlot() int {
	next := atomic.AddUint32(&bs.rayCounter, 1) - 1
	return bs.SlotBase() + int(next%uint32(bs.SlotCount()))
}

// Deposit a terminated path's color into the accumulation buffer, counting
// exactly one sample, and reset the slot to the empty sentinel. The additive
// writes use atomic-add semantics so slots of the same pixel may terminate
// concurrently.
func (bs *bufferSet) Terminate(slot int, color types.Vec3) {
	x, y, _ := SlotPixel(slot, bs.frameW, bs.supersamples)
	idx := (int(y)*int(bs.frameW) + int(x)) * 4

	atomicAddFloat32(&bs.Accumulator[idx], color[0])
	atomicAddFloat32(&bs.Accumulator[idx+1], color[1])
	atomicAddFloat32(&bs.Accumulator[idx+2], color[2])
	atomicAddFloat32(&bs.Accumulator[idx+3], 1)

	bs.Rays[slot] = Ray{Mat: scene.MatNone}
}

// Map a slot index to its pixel coordinate and supersample layer. Slots
// interleave the supersample layers of a pixel: consecutive slots cover the
// layers of one pixel before moving to the next pixel in row-major order.
// SlotIndex is the exact inverse; the two must stay in lockstep or rays
// deposit into the wrong accumulation pixel.
func SlotPixel(slot int, frameW, supersamples uint32) (x, y, sample uint32) {
	ss := int(supersamples)
	w := int(frameW)
	sample = uint32(slot % ss)
	pixel := slot / ss
	x = uint32(pixel % w)
	y = uint32(pixel / w)
	return x, y, sample
}

// Map a pixel coordinate and supersample layer to its slot index.
func SlotIndex(x, y, sample, frameW, supersamples uint32) int {
	return (int(y)*int(frameW)+int(x))*int(supersamples) + int(sample)
}

// Add a float32 to an address with atomic-add semantics via a CAS loop.
func atomicAddFloat32(addr *float32, delta float32) {
	ptr := (*uint32)(unsafe.Pointer(addr))
	for {
		old := atomic.LoadUint32(ptr)
		upd := math.Float32bits(math.Float32frombits(old) + delta)
		if atomic.CompareAndSwapUint32(ptr, old, upd) {
			return
		}
	}
}
