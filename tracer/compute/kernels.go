package compute

import (
	"math"
	"time"

	"github.com/lumen-rt/lumen/scene"
	"github.com/lumen-rt/lumen/tracer"
	"github.com/lumen-rt/lumen/tracer/compute/device"
	"github.com/lumen-rt/lumen/types"
)

const (
	// Minimum hit distance for intersection queries; avoids self-intersection
	// of scattered rays with the surface they just left.
	intersectEpsilon = 1e-3

	// Weight assigned to the flattened image when accumulation restarts:
	// the re-primed buffer behaves as if that many prior samples produced it.
	flattenScale = 16
)

// Camera parameters snapshotted for the kernels. The matrices must be
// mutually consistent inverses; degenerate transforms are the host's problem
// and manifest as visibly wrong renders rather than errors.
type cameraConfig struct {
	invViewMat types.Mat4
	invProjMat types.Mat4
	aperture   float32
	focusDist  float32
	invertY    bool
}

// A container for the compute device, the kernel buffers and the scene and
// camera state the kernels close over.
type deviceResources struct {
	device  *device.Device
	buffers *bufferSet

	sc     *scene.Scene
	camera cameraConfig

	// Cumulative per-kernel execution times for the current frame.
	kernelTimes [numKernels]time.Duration
}

func newDeviceResources(frameW, frameH, supersamples uint32, dev *device.Device) *deviceResources {
	return &deviceResources{
		device:  dev,
		buffers: newBufferSet(frameW, frameH, supersamples),
	}
}

// Swap in new scene data.
func (dr *deviceResources) SetScene(sc *scene.Scene) {
	dr.sc = sc
}

// Snapshot camera state for the kernels.
func (dr *deviceResources) SetCamera(c *scene.Camera) {
	dr.camera = cameraConfig{
		invViewMat: c.InvViewMat,
		invProjMat: c.InvProjMat,
		aperture:   c.Aperture,
		focusDist:  c.FocusDist,
		invertY:    c.InvertY,
	}
}

func (dr *deviceResources) resetKernelTimes() {
	dr.kernelTimes = [numKernels]time.Duration{}
}

func (dr *deviceResources) recordKernelTime(kt kernelType, d time.Duration) {
	dr.kernelTimes[kt] += d
}

// Clear the accumulation buffer rows of the active block, drop any in-flight
// rays and reset the slot counter.
func (dr *deviceResources) ClearAccumulator(req *tracer.FrameRequest) (time.Duration, error) {
	bs := dr.buffers
	base := int(req.BlockY) * int(bs.frameW) * 4

	elapsed, err := dr.device.Exec1D(0, int(req.BlockH)*int(bs.frameW), func(gid int) {
		idx := base + gid*4
		bs.Accumulator[idx] = 0
		bs.Accumulator[idx+1] = 0
		bs.Accumulator[idx+2] = 0
		bs.Accumulator[idx+3] = 0
	})
	if err != nil {
		return elapsed, err
	}

	bs.wipeSlots()
	dr.recordKernelTime(clearAccumulator, elapsed)
	return elapsed, nil
}

// Construct fresh primary rays for any slot of the active window that is
// currently empty. Live slots are left untouched; this kernel is the only
// writer of empty slots, which is what keeps it from racing with the trace
// kernel.
func (dr *deviceResources) InitCameraRays(seed uint32) (time.Duration, error) {
	bs := dr.buffers
	sc := dr.sc
	base := bs.SlotBase()

	elapsed, err := dr.device.Exec1D(0, bs.SlotCount(), func(gid int) {
		slot := base + gid
		r := &bs.Rays[slot]
		if !r.Empty() {
			return
		}

		x, y, _ := SlotPixel(slot, bs.frameW, bs.supersamples)
		rng := newSampler(seed, uint32(slot))

		// Sub-pixel jitter bounded to one pixel's width/height.
		u := (float32(x) + rng.Float32()) / float32(bs.frameW)
		v := (float32(y) + rng.Float32()) / float32(bs.frameH)

		origin, dir := dr.cameraRay(u, v, rng)
		*r = Ray{
			Origin: origin,
			Dir:    dir,
			Color:  sc.SkyColor(dir),
			Mat:    scene.MatNone,
		}
	})
	if err != nil {
		return elapsed, err
	}

	dr.recordKernelTime(initCameraRays, elapsed)
	return elapsed, nil
}

// Advance claimed ray slots by one bounce. Each lane draws the next slot from
// the shared counter, loads the persisted path state, runs one
// intersect/scatter step and writes back either the continued ray or a
// terminal deposit plus an emptied slot.
func (dr *deviceResources) RayTrace(seed, numBounces uint32) (time.Duration, error) {
	bs := dr.buffers
	sc := dr.sc

	elapsed, err := dr.device.Exec1D(0, bs.SlotCount(), func(gid int) {
		slot := bs.NextSlot()
		r := &bs.Rays[slot]

		// Empty slot: skip this lane for the dispatch. Repopulating the slot
		// is solely the camera-ray initializer's job; doing it here would
		// break the single-writer ownership of empty slots.
		if r.Empty() {
			return
		}

		r.Bounces++

		ray := scene.Ray{Origin: r.Origin, Dir: r.Dir}
		rec := sc.Intersect(ray, intersectEpsilon, math.MaxFloat32)
		if rec.T < 0 {
			// Path escapes to the environment.
			bs.Terminate(slot, r.Color)
			return
		}

		r.Mat = rec.MatIndex
		rng := newSampler(seed, uint32(slot))
		out, attenuation, ok := scene.Scatter(sc.Materials[rec.MatIndex], ray, rec, rng)
		if !ok {
			bs.Terminate(slot, r.Color)
			return
		}

		r.Color = r.Color.MulVec(attenuation)
		r.Origin = out.Origin
		r.Dir = out.Dir

		if r.Bounces >= numBounces {
			// Ran out of light transport budget; the path contributes
			// nothing rather than a free emissive hit.
			bs.Terminate(slot, types.Vec3{})
		}
	})
	if err != nil {
		return elapsed, err
	}

	dr.recordKernelTime(rayTrace, elapsed)
	return elapsed, nil
}

// Convert the accumulated (sum, count) pairs of the active block into
// displayable colors and re-prime the accumulation buffer for continued
// accumulation: the flattened image is written back as a running sum weighted
// as flattenScale prior samples. This restarts accumulation with one frame of
// history, keeping memory bounded regardless of total sample count.
func (dr *deviceResources) FlattenSamples(req *tracer.FrameRequest) (time.Duration, error) {
	bs := dr.buffers
	base := int(req.BlockY) * int(bs.frameW)
	exposure := req.Exposure

	elapsed, err := dr.device.Exec1D(0, int(req.BlockH)*int(bs.frameW), func(gid int) {
		idx := (base + gid) * 4

		div := bs.Accumulator[idx+3]
		if div < 1 {
			div = 1
		}
		norm := types.Vec3{
			bs.Accumulator[idx] / div,
			bs.Accumulator[idx+1] / div,
			bs.Accumulator[idx+2] / div,
		}.Clamp01()

		bs.Accumulator[idx] = norm[0] * flattenScale
		bs.Accumulator[idx+1] = norm[1] * flattenScale
		bs.Accumulator[idx+2] = norm[2] * flattenScale
		bs.Accumulator[idx+3] = flattenScale

		display := norm.Mul(exposure).Clamp01()
		bs.FrameBuffer[idx] = gammaByte(display[0])
		bs.FrameBuffer[idx+1] = gammaByte(display[1])
		bs.FrameBuffer[idx+2] = gammaByte(display[2])
		bs.FrameBuffer[idx+3] = 255
	})
	if err != nil {
		return elapsed, err
	}

	dr.recordKernelTime(flattenSamples, elapsed)
	return elapsed, nil
}

// Render the per-pixel sample counts of the active block into the
// framebuffer as a grayscale heatmap. Must run before FlattenSamples as the
// flatten kernel re-primes the counts.
func (dr *deviceResources) DebugSampleCounts(req *tracer.FrameRequest) (time.Duration, error) {
	bs := dr.buffers
	base := int(req.BlockY) * int(bs.frameW)

	elapsed, err := dr.device.Exec1D(0, int(req.BlockH)*int(bs.frameW), func(gid int) {
		idx := (base + gid) * 4
		count := bs.Accumulator[idx+3]
		if count > 255 {
			count = 255
		}
		v := uint8(count)
		bs.FrameBuffer[idx] = v
		bs.FrameBuffer[idx+1] = v
		bs.FrameBuffer[idx+2] = v
		bs.FrameBuffer[idx+3] = 255
	})
	if err != nil {
		return elapsed, err
	}

	dr.recordKernelTime(debugSampleCounts, elapsed)
	return elapsed, nil
}

// Construct a world-space camera ray for a normalized screen coordinate.
// Near-plane and focus-plane points are unprojected through the inverse
// projection/view transforms; a disk-sampled lens offset bounded by the
// aperture radius is applied with opposite sign to the two points so that
// geometry at the focus distance stays sharp while everything else blurs
// proportionally to its distance from it.
func (dr *deviceResources) cameraRay(u, v float32, rng *sampler) (types.Vec3, types.Vec3) {
	cam := &dr.camera

	ndcY := 1 - 2*v
	if cam.invertY {
		ndcY = -ndcY
	}
	clip := types.XYZW(2*u-1, ndcY, -1, 1)

	// Near-plane point in camera space.
	viewNear := cam.invProjMat.Mul4x1(clip)
	near := viewNear.Mul(1.0 / viewNear[3]).Vec3()

	// Scale out to the focus plane; the camera looks down -Z in view space.
	focus := near.Mul(cam.focusDist / -near[2])

	worldNear := cam.invViewMat.TransformPoint(near)
	worldFocus := cam.invViewMat.TransformPoint(focus)

	lens := rng.InUnitDisk().Mul(cam.aperture)
	offset := cam.invViewMat.TransformDir(types.Vec3{lens[0], lens[1], 0})

	start := worldNear.Add(offset)
	end := worldFocus.Sub(offset)

	return start, end.Sub(start).Normalize()
}

// Map a linear color component to an 8-bit framebuffer value with gamma 2.0.
func gammaByte(v float32) uint8 {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return uint8(float32(math.Sqrt(float64(v))) * 255)
}
