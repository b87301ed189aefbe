package compute

import (
	"image"
	"image/png"
	"os"
	"time"

	"github.com/lumen-rt/lumen/tracer"
)

// Debug flags.
type DebugFlag uint16

const (
	NoDebug     DebugFlag = 0
	SampleCounts          = 1 << iota
	FrameBufferDump
)

// An alias for functions that can be used as part of the rendering pipeline.
type PipelineStage func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error)

// The list of pluggable stages that are used to render the scene.
type Pipeline struct {
	// Reset the tracer state. This stage is executed whenever the camera
	// or scene changes or the tracer's block assignment moves.
	Reset PipelineStage

	// This stage repopulates empty ray slots with fresh camera rays. It is
	// executed once per frame before the integrator; the integrator invokes
	// the same kernel again for each additional sample pass.
	PrimaryRayGenerator PipelineStage

	// This stage advances the wavefront and adds terminated path
	// contributions into the accumulation buffer.
	Integrator PipelineStage

	// A set of post-processing stages that are executed prior to
	// presenting the final frame.
	PostProcess []PipelineStage
}

func DefaultPipeline(debugFlags DebugFlag, numBounces uint32) *Pipeline {
	pipeline := &Pipeline{
		Reset:               ClearAccumulator(),
		PrimaryRayGenerator: InitCameraRays(),
		Integrator:          WavefrontIntegrator(numBounces),
		PostProcess:         []PipelineStage{},
	}

	if debugFlags&SampleCounts == SampleCounts {
		pipeline.PostProcess = append(pipeline.PostProcess, DebugSampleCounts("debug-sample-counts.png"))
	}

	pipeline.PostProcess = append(pipeline.PostProcess, FlattenSamples())

	if debugFlags&FrameBufferDump == FrameBufferDump {
		pipeline.PostProcess = append(pipeline.PostProcess, SaveFrameBuffer("debug-fb.png"))
	}

	return pipeline
}

// Clear the accumulation buffer and drop in-flight rays.
func ClearAccumulator() PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		return tr.resources.ClearAccumulator(req)
	}
}

// Populate empty ray slots with camera rays.
func InitCameraRays() PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		return tr.resources.InitCameraRays(passSeed(req, 0))
	}
}

// Advance the wavefront with the configured bounce budget. Each sample pass
// repopulates freed slots and then issues one trace dispatch per bounce-budget
// unit; a path always terminates within numBounces dispatches so the slot
// window drains completely every pass.
func WavefrontIntegrator(numBounces uint32) PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		start := time.Now()

		var pass uint32
		for pass = 0; pass < req.SamplesPerPixel; pass++ {
			seed := passSeed(req, pass)

			// Pass 0 slots were populated by the primary ray generator.
			if pass > 0 {
				if _, err := tr.resources.InitCameraRays(seed); err != nil {
					return time.Since(start), err
				}
			}

			var bounce uint32
			for bounce = 0; bounce < numBounces; bounce++ {
				if _, err := tr.resources.RayTrace(wangHash(seed+bounce*0x85ebca6b), numBounces); err != nil {
					return time.Since(start), err
				}
			}
		}

		return time.Since(start), nil
	}
}

// Flatten the accumulation buffer into the framebuffer and re-prime it.
func FlattenSamples() PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		return tr.resources.FlattenSamples(req)
	}
}

// Dump a grayscale heatmap of per-pixel sample counts.
func DebugSampleCounts(imgFile string) PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		if _, err := tr.resources.DebugSampleCounts(req); err != nil {
			return 0, err
		}
		return 0, dumpFrameBuffer(tr, imgFile)
	}
}

// Dump a copy of the RGBA framebuffer.
func SaveFrameBuffer(imgFile string) PipelineStage {
	return func(tr *Tracer, req *tracer.FrameRequest) (time.Duration, error) {
		start := time.Now()
		err := dumpFrameBuffer(tr, imgFile)
		return time.Since(start), err
	}
}

// Write the tracer's full framebuffer to a png file.
func dumpFrameBuffer(tr *Tracer, imgFile string) error {
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	bs := tr.resources.buffers
	im := image.NewRGBA(image.Rect(0, 0, int(bs.frameW), int(bs.frameH)))
	copy(im.Pix, bs.FrameBuffer)

	return png.Encode(f, im)
}

// Derive the dispatch seed for a sample pass of a frame request.
func passSeed(req *tracer.FrameRequest, pass uint32) uint32 {
	return wangHash(req.Seed ^ (req.FrameCount*req.SamplesPerPixel+pass)*0x9e3779b9)
}
