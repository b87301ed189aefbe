package renderer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/lumen-rt/lumen/log"
	"github.com/lumen-rt/lumen/scene"
	"github.com/lumen-rt/lumen/tracer"
	"github.com/lumen-rt/lumen/tracer/compute"
	"github.com/lumen-rt/lumen/tracer/compute/device"
)

type Renderer interface {
	// Render frame.
	Render() error

	// Shutdown renderer and any attached tracers.
	Close()

	// Get render statistics.
	Stats() FrameStats

	// Get the rendered RGBA framebuffer.
	FrameBuffer() []uint8
}

// The default renderer splits the frame into horizontal blocks, assigns them
// to the attached tracers via the block scheduler and drives one frame at a
// time through the tracer pipeline.
type defaultRenderer struct {
	logger log.Logger

	options   Options
	sc        *scene.Scene
	scheduler tracer.BlockScheduler

	tracers          []tracer.Tracer
	blockAssignments []uint32

	// Host-shared buffers; tracers write disjoint row ranges.
	accumBuffer []float32
	frameBuffer []uint8

	doneChan chan uint32
	errChan  chan error

	frameCount uint32
	stats      FrameStats
}

// Create a new default renderer, attaching one compute tracer per requested
// tracer count. The pipeline is shared by all tracers.
func NewDefault(sc *scene.Scene, scheduler tracer.BlockScheduler, pipeline *compute.Pipeline, opts Options) (Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 || opts.NumBounces == 0 {
		return nil, ErrInvalidOptions
	}
	if opts.Supersamples == 0 {
		opts.Supersamples = 1
	}
	if opts.SamplesPerPixel == 0 {
		opts.SamplesPerPixel = 1
	}
	if opts.Exposure == 0 {
		opts.Exposure = 1
	}
	if opts.NumTracers == 0 {
		opts.NumTracers = 1
	}

	numPixels := int(opts.FrameW) * int(opts.FrameH)
	r := &defaultRenderer{
		logger:      log.New("renderer"),
		options:     opts,
		sc:          sc,
		scheduler:   scheduler,
		accumBuffer: make([]float32, numPixels*4),
		frameBuffer: make([]uint8, numPixels*4),
		doneChan:    make(chan uint32, opts.NumTracers),
		errChan:     make(chan error, opts.NumTracers),
	}

	var idx uint32
	for idx = 0; idx < opts.NumTracers; idx++ {
		tr := compute.NewTracer(fmt.Sprintf("tracer-%d", idx), device.New(0), pipeline, opts.Supersamples)
		if err := tr.Init(opts.FrameW, opts.FrameH, r.accumBuffer, r.frameBuffer); err != nil {
			r.Close()
			return nil, err
		}
		tr.Update(tracer.UpdateScene, sc)
		tr.Update(tracer.UpdateCamera, sc.Camera)
		r.tracers = append(r.tracers, tr)
	}

	r.logger.Noticef("attached %d tracer(s)", len(r.tracers))
	return r, nil
}

func (r *defaultRenderer) Render() error {
	return r.renderFrame(r.frameCount)
}

func (r *defaultRenderer) Close() {
	for _, tr := range r.tracers {
		tr.Close()
	}
	r.tracers = nil
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) FrameBuffer() []uint8 {
	return r.frameBuffer
}

// Queue state updates on all attached tracers.
func (r *defaultRenderer) update(updateType tracer.UpdateType, data interface{}) {
	for _, tr := range r.tracers {
		tr.Update(updateType, data)
	}
}

// Render a single frame: schedule block heights, enqueue one request per
// tracer and wait for all blocks to complete.
func (r *defaultRenderer) renderFrame(frameCount uint32) error {
	if len(r.tracers) == 0 {
		return ErrNoTracers
	}

	start := time.Now()
	r.blockAssignments = r.scheduler.Schedule(r.tracers, r.options.FrameH)

	var blockY uint32
	for idx, tr := range r.tracers {
		tr.Enqueue(tracer.FrameRequest{
			BlockY:          blockY,
			BlockH:          r.blockAssignments[idx],
			SamplesPerPixel: r.options.SamplesPerPixel,
			Exposure:        r.options.Exposure,
			Seed:            rand.Uint32(),
			FrameCount:      frameCount,
			DoneChan:        r.doneChan,
			ErrChan:         r.errChan,
		})
		blockY += r.blockAssignments[idx]
	}

	// Wait for all tracers to report back
	var pending = len(r.tracers)
	for pending > 0 {
		select {
		case <-r.doneChan:
			pending--
		case err := <-r.errChan:
			return err
		}
	}

	r.frameCount = frameCount + 1
	r.collectStats(time.Since(start))
	return nil
}

func (r *defaultRenderer) collectStats(renderTime time.Duration) {
	r.stats = FrameStats{
		Tracers:    make([]TracerStat, len(r.tracers)),
		RenderTime: renderTime,
	}

	for idx, tr := range r.tracers {
		stats := tr.Stats()
		r.stats.Tracers[idx] = TracerStat{
			Id:           tr.Id(),
			IsPrimary:    idx == 0,
			BlockH:       stats.BlockH,
			FramePercent: float32(stats.BlockH) * 100.0 / float32(r.options.FrameH),
			RenderTime:   stats.RenderTime,
		}
	}
}
