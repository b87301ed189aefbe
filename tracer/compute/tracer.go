package compute

import (
	"fmt"
	"sync"
	"time"

	"github.com/lumen-rt/lumen/log"
	"github.com/lumen-rt/lumen/scene"
	"github.com/lumen-rt/lumen/tracer"
	"github.com/lumen-rt/lumen/tracer/compute/device"
)

// A tracer implementation that executes the wavefront kernels on a compute
// device. Frame requests are processed by a dedicated worker goroutine;
// queued state updates are committed before the next frame renders.
type Tracer struct {
	logger log.Logger

	sync.Mutex
	wg sync.WaitGroup

	// The device associated with this tracer instance.
	device *device.Device

	// The allocated kernel resources.
	resources *deviceResources

	// The tracer id.
	id string

	// Ray slots allocated per pixel.
	supersamples uint32

	// A buffer for queuing updates. Updates are grouped by type and
	// latest updates always overwrite the previous ones.
	updateBuffer map[tracer.UpdateType]interface{}

	// A channel for receiving frame requests from the renderer.
	frameReqChan chan tracer.FrameRequest

	// A channel for signaling the worker to exit.
	closeChan chan struct{}

	// Statistics for last rendered frame.
	stats *tracer.Stats

	// The tracer rendering pipeline.
	pipeline *Pipeline

	// Set whenever state changed in a way that invalidates the accumulated
	// image (camera move, scene swap, block reassignment).
	needsReset bool
}

// Create a new compute tracer.
func NewTracer(id string, dev *device.Device, pipeline *Pipeline, supersamples uint32) *Tracer {
	if supersamples == 0 {
		supersamples = 1
	}

	return &Tracer{
		logger:       log.New(fmt.Sprintf("compute tracer (%s)", id)),
		device:       dev,
		id:           id,
		supersamples: supersamples,
		updateBuffer: make(map[tracer.UpdateType]interface{}),
		frameReqChan: make(chan tracer.FrameRequest, 1),
		stats:        &tracer.Stats{},
		pipeline:     pipeline,
	}
}

// Get tracer id.
func (tr *Tracer) Id() string {
	return tr.id
}

// Get the computation speed estimate.
func (tr *Tracer) Speed() uint32 {
	return tr.device.SpeedEstimate()
}

// Initialize tracer: allocate the ray buffer, attach the host-shared
// accumulation and frame buffers and start the frame worker.
func (tr *Tracer) Init(frameW, frameH uint32, accumBuffer []float32, frameBuffer []uint8) error {
	tr.Lock()
	defer tr.Unlock()

	if tr.resources != nil {
		return ErrAlreadyInit
	}
	if frameW == 0 || frameH == 0 {
		return ErrInvalidDims
	}

	numPixels := int(frameW) * int(frameH)
	if len(accumBuffer) != numPixels*4 || len(frameBuffer) != numPixels*4 {
		return ErrBufferSizeWrong
	}

	tr.resources = newDeviceResources(frameW, frameH, tr.supersamples, tr.device)
	tr.resources.buffers.Attach(accumBuffer, frameBuffer)
	tr.needsReset = true

	if tr.closeChan == nil {
		tr.startWorker()
	}

	return nil
}

// Shutdown and cleanup tracer.
func (tr *Tracer) Close() {
	tr.Lock()
	defer tr.Unlock()

	if tr.closeChan != nil {
		tr.closeChan <- struct{}{}

		// wait for worker to ack close and shutdown channel
		<-tr.closeChan
		close(tr.closeChan)
		tr.closeChan = nil
	}

	tr.resources = nil
}

// Enqueue a frame request.
func (tr *Tracer) Enqueue(req tracer.FrameRequest) {
	select {
	case tr.frameReqChan <- req:
	default:
		// drop the request if worker is not listening
		tr.logger.Error("request processor did not receive frame request")
	}
}

// Queue a state update to be applied before the next frame.
func (tr *Tracer) Update(updateType tracer.UpdateType, data interface{}) {
	tr.Lock()
	defer tr.Unlock()

	tr.updateBuffer[updateType] = data
}

// Retrieve last frame statistics.
func (tr *Tracer) Stats() *tracer.Stats {
	return tr.stats
}

// Commit queued changes.
func (tr *Tracer) commitUpdates() error {
	tr.Lock()
	defer tr.Unlock()

	for updateType, data := range tr.updateBuffer {
		switch updateType {
		case tracer.UpdateScene:
			tr.resources.SetScene(data.(*scene.Scene))
		case tracer.UpdateCamera:
			tr.resources.SetCamera(data.(*scene.Camera))
		default:
			return fmt.Errorf("unsupported update type %d", updateType)
		}
	}

	if len(tr.updateBuffer) != 0 {
		tr.needsReset = true
		tr.updateBuffer = make(map[tracer.UpdateType]interface{})
	}

	return nil
}

// Spawn a goroutine to process frame render requests.
func (tr *Tracer) startWorker() {
	// Worker already running
	if tr.closeChan != nil {
		return
	}
	tr.closeChan = make(chan struct{})

	readyChan := make(chan struct{})
	tr.wg.Add(1)
	go func() {
		defer tr.wg.Done()
		close(readyChan)
		for {
			select {
			case req := <-tr.frameReqChan:
				startTime := time.Now()
				if err := tr.commitUpdates(); err != nil {
					req.ErrChan <- err
					continue
				}
				tr.stats.UpdateTime = time.Since(startTime)

				// Render frame and reply with our completion status
				startTime = time.Now()
				if err := tr.renderFrame(&req); err != nil {
					req.ErrChan <- err
					continue
				}

				// Update stats
				tr.stats.BlockH = req.BlockH
				tr.stats.RenderTime = time.Since(startTime)

				req.DoneChan <- req.BlockH
			case <-tr.closeChan:
				// Ack close
				tr.closeChan <- struct{}{}
				return
			}
		}
	}()

	// Wait for go-routine to start
	<-readyChan
}

// Render one frame by executing the pipeline stages in order.
func (tr *Tracer) renderFrame(req *tracer.FrameRequest) error {
	if tr.resources == nil {
		return ErrNotInitialized
	}
	if tr.resources.sc == nil {
		return ErrNoSceneData
	}

	tr.resources.resetKernelTimes()

	bs := tr.resources.buffers
	if bs.blockY != req.BlockY || bs.blockH != req.BlockH {
		bs.SetBlock(req.BlockY, req.BlockH)
		tr.needsReset = true
	}

	stages := make([]PipelineStage, 0, 3+len(tr.pipeline.PostProcess))
	if tr.needsReset && tr.pipeline.Reset != nil {
		stages = append(stages, tr.pipeline.Reset)
	}
	tr.needsReset = false
	stages = append(stages, tr.pipeline.PrimaryRayGenerator, tr.pipeline.Integrator)
	stages = append(stages, tr.pipeline.PostProcess...)

	for _, stage := range stages {
		if stage == nil {
			continue
		}
		if _, err := stage(tr, req); err != nil {
			return err
		}
	}

	var kt kernelType
	for kt = 0; kt < numKernels; kt++ {
		if d := tr.resources.kernelTimes[kt]; d > 0 {
			tr.logger.Debugf("%s: %s", kt, d)
		}
	}

	return nil
}
