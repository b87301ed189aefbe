package tracer

import "time"

// The type of a queued tracer state update.
type UpdateType uint8

const (
	UpdateScene UpdateType = iota
	UpdateCamera
)

// A unit of work that is processed by a tracer.
type FrameRequest struct {
	// Block start row and height.
	BlockY uint32
	BlockH uint32

	// The number of full sample passes traced for each pixel.
	SamplesPerPixel uint32

	// The exposure value controls HDR -> LDR mapping.
	Exposure float32

	// A random seed value for the tracer's random number streams.
	Seed uint32

	// Number of sequential rendered frames from current camera position.
	FrameCount uint32

	// A channel to signal on block completion with the number of completed rows.
	DoneChan chan<- uint32

	// A channel to signal if an error occurs.
	ErrChan chan<- error
}

// Tracer statistics.
type Stats struct {
	// The rendered block height.
	BlockH uint32

	// The time for rendering this block.
	RenderTime time.Duration

	// The time for applying queued state updates.
	UpdateTime time.Duration
}

type Tracer interface {
	// Get tracer id.
	Id() string

	// Get the tracer's computation speed estimate.
	Speed() uint32

	// Initialize the tracer. The accumulation and frame buffers are shared
	// with the host; the tracer only touches the rows assigned to it by
	// each frame request.
	Init(frameW, frameH uint32, accumBuffer []float32, frameBuffer []uint8) error

	// Shutdown and cleanup tracer.
	Close()

	// Enqueue a frame request.
	Enqueue(FrameRequest)

	// Queue a state update to be applied before the next frame.
	Update(UpdateType, interface{})

	// Retrieve last frame statistics.
	Stats() *Stats
}
