package renderer

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Bounce budget per path.
	NumBounces uint32

	// Ray slots allocated per pixel.
	Supersamples uint32

	// Number of full sample passes traced per frame.
	SamplesPerPixel uint32

	// Exposure for tonemapping.
	Exposure float32

	// Number of tracers the frame is split across. Zero selects one.
	NumTracers uint32
}
