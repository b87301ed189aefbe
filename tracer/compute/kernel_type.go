package compute

import "fmt"

type kernelType uint8

// The list of kernels that implement the tracer.
const (
	// camera kernels
	initCameraRays kernelType = iota
	// wavefront kernels
	rayTrace
	// output kernels
	flattenSamples
	// utils
	clearAccumulator
	// debugging
	debugSampleCounts
	//
	numKernels
)

// Implements Stringer; maps the kernel type to a human readable name used in
// timing logs.
func (kt kernelType) String() string {
	switch kt {
	case initCameraRays:
		return "initCameraRays"
	case rayTrace:
		return "rayTrace"
	case flattenSamples:
		return "flattenSamples"
	case clearAccumulator:
		return "clearAccumulator"
	case debugSampleCounts:
		return "debugSampleCounts"
	default:
		panic(fmt.Sprintf("unsupported kernel type: %d", kt))
	}
}
