package compute

import "errors"

var (
	ErrNoSceneData     = errors.New("compute tracer: no scene data uploaded")
	ErrAlreadyInit     = errors.New("compute tracer: tracer already initialized")
	ErrNotInitialized  = errors.New("compute tracer: tracer not initialized")
	ErrInvalidDims     = errors.New("compute tracer: invalid frame dimensions")
	ErrBufferSizeWrong = errors.New("compute tracer: shared buffer size does not match frame dimensions")
)
