package compute

import (
	"testing"
	"time"

	"github.com/lumen-rt/lumen/scene"
	"github.com/lumen-rt/lumen/tracer"
	"github.com/lumen-rt/lumen/tracer/compute/device"
)

func TestTracerInitValidation(t *testing.T) {
	tr := NewTracer("test-0", device.New(2), DefaultPipeline(NoDebug, 3), 1)
	defer tr.Close()

	if err := tr.Init(0, 16, make([]float32, 0), make([]uint8, 0)); err != ErrInvalidDims {
		t.Fatalf("expected ErrInvalidDims; got %v", err)
	}
	if err := tr.Init(16, 16, make([]float32, 1), make([]uint8, 1)); err != ErrBufferSizeWrong {
		t.Fatalf("expected ErrBufferSizeWrong; got %v", err)
	}

	if err := tr.Init(16, 16, make([]float32, 16*16*4), make([]uint8, 16*16*4)); err != nil {
		t.Fatalf("expected init to succeed; got %v", err)
	}
	if err := tr.Init(16, 16, make([]float32, 16*16*4), make([]uint8, 16*16*4)); err != ErrAlreadyInit {
		t.Fatalf("expected ErrAlreadyInit; got %v", err)
	}
}

func TestTracerReportsMissingSceneData(t *testing.T) {
	tr := NewTracer("test-0", device.New(2), DefaultPipeline(NoDebug, 3), 1)
	defer tr.Close()

	if err := tr.Init(8, 8, make([]float32, 8*8*4), make([]uint8, 8*8*4)); err != nil {
		t.Fatal(err)
	}

	doneChan := make(chan uint32)
	errChan := make(chan error)
	tr.Enqueue(tracer.FrameRequest{
		BlockY:   0,
		BlockH:   8,
		DoneChan: doneChan,
		ErrChan:  errChan,
	})

	select {
	case err := <-errChan:
		if err != ErrNoSceneData {
			t.Fatalf("expected ErrNoSceneData; got %v", err)
		}
	case <-doneChan:
		t.Fatal("expected frame without scene data to fail")
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for frame response")
	}
}

func TestTracerRenderFrame(t *testing.T) {
	var frameW, frameH uint32 = 16, 16

	sc := scene.Demo()
	sc.Camera.SetupProjection(float32(frameW) / float32(frameH))

	accumBuffer := make([]float32, int(frameW)*int(frameH)*4)
	frameBuffer := make([]uint8, int(frameW)*int(frameH)*4)

	tr := NewTracer("test-0", device.New(2), DefaultPipeline(NoDebug, 3), 2)
	defer tr.Close()

	if err := tr.Init(frameW, frameH, accumBuffer, frameBuffer); err != nil {
		t.Fatal(err)
	}

	tr.Update(tracer.UpdateScene, sc)
	tr.Update(tracer.UpdateCamera, sc.Camera)

	doneChan := make(chan uint32)
	errChan := make(chan error)
	tr.Enqueue(tracer.FrameRequest{
		BlockY:          0,
		BlockH:          frameH,
		SamplesPerPixel: 2,
		Exposure:        1.0,
		Seed:            42,
		DoneChan:        doneChan,
		ErrChan:         errChan,
	})

	select {
	case err := <-errChan:
		t.Fatal(err)
	case rows := <-doneChan:
		if rows != frameH {
			t.Fatalf("expected completion of %d rows; got %d", frameH, rows)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for frame completion")
	}

	lit := false
	for idx := 0; idx < len(frameBuffer); idx += 4 {
		if frameBuffer[idx+3] != 255 {
			t.Fatalf("expected opaque framebuffer pixel %d; got alpha %d", idx/4, frameBuffer[idx+3])
		}
		if frameBuffer[idx] != 0 || frameBuffer[idx+1] != 0 || frameBuffer[idx+2] != 0 {
			lit = true
		}
	}
	if !lit {
		t.Fatal("expected a non-black framebuffer")
	}

	stats := tr.Stats()
	if stats.BlockH != frameH {
		t.Fatalf("expected stats block height %d; got %d", frameH, stats.BlockH)
	}
	if stats.RenderTime == 0 {
		t.Fatal("expected a non-zero render time")
	}
}
