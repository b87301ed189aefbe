package cmd

import (
	"bytes"
	"fmt"

	"github.com/lumen-rt/lumen/renderer"
	"github.com/lumen-rt/lumen/scene"
	"github.com/lumen-rt/lumen/tracer"
	"github.com/lumen-rt/lumen/tracer/compute"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// Render a still frame.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := rendererOptions(ctx)
	sc := demoScene(ctx, opts)

	// Setup tracing pipeline
	pipeline := compute.DefaultPipeline(compute.NoDebug, opts.NumBounces)
	pipeline.PostProcess = append(pipeline.PostProcess, compute.SaveFrameBuffer(ctx.String("out")))

	// Create renderer
	r, err := renderer.NewDefault(sc, tracer.PerfectScheduler(), pipeline, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	if err = r.Render(); err != nil {
		return err
	}

	logger.Noticef("rendered frame to %s", ctx.String("out"))
	displayFrameStats(r.Stats())

	return nil
}

// Render an interactive view of the scene.
func RenderInteractive(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := rendererOptions(ctx)
	sc := demoScene(ctx, opts)

	pipeline := compute.DefaultPipeline(compute.NoDebug, opts.NumBounces)

	r, err := renderer.NewInteractive(sc, tracer.PerfectScheduler(), pipeline, opts)
	if err != nil {
		return err
	}
	defer r.Close()

	return r.Render()
}

// Assemble renderer options from CLI flags.
func rendererOptions(ctx *cli.Context) renderer.Options {
	return renderer.Options{
		FrameW:          uint32(ctx.Int("width")),
		FrameH:          uint32(ctx.Int("height")),
		NumBounces:      uint32(ctx.Int("num-bounces")),
		Supersamples:    uint32(ctx.Int("supersamples")),
		SamplesPerPixel: uint32(ctx.Int("spp")),
		Exposure:        float32(ctx.Float64("exposure")),
		NumTracers:      uint32(ctx.Int("tracers")),
	}
}

// Load the builtin scene and apply camera flags.
func demoScene(ctx *cli.Context, opts renderer.Options) *scene.Scene {
	sc := scene.Demo()
	sc.Camera.Aperture = float32(ctx.Float64("aperture"))
	sc.Camera.FocusDist = float32(ctx.Float64("focus-distance"))
	sc.Camera.SetupProjection(float32(opts.FrameW) / float32(opts.FrameH))
	return sc
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Tracer", "Primary", "Block height", "% of frame", "Render time"})
	for _, stat := range stats.Tracers {
		table.Append([]string{
			stat.Id,
			fmt.Sprintf("%t", stat.IsPrimary),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%s", stat.RenderTime),
		})
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%s", stats.RenderTime)})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
