package main

import (
	"os"

	"github.com/lumen-rt/lumen/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "lumen"
	app.Usage = "render scenes using wavefront path tracing"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "list available compute devices",
			Action: cmd.Info,
		},
		{
			Name:   "render",
			Usage:  "render scene",
			Action: nil,
			Subcommands: []cli.Command{
				{
					Name:        "frame",
					Usage:       "render single frame",
					Description: `Render a single frame and write it out as a png image.`,
					Flags: append(frameFlags(), cli.StringFlag{
						Name:  "out, o",
						Value: "frame.png",
						Usage: "image filename for the rendered frame",
					}),
					Action: cmd.RenderFrame,
				},
				{
					Name:        "interactive",
					Usage:       "render interactive view of the scene",
					Description: `Open a window and progressively refine the render while moving the camera.`,
					Flags:       frameFlags(),
					Action:      cmd.RenderInteractive,
				},
			},
		},
	}

	app.Run(os.Args)
}

func frameFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "width",
			Value: 512,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: 512,
			Usage: "frame height",
		},
		cli.IntFlag{
			Name:  "spp",
			Value: 16,
			Usage: "samples per pixel",
		},
		cli.IntFlag{
			Name:  "num-bounces",
			Value: 5,
			Usage: "bounce budget per path",
		},
		cli.IntFlag{
			Name:  "supersamples",
			Value: 2,
			Usage: "ray slots per pixel",
		},
		cli.Float64Flag{
			Name:  "exposure",
			Value: 1.0,
			Usage: "camera exposure for tone-mapping",
		},
		cli.Float64Flag{
			Name:  "aperture",
			Value: 0.02,
			Usage: "lens radius for depth of field",
		},
		cli.Float64Flag{
			Name:  "focus-distance",
			Value: 4.0,
			Usage: "distance from the camera to the focus plane",
		},
		cli.IntFlag{
			Name:  "tracers",
			Value: 1,
			Usage: "number of tracers to split the frame across",
		},
	}
}
