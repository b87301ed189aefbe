package cmd

import (
	"bytes"
	"fmt"
	"runtime"

	"github.com/lumen-rt/lumen/tracer/compute/device"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// List available compute devices.
func Info(ctx *cli.Context) error {
	setupLogging(ctx)

	dev := device.New(0)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Device", "Workers", "Speed estimate"})
	table.Append([]string{
		dev.Name,
		fmt.Sprintf("%d", dev.Workers()),
		fmt.Sprintf("%d", dev.SpeedEstimate()),
	})
	table.Render()

	logger.Noticef("system provides %d logical CPU(s)\n%s", runtime.NumCPU(), buf.String())
	return nil
}
