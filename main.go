package main

import (
	"fmt"
	"os"

	"github.com/Ambroisie/beevee/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "beevee"
	app.Usage = "build and query BVH scene indices for ray tracing"
	app.Version = "0.0.1"
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
			Name:  "compile",
			Usage: "compile text scene representation into a binary compressed format",
			Description: `
Parse a scene definition from a wavefront obj file and build a BVH tree to
optimize ray intersection tests.

The compiled scene data is then written to a zip archive which can be supplied
as an argument to the other commands.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Action:    cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "print geometry and index statistics for a compiled scene",
			ArgsUsage: "scene_file.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "trace",
			Usage: "trace rays through a scene and report what they hit",
			Description: `
Trace a single ray through the scene and report the closest hit, or fire a
randomized ray batch with --rays to benchmark the scene index.`,
			ArgsUsage: "scene_file.{obj,zip}",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "origin",
					Value: "0,0,0",
					Usage: "ray origin as x,y,z",
				},
				cli.StringFlag{
					Name:  "direction",
					Value: "0,0,1",
					Usage: "ray direction as x,y,z",
				},
				cli.IntFlag{
					Name:  "rays",
					Usage: "trace a randomized ray batch of this size instead of a single ray",
				},
				cli.Int64Flag{
					Name:  "seed",
					Value: 1,
					Usage: "seed for the randomized ray batch",
				},
			},
			Action: cmd.TraceScene,
		},
		{
			Name:      "heatmap",
			Usage:     "render an orthographic depth map of the scene to a bmp image",
			ArgsUsage: "scene_file.{obj,zip}",
			Flags: []cli.Flag{
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
				cli.StringFlag{
					Name:  "out, o",
					Value: "heatmap.bmp",
					Usage: "image filename for the rendered depth map",
				},
			},
			Action: cmd.RenderHeatmap,
		},
		{
			Name:      "serve",
			Usage:     "serve scene statistics, index nodes and ray queries over http",
			ArgsUsage: "scene_file.{obj,zip}",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen, l",
					Value: "127.0.0.1:8080",
					Usage: "address to listen on",
				},
			},
			Action: cmd.ServeScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
