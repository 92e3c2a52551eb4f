package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "frontship",
		Usage: "Deploy web-framework build output to a CDN-fronted site",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "profile",
				Usage: "AWS credential profile name (e.g., dev, prod)",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region override",
			},
			&cli.StringFlag{
				Name:  "stack",
				Usage: "Infrastructure stack name (overrides config)",
			},
			&cli.StringFlag{
				Name:  "project-dir",
				Usage: "Project directory (defaults to the working directory)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "add-functions",
				Usage:  "Register the server compute unit with the host template",
				Action: runAddFunctions,
			},
			{
				Name:   "build",
				Usage:  "Build the site and package the server bundle",
				Action: runBuild,
			},
			{
				Name:   "synth",
				Usage:  "Synthesize the CDN topology and attach it to the template",
				Action: runSynth,
			},
			{
				Name:  "upload",
				Usage: "Upload build output assets to the site bucket",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pre",
						Usage: "Pre-deploy semantics: skip silently when the bucket does not exist yet",
					},
				},
				Action: runUpload,
			},
			{
				Name:   "invalidate",
				Usage:  "Invalidate all cached paths on the distribution",
				Action: runInvalidate,
			},
			{
				Name:  "teardown",
				Usage: "Empty the site bucket so the stack can be removed",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Skip the confirmation prompt",
					},
				},
				Action: runTeardown,
			},
			{
				Name:   "status",
				Usage:  "Show credentials and deployed site outputs",
				Action: runStatus,
			},
		},
		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
