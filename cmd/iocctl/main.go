package main

import (
	"log/slog"
	"os"
	"sort"

	"gopkg.in/urfave/cli.v2"
)

const (
	Version = "0.1.0"
)

const (
	argDir        = "dir"
	argFile       = "file"
	argConfigFile = "config-file"
	argEnvFile    = "env-file"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("iocctl failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := &cli.App{
		Name:    "iocctl",
		Version: Version,
		Usage:   "Application context tooling",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Generate configuration templates",
				Action: runInit,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argDir,
						Value: ".",
						Usage: "directory the templates are written to",
					},
				},
			},
			{
				Name:   "check",
				Usage:  "Parse a properties document and list its keys",
				Action: runCheck,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argFile,
						Usage: "properties document path (json, yaml or yml)",
					},
				},
			},
			{
				Name:   "config",
				Usage:  "Print the effective application configuration",
				Action: runConfig,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  argConfigFile,
						Usage: "application configuration file path",
					},
					&cli.StringFlag{
						Name:  argEnvFile,
						Value: ".env",
						Usage: "environment file loaded before the configuration",
					},
				},
			},
		},
	}

	for _, cmd := range app.Commands {
		sort.Sort(cli.FlagsByName(cmd.Flags))
	}
	sort.Sort(cli.CommandsByName(app.Commands))
	return app
}
