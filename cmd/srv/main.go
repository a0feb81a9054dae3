package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	s := &srv{}

	app := &cli.App{
		Name:  "discord-exporter",
		Usage: "Export Discord community activity as metrics, an rss feed, and a photo gallery",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the gateway consumer and the read api",
				Action: s.serve,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
