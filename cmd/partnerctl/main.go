package main

import (
	"context"
	"fmt"
	"os"

	"partner-media-backend/internal/client/cli"
	"partner-media-backend/internal/logging"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(os.Getenv("PARTNERCTL_DEBUG") != "")
	app, err := cli.NewApp(cfg, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer app.Close()

	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
