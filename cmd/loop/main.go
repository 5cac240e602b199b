package main

import (
	"context"
	"log"

	"github.com/loopjournal/loop/internal/cli"
	"github.com/loopjournal/loop/internal/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(context.Background())
}
