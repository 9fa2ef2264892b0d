package main

import (
	"context"
	"log"

	"github.com/blogsphere/authsession/internal/client/cli"
	"github.com/blogsphere/authsession/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
