// Command server runs the development backend: a simulated identity
// provider plus the token and user endpoints the session client calls.
package main

import (
	"context"
	"log"

	"github.com/blogsphere/authsession/internal/server"
	"github.com/blogsphere/authsession/internal/server/config"
)

func main() {
	app, err := server.NewApp(config.LoadConfig())
	if err != nil {
		log.Fatalf("development backend: %v", err)
	}

	// Run returns once SIGINT/SIGTERM is handled and the listener is drained.
	app.Run(context.Background())
}
