package main

import (
	"context"
	"log"

	"github.com/sundayezeilo/repostore/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	// Initialize application
	application, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer application.Shutdown()

	// Start server (blocks until SIGINT/SIGTERM)
	return application.Start(ctx)
}
