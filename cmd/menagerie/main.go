package main

import (
	"context"
	"log"

	"github.com/louisbranch/menagerie/internal/cli"
	"github.com/louisbranch/menagerie/internal/platform/config"
	"github.com/louisbranch/menagerie/internal/platform/otel"
)

func main() {
	ctx := context.Background()

	shutdown, err := otel.Setup(ctx, "menagerie")
	if err != nil {
		log.Printf("otel setup: %v", err)
	} else {
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("otel shutdown: %v", err)
			}
		}()
	}

	if err := cli.Execute(); err != nil {
		config.Exitf("%s", cli.RenderError(err))
	}
}
