package main

import (
	"context"
	"log"

	"github.com/geniusbot/core/internal/app/bootstrap"
)

func main() {
	ctx := context.Background()
	runtime, err := bootstrap.NewRuntime(ctx, "configs/default.yaml")
	if err != nil {
		log.Fatalf("bootstrap web runtime: %v", err)
	}
	if err := runtime.RunWeb(ctx); err != nil {
		log.Fatalf("run web: %v", err)
	}
}
