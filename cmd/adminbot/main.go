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
		log.Fatalf("bootstrap admin bot runtime: %v", err)
	}
	if err := runtime.RunAdminBot(ctx); err != nil {
		log.Fatalf("run admin bot: %v", err)
	}
}
