package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/pdfmentor-backend/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	if err := application.Start(); err != nil {
		application.Log.Error("failed to start background work", "error", err)
		return
	}
	if err := application.Run(ctx); err != nil {
		application.Log.Error("server exited", "error", err)
	}
}
