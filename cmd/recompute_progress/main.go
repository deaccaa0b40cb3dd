package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/pdfmentor-backend/internal/app"
	"github.com/yungbote/pdfmentor-backend/internal/platform/dbctx"
)

// Rewrites stored progress percentages after PROGRESS_POLICY changes.
func main() {
	var dryRun bool
	flag.BoolVar(&dryRun, "dry-run", false, "report rows that would change without writing")
	flag.Parse()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	policy := application.Services.Progress.Policy()
	changed, err := application.Services.Progress.RecomputeAll(dbctx.Context{Ctx: ctx}, dryRun)
	if err != nil {
		fmt.Printf("recompute failed after %d rows: %v\n", changed, err)
		os.Exit(1)
	}
	if dryRun {
		fmt.Printf("[dry-run] policy=%s; %d rows would change\n", policy, changed)
		return
	}
	fmt.Printf("done; policy=%s changed=%d\n", policy, changed)
}
