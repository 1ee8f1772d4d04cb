package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rebelcode/iris/internal/store"
)

func main() {
	limit := flag.Int("limit", 10, "Number of recent runs to show")
	flag.Parse()

	ctx := context.Background()
	pool, err := store.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	runs, err := store.NewPostgresStore(pool).RecentImportRuns(ctx, *limit)
	if err != nil {
		log.Fatal(err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Source", "Items", "Errors", "Duration", "Started At"})

	for _, run := range runs {
		duration := "Running..."
		if run.FinishedAt != nil {
			duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
		}
		t.AppendRow(table.Row{run.SourceKey, run.ItemCount, run.ErrorCount, duration, run.StartedAt.Format("15:04:05")})
	}
	t.Render()
}
