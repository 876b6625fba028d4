// seed_batches partitions the authoritative video corpus into dispatchable
// batches. It walks the videos table in physical order, slices it into
// fixed-size chunks and inserts one batches row per chunk, keyed by a
// zero-padded sequence number. Existing ids are skipped, so re-running
// against an unchanged corpus is a no-op.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/VADemon/archive/internal/models"
	"github.com/VADemon/archive/internal/repository"
)

const flushEvery = 100

func main() {
	var (
		batchSize int
		dryRun    bool
	)
	flag.IntVar(&batchSize, "batch-size", models.VideosPerBatch, "videos per batch")
	flag.BoolVar(&dryRun, "dry-run", false, "report the batch layout without writing")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if batchSize <= 0 {
		log.Fatalf("batch-size must be positive, got %d", batchSize)
	}

	repo, err := repository.NewRepository(dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	started := time.Now()

	log.Printf("seeding batches of %d videos dry_run=%v", batchSize, dryRun)

	var (
		pending []models.Batch
		seq     int
		videos  int
	)
	afterCtid := "(0,0)"

	flush := func() {
		if len(pending) == 0 {
			return
		}
		if err := repo.InsertBatches(ctx, pending); err != nil {
			log.Fatalf("insert %s..%s: %v", pending[0].ID, pending[len(pending)-1].ID, err)
		}
		log.Printf("wrote %s..%s (%d batches, %d videos total, elapsed=%s)",
			pending[0].ID, pending[len(pending)-1].ID, len(pending), videos,
			time.Since(started).Truncate(time.Second))
		pending = pending[:0]
	}

	for {
		page, err := repo.VideoPage(ctx, afterCtid, batchSize)
		if err != nil {
			log.Fatalf("page videos after %s: %v", afterCtid, err)
		}
		if len(page) == 0 {
			break
		}

		seq++
		ids := make([]string, len(page))
		for i, v := range page {
			ids[i] = v.ID
		}
		batch := models.Batch{
			ID:        fmt.Sprintf("b%08d", seq),
			StartCtid: page[0].Ctid,
			EndCtid:   page[len(page)-1].Ctid,
			Videos:    ids,
		}

		videos += len(page)
		afterCtid = batch.EndCtid

		if dryRun {
			log.Printf("batch %s: %d videos, ctid %s..%s (dry)", batch.ID, len(ids), batch.StartCtid, batch.EndCtid)
			continue
		}

		pending = append(pending, batch)
		if len(pending) >= flushEvery {
			flush()
		}
	}
	flush()

	log.Printf("done: %d batches covering %d videos, elapsed=%s", seq, videos, time.Since(started).Truncate(time.Second))
}
