// Command optimizer resolves and optimizes listings outside the HTTP API.
//
//	optimizer ASIN...           process the given ASINs, one JSON line each on stdout
//	optimizer -enqueue ASIN...  push ASINs onto the Redis optimize queue
//	optimizer -worker           drain the optimize queue
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"listingopt/db"
	"listingopt/internal/app"
	"listingopt/internal/config"
	"listingopt/internal/logging"
	"listingopt/internal/model"
	"listingopt/internal/service"
)

type output struct {
	ASIN      string           `json:"asin"`
	Title     string           `json:"title,omitempty"`
	Optimized *optimizedOutput `json:"optimized,omitempty"`
	Error     string           `json:"error,omitempty"`
}

type optimizedOutput struct {
	OptTitle       string   `json:"opt_title"`
	OptBullets     []string `json:"opt_bullets"`
	OptDescription string   `json:"opt_description"`
	Keywords       string   `json:"keywords"`
}

type options struct {
	timeout     time.Duration
	resolveOnly bool
}

func main() {

	godotenv.Load()

	var opts options
	flag.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "time limit per ASIN")
	flag.BoolVar(&opts.resolveOnly, "resolve-only", false, "scrape and store without optimizing")
	enqueue := flag.Bool("enqueue", false, "push the ASIN arguments onto the optimize queue")
	worker := flag.Bool("worker", false, "process ASINs from the optimize queue until it is empty")
	wait := flag.Duration("wait", 5*time.Second, "worker: how long to wait for new queue items before exiting")
	maxAttempts := flag.Int("max-attempts", 3, "worker: failures before an ASIN is dead-lettered")
	flag.Parse()

	asins := normalize(flag.Args())
	if !*worker && len(asins) == 0 {
		fmt.Fprintln(os.Stderr, "usage: optimizer [-resolve-only] [-timeout d] ASIN... | -enqueue ASIN... | -worker")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	// stdout carries results
	slog.SetDefault(logging.NewStderr(cfg.Log.Level, cfg.Log.Format))

	ctx := context.Background()

	if *enqueue || *worker {
		if cfg.Store.RedisURL == "" {
			log.Fatalf("error: REDIS_URL is required for the optimize queue")
		}
		rdb, err := db.ConnectRedis(ctx, cfg.Store.RedisURL)
		if err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		defer rdb.Close()

		queue := db.NewOptimizeQueue(rdb, cfg.Store.RedisKeyPrefix)

		if *enqueue {
			if err := queue.Push(ctx, asins...); err != nil {
				log.Fatalf("error enqueueing: %v", err)
			}
			slog.Info("asins enqueued", "count", len(asins))
			return
		}

		svc, closeStore, err := app.NewListingService(ctx, cfg)
		if err != nil {
			log.Fatalf("error building listing service: %v", err)
		}
		defer closeStore()

		runWorker(ctx, svc, queue, opts, *wait, *maxAttempts)
		return
	}

	svc, closeStore, err := app.NewListingService(ctx, cfg)
	if err != nil {
		log.Fatalf("error building listing service: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	failed := 0

	for _, asin := range asins {
		out := process(ctx, svc, asin, opts)
		if out.Error != "" {
			failed++
		}

		if err := enc.Encode(out); err != nil {
			slog.Error("error writing result", "asin", asin, "error", err)
		}
	}

	slog.Info("batch finished", "total", len(asins), "failed", failed)
	closeStore()

	if failed > 0 {
		os.Exit(1)
	}
}

func runWorker(ctx context.Context, svc *service.ListingService, queue *db.Queue, opts options, wait time.Duration, maxAttempts int) {
	processed := 0
	for {
		asin, err := queue.Pop(ctx, wait)
		if errors.Is(err, db.ErrQueueEmpty) {
			slog.Info("optimize queue drained", "processed", processed)
			return
		}
		if err != nil {
			slog.Error("error popping from Redis queue", "error", err)
			return
		}

		out := process(ctx, svc, asin, opts)
		processed++

		if out.Error == "" {
			if err := queue.Done(ctx, asin); err != nil {
				slog.Warn("error clearing attempts", "asin", asin, "error", err)
			}
			continue
		}

		dead, err := queue.Retry(ctx, asin, maxAttempts)
		if err != nil {
			slog.Error("error requeueing asin", "asin", asin, "error", err)
			continue
		}
		if dead {
			slog.Warn("asin exceeded max attempts, moved to dead letters", "asin", asin, "max_attempts", maxAttempts)
		}
	}
}

func process(ctx context.Context, svc *service.ListingService, asin string, opts options) output {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	listing, err := svc.ResolveListing(ctx, asin)
	if err != nil {
		slog.Error("error resolving listing", "asin", asin, "error", err)
		return output{ASIN: asin, Error: err.Error()}
	}

	out := output{ASIN: asin, Title: listing.Original.Title}
	if opts.resolveOnly {
		if listing.Optimized != nil {
			out.Optimized = toOutput(listing.Optimized)
		}
		return out
	}

	optimized, err := svc.OptimizeListing(ctx, asin, model.ListingContent{
		Title:       listing.Original.Title,
		Bullets:     listing.Original.Bullets,
		Description: listing.Original.Description,
	})
	if err != nil {
		slog.Error("error optimizing listing", "asin", asin, "error", err)
		out.Error = err.Error()
		return out
	}

	out.Optimized = toOutput(optimized)
	slog.Info("listing optimized", "asin", asin)
	return out
}

func toOutput(o *model.OptimizedListing) *optimizedOutput {
	return &optimizedOutput{
		OptTitle:       o.OptTitle,
		OptBullets:     o.OptBullets,
		OptDescription: o.OptDescription,
		Keywords:       o.Keywords,
	}
}

func normalize(args []string) []string {
	var out []string
	for _, a := range args {
		if a = strings.ToUpper(strings.TrimSpace(a)); a != "" {
			out = append(out, a)
		}
	}
	return out
}
