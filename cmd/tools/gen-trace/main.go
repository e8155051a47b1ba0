// Command gen-trace generates synthetic sensor traces for testing replay.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/banshee-data/commute.report/internal/trace"
)

func main() {
	output := flag.String("o", "sample-trace.csv", "output path")
	minutes := flag.Int("m", 10, "trace length in minutes")
	seed := flag.Int64("seed", 1, "random seed")
	start := flag.String("start", "", "trip start time (RFC3339, default now)")
	flag.Parse()

	startTime := time.Now().UTC().Truncate(time.Second)
	if *start != "" {
		parsed, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			log.Fatalf("Invalid start time: %v", err)
		}
		startTime = parsed
	}

	rows := trace.Synthesize(trace.GenOptions{
		Start:    startTime,
		Duration: time.Duration(*minutes) * time.Minute,
		Seed:     *seed,
	})

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	defer f.Close()

	w := trace.NewWriter(f)
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			log.Fatalf("Failed to write trace: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to flush trace: %v", err)
	}
	log.Printf("✓ Created: %s (%d rows)", *output, len(rows))
}
