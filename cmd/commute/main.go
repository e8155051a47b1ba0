// Command commute manages the trip database: replaying sensor traces,
// listing and inspecting stored trips, CSV and backup import/export, schema
// migrations and the departure/relevance analytics.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/commute.report/internal/config"
	"github.com/banshee-data/commute.report/internal/store"
	"github.com/banshee-data/commute.report/internal/version"
)

var (
	dbPath     = flag.String("db", "commute.db", "path to the trip database")
	configPath = flag.String("config", "", "optional tuning config JSON")
)

func main() {
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printHelp()
		os.Exit(1)
	}
	command, rest := args[0], args[1:]

	switch command {
	case "help":
		printHelp()
		return
	case "version":
		fmt.Printf("commute %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	cfg := config.Empty()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	s, err := store.Open(*dbPath, store.Options{
		HistoryCap: cfg.GetTripHistoryCap(),
		TypeCap:    cfg.GetTripTypeCap(),
	})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	switch command {
	case "replay":
		runReplay(s, cfg, rest)
	case "list":
		runList(s)
	case "show":
		runShow(s, rest)
	case "export-csv":
		runExportCSV(s, rest)
	case "import-csv":
		runImportCSV(s, rest)
	case "backup":
		runBackup(s, rest)
	case "restore":
		runRestore(s, rest)
	case "migrate":
		runMigrate(s, rest)
	case "best-departure":
		runBestDeparture(s, rest)
	case "rank":
		runRank(s, rest)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printHelp()
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Trip database commands")
	fmt.Println()
	fmt.Println("Usage: commute [-db path] [-config path] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  replay <trace.csv>        Run a sensor trace through a session")
	fmt.Println("  list                      List stored trips")
	fmt.Println("  show [-units u] <trip-id> Show one trip in detail")
	fmt.Println("  export-csv <out.csv>      Export the trip summary table")
	fmt.Println("  import-csv <in.csv>       Import trips from a summary export")
	fmt.Println("  backup <out.json[.gz]>    Write a full backup")
	fmt.Println("  restore <in.json[.gz]>    Restore from a backup")
	fmt.Println("  migrate <up|down|status>  Manage the database schema")
	fmt.Println("  best-departure <type-id>  Recommend a departure window")
	fmt.Println("  rank <lat> <lng>          Rank trip types by location relevance")
	fmt.Println("  version                   Print build information")
	fmt.Println("  help                      Show this help message")
}
