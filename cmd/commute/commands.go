package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/commute.report/internal/analytics"
	"github.com/banshee-data/commute.report/internal/codec"
	"github.com/banshee-data/commute.report/internal/store"
	"github.com/banshee-data/commute.report/internal/trip"
	"github.com/banshee-data/commute.report/internal/units"
)

func runList(s *store.Store) {
	list, err := s.ListTrips()
	if err != nil {
		log.Fatalf("Failed to list trips: %v", err)
	}
	if list.Corrupt > 0 {
		log.Printf("Skipped %d corrupt trip rows", list.Corrupt)
	}
	if len(list.Records) == 0 {
		fmt.Println("No trips stored")
		return
	}
	for _, r := range list.Records {
		score := trip.Score(r.Metrics)
		fmt.Printf("%s  %s  %-16s  %6s  %5.1f (%s)\n",
			r.ID, r.Start.Format("2006-01-02 15:04"), r.TripTypeID,
			r.Duration.Round(time.Second), score, trip.QualityLabel(score))
	}
}

func runShow(s *store.Store, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	speedUnits := fs.String("units", units.KMPH, "speed units for display ("+strings.Join(units.ValidUnits, ", ")+")")
	fs.Parse(args)
	if fs.NArg() < 1 {
		log.Fatal("Usage: commute show [options] <trip-id>")
	}
	if !units.IsValid(*speedUnits) {
		log.Fatalf("Invalid units %q, valid values: %s", *speedUnits, strings.Join(units.ValidUnits, ", "))
	}

	r, err := s.GetTrip(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load trip: %v", err)
	}
	printRecord(r, *speedUnits)
	if len(r.Events) > 0 {
		suffix := speedSuffix(*speedUnits)
		fmt.Println("  Event log:")
		for _, e := range r.Events {
			fmt.Printf("    %s  %-17s  %.1f %s  intensity %.2f\n",
				e.Time.Format("15:04:05"), e.Type, speedIn(e.SpeedKMH, *speedUnits), suffix, e.Intensity)
		}
	}
}

func runExportCSV(s *store.Store, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: commute export-csv <out.csv>")
	}
	list, err := s.ListTrips()
	if err != nil {
		log.Fatalf("Failed to list trips: %v", err)
	}

	f, err := os.Create(args[0])
	if err != nil {
		log.Fatalf("Failed to create %s: %v", args[0], err)
	}
	defer f.Close()

	if err := codec.WriteSummaryCSV(f, list.Records); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	log.Printf("✓ Exported %d trips to %s", len(list.Records), args[0])
}

func runImportCSV(s *store.Store, args []string) {
	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)
	keepDuplicates := fs.Bool("keep-duplicates", false, "import rows that match an existing trip")
	fs.Parse(args)
	if fs.NArg() < 1 {
		log.Fatal("Usage: commute import-csv [options] <in.csv>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open %s: %v", fs.Arg(0), err)
	}
	defer f.Close()

	result, err := codec.ReadSummaryCSV(f)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	existing, err := s.ListTrips()
	if err != nil {
		log.Fatalf("Failed to list trips: %v", err)
	}

	imported, duplicates := 0, 0
	for _, rec := range result.Records {
		if !*keepDuplicates && codec.IsDuplicate(rec, existing.Records) {
			duplicates++
			continue
		}
		if err := s.InsertTrip(rec); err != nil {
			log.Fatalf("Failed to store imported trip: %v", err)
		}
		existing.Records = append(existing.Records, rec)
		imported++
	}
	log.Printf("✓ Imported %d trips (%d duplicates, %d unparseable rows skipped)",
		imported, duplicates, result.Skipped)
}

func runBackup(s *store.Store, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: commute backup <out.json[.gz]>")
	}
	out := args[0]

	list, err := s.ListTrips()
	if err != nil {
		log.Fatalf("Failed to list trips: %v", err)
	}
	types, err := s.ListTripTypes()
	if err != nil {
		log.Fatalf("Failed to list trip types: %v", err)
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", out, err)
	}
	defer f.Close()

	backup := codec.Backup{
		Records:   list.Records,
		Settings:  s.LoadSettings(),
		TripTypes: types,
	}
	if err := codec.EncodeBackup(f, backup, strings.HasSuffix(out, ".gz")); err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
	log.Printf("✓ Backed up %d trips and %d trip types to %s", len(list.Records), len(types), out)
}

func runRestore(s *store.Store, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: commute restore <in.json[.gz]>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		log.Fatalf("Failed to open %s: %v", args[0], err)
	}
	defer f.Close()

	backup, err := codec.DecodeBackup(f)
	if err != nil {
		log.Fatalf("Restore failed: %v", err)
	}

	existing, err := s.ListTrips()
	if err != nil {
		log.Fatalf("Failed to list trips: %v", err)
	}

	restored, duplicates := 0, 0
	for _, rec := range backup.Records {
		if codec.IsDuplicate(rec, existing.Records) {
			duplicates++
			continue
		}
		if err := s.InsertTrip(rec); err != nil {
			log.Fatalf("Failed to store restored trip: %v", err)
		}
		existing.Records = append(existing.Records, rec)
		restored++
	}
	for _, t := range backup.TripTypes {
		if err := s.EnsureTripType(t); err != nil {
			log.Fatalf("Failed to restore trip type %s: %v", t.ID, err)
		}
	}
	if err := s.SaveSettings(backup.Settings); err != nil {
		log.Fatalf("Failed to restore settings: %v", err)
	}
	if backup.Skipped > 0 {
		log.Printf("Skipped %d undecodable records in backup", backup.Skipped)
	}
	log.Printf("✓ Restored %d trips (%d duplicates skipped) from backup v%d exported %s",
		restored, duplicates, backup.Version, backup.ExportedAt.Format(time.RFC3339))
}

func runMigrate(s *store.Store, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: commute migrate <up|down|status|force <N>>")
	}
	switch args[0] {
	case "up":
		if err := s.MigrateUp(); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		log.Println("✓ All migrations applied")
	case "down":
		if err := s.MigrateDown(); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		log.Println("✓ Rolled back one migration")
	case "status":
		version, dirty, err := s.MigrateVersion()
		if err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
		fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)
	case "force":
		if len(args) < 2 {
			log.Fatal("Usage: commute migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version number: %s", args[1])
		}
		if err := s.MigrateForce(version); err != nil {
			log.Fatalf("Force migration failed: %v", err)
		}
		log.Printf("✓ Migration version forced to %d", version)
	default:
		log.Fatalf("Unknown migrate action: %s", args[0])
	}
}

func runBestDeparture(s *store.Store, args []string) {
	if len(args) < 1 {
		log.Fatal("Usage: commute best-departure <type-id>")
	}
	list, err := s.ListTripsByType(args[0])
	if err != nil {
		log.Fatalf("Failed to list trips: %v", err)
	}

	rec, err := analytics.BestDeparture(list.Records)
	if err != nil {
		log.Fatalf("No recommendation: %v", err)
	}

	fmt.Printf("Best departure window: %s (score %.1f min", fmtBucket(rec.Best), rec.Best.Score)
	if rec.Best.LowConfidence {
		fmt.Print(", based on a single trip")
	}
	fmt.Println(")")
	fmt.Println()
	fmt.Println("All observed windows:")
	for _, b := range rec.Buckets {
		marker := " "
		if b.Bucket == rec.Best.Bucket {
			marker = "*"
		}
		fmt.Printf("%s %s  %2d trips  avg %6s  traffic %6s  score %6.1f\n",
			marker, fmtBucket(b), b.TripCount,
			b.AvgDuration.Round(time.Second), b.AvgHeavyTraffic.Round(time.Second), b.Score)
	}
}

func fmtBucket(b analytics.BucketStats) string {
	start := b.StartOfDay()
	end := start + analytics.BucketMinutes*time.Minute
	return fmt.Sprintf("%02d:%02d-%02d:%02d",
		int(start.Hours()), int(start.Minutes())%60,
		int(end.Hours()), int(end.Minutes())%60)
}

func runRank(s *store.Store, args []string) {
	if len(args) < 2 {
		log.Fatal("Usage: commute rank <latitude> <longitude>")
	}
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		log.Fatalf("Invalid latitude: %s", args[0])
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		log.Fatalf("Invalid longitude: %s", args[1])
	}

	types, err := s.ListTripTypes()
	if err != nil {
		log.Fatalf("Failed to list trip types: %v", err)
	}
	list, err := s.ListTrips()
	if err != nil {
		log.Fatalf("Failed to list trips: %v", err)
	}

	ranked := analytics.RankTypes(types, list.Records, lat, lng, time.Now())
	if len(ranked) == 0 {
		fmt.Println("No trip types defined")
		return
	}
	for i, rt := range ranked {
		fmt.Printf("%2d. %-20s  score %.3f  (%d nearby starts)\n",
			i+1, rt.Type.Name, rt.Score, rt.SampleCount)
	}
}
