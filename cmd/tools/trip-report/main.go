// Command trip-report renders a stored trip as an interactive HTML chart and
// a static speed-profile PNG.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/commute.report/internal/store"
	"github.com/banshee-data/commute.report/internal/trip"
)

func main() {
	dbPath := flag.String("db", "commute.db", "path to the trip database")
	outputDir := flag.String("o", ".", "output directory")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: trip-report [options] <trip-id>")
	}
	tripID := flag.Arg(0)

	s, err := store.Open(*dbPath, store.Options{})
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	record, err := s.GetTrip(tripID)
	if err != nil {
		log.Fatalf("Failed to load trip: %v", err)
	}
	if len(record.Path) == 0 {
		log.Fatal("Trip has no recorded path, nothing to plot")
	}

	htmlPath := filepath.Join(*outputDir, "report.html")
	if err := renderHTML(htmlPath, record); err != nil {
		log.Fatalf("Failed to render HTML report: %v", err)
	}
	log.Printf("✓ Wrote %s", htmlPath)

	pngPath := filepath.Join(*outputDir, "speed.png")
	if err := renderPNG(pngPath, record); err != nil {
		log.Fatalf("Failed to render speed plot: %v", err)
	}
	log.Printf("✓ Wrote %s", pngPath)
}

// renderHTML writes an interactive page: the speed profile as a line chart
// with detected events overlaid as a scatter series.
func renderHTML(path string, r trip.Record) error {
	score := trip.Score(r.Metrics)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Trip Report", Width: "1100px", Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Trip %s", r.ID),
			Subtitle: fmt.Sprintf("%s, score %.1f (%s), %.1f km",
				r.Start.Format("Mon Jan 2 15:04"), score,
				trip.QualityLabel(score), r.Metrics.DistanceMeters/1000),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "km/h"}),
	)

	labels := make([]string, 0, len(r.Path))
	speeds := make([]opts.LineData, 0, len(r.Path))
	for _, p := range r.Path {
		labels = append(labels, p.Time.Format("15:04:05"))
		speeds = append(speeds, opts.LineData{Value: p.SpeedKMH})
	}
	line.SetXAxis(labels)
	line.AddSeries("speed", speeds)

	scatter := charts.NewScatter()
	events := make([]opts.ScatterData, 0, len(r.Events))
	for _, e := range r.Events {
		events = append(events, opts.ScatterData{
			Name:       string(e.Type),
			Value:      []interface{}{e.Time.Format("15:04:05"), e.SpeedKMH},
			SymbolSize: 12,
		})
	}
	scatter.AddSeries("events", events)
	line.Overlap(scatter)

	page := components.NewPage()
	page.AddCharts(line)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

// renderPNG writes the static speed profile with the slow-traffic threshold
// ruled across it.
func renderPNG(path string, r trip.Record) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Speed profile, trip %s", r.ID)
	p.X.Label.Text = "minutes"
	p.Y.Label.Text = "km/h"

	pts := make(plotter.XYs, 0, len(r.Path))
	for _, point := range r.Path {
		pts = append(pts, plotter.XY{
			X: point.Time.Sub(r.Start).Minutes(),
			Y: point.SpeedKMH,
		})
	}
	speedLine, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	speedLine.Width = vg.Points(1)
	p.Add(speedLine)
	p.Legend.Add("speed", speedLine)

	// Shade the detected heavy-traffic periods.
	for _, period := range r.TrafficPeriods {
		band := plotter.XYs{
			{X: period.Start.Sub(r.Start).Minutes(), Y: period.AvgSpeedKMH},
			{X: period.End.Sub(r.Start).Minutes(), Y: period.AvgSpeedKMH},
		}
		trafficLine, err := plotter.NewLine(band)
		if err != nil {
			return err
		}
		trafficLine.Width = vg.Points(3)
		trafficLine.Color = color.RGBA{R: 200, A: 255}
		p.Add(trafficLine)
	}

	return p.Save(12*vg.Inch, 5*vg.Inch, path)
}
