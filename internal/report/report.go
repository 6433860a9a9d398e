// Package report renders an end-of-run HTML report from the
// per-collection statistics.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/reddit-media-downloader/internal/pipeline"
)

// Write renders download charts for the run to a standalone HTML file.
func Write(path string, results []pipeline.CollectionResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	// 1. Downloads per subreddit
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Downloads by Subreddit"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var names []string
	var images, videos, merged []opts.BarData
	for _, r := range results {
		names = append(names, r.Name)
		images = append(images, opts.BarData{Value: r.Stats.Images})
		videos = append(videos, opts.BarData{Value: r.Stats.Videos})
		merged = append(merged, opts.BarData{Value: r.Stats.Merged})
	}
	bar.SetXAxis(names).
		AddSeries("Images", images).
		AddSeries("Videos", videos).
		AddSeries("Audio merged", merged)

	// 2. Run outcome mix
	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Run Outcomes"}))

	var totals pipeline.Snapshot
	for _, r := range results {
		totals.Images += r.Stats.Images
		totals.Videos += r.Stats.Videos
		totals.Skipped += r.Stats.Skipped
		totals.Errors += r.Stats.Errors
	}
	pie.AddSeries("Outcomes", []opts.PieData{
		{Name: "Images", Value: totals.Images},
		{Name: "Videos", Value: totals.Videos},
		{Name: "Skipped", Value: totals.Skipped},
		{Name: "Errors", Value: totals.Errors},
	})

	if err := bar.Render(f); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	if err := pie.Render(f); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}
