package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"datagen-service/config"
	"datagen-service/internal/catalog"
	"datagen-service/internal/dataset"
	"datagen-service/internal/export"
)

func main() {
	cfg := config.Load()

	var (
		seed     int64
		count    int
		fraction float64
		start    string
		end      string
		output   string
		sample   int
	)
	flag.Int64Var(&seed, "seed", cfg.Generator.Seed, "generation seed")
	flag.IntVar(&count, "count", cfg.Generator.RecordCount, "number of records to generate")
	flag.Float64Var(&fraction, "error-fraction", cfg.Generator.ErrorFraction, "fraction of rows to corrupt [0,1]")
	flag.StringVar(&start, "window-start", cfg.Generator.WindowStart, "analysis window start (YYYY-MM-DD)")
	flag.StringVar(&end, "window-end", cfg.Generator.WindowEnd, "analysis window end (YYYY-MM-DD)")
	flag.StringVar(&output, "output", cfg.Generator.OutputPath, "output CSV file")
	flag.IntVar(&sample, "sample", cfg.Generator.SampleSize, "rows in the quick-test sample file (0 disables)")
	flag.Parse()

	if err := run(seed, count, fraction, start, end, output, sample); err != nil {
		log.Fatalf("generation failed: %v", err)
	}
}

func run(seed int64, count int, fraction float64, start, end, output string, sample int) error {
	windowStart, err := time.Parse("2006-01-02", start)
	if err != nil {
		return fmt.Errorf("invalid -window-start %q: %w", start, err)
	}
	windowEnd, err := time.Parse("2006-01-02", end)
	if err != nil {
		return fmt.Errorf("invalid -window-end %q: %w", end, err)
	}

	reg, err := catalog.Default()
	if err != nil {
		return err
	}

	table, err := dataset.NewAssembler(reg).Generate(dataset.Config{
		Seed:          seed,
		RecordCount:   count,
		ErrorFraction: fraction,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
	})
	if err != nil {
		return err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := export.WriteFile(output, table.Rows); err != nil {
		return err
	}
	log.Printf("generated %d rows (%d corrupted) to %s", len(table.Rows), len(table.Audit), output)

	if sample > 0 && sample < len(table.Rows) {
		samplePath := sampleFileName(output, sample)
		if err := export.WriteFile(samplePath, export.Sample(table.Rows, sample, seed)); err != nil {
			return err
		}
		log.Printf("wrote %d-row sample to %s", sample, samplePath)
	}

	return nil
}

func sampleFileName(output string, n int) string {
	ext := filepath.Ext(output)
	base := output[:len(output)-len(ext)]
	return fmt.Sprintf("%s_sample_%d%s", base, n, ext)
}
