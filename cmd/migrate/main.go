package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/keatontom/salesforce-opportunity-analysis/adapters/postgres"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/migration"
	"github.com/keatontom/salesforce-opportunity-analysis/ports"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate <database_url> [report_json_dir]")
	}

	databaseURL := os.Args[1]
	driver := driverFor(databaseURL)
	ctx := context.Background()

	// Connect applies the schema.
	db, err := postgres.Connect(ctx, driver, databaseURL)
	if err != nil {
		log.Fatalf("Failed to prepare database: %v", err)
	}
	defer db.Close()
	log.Printf("Report archive schema %s is up to date (%s)", migration.NewRunner().Version(), driver)

	if len(os.Args) < 3 {
		return
	}

	migrated, skipped, err := importReports(ctx, postgres.NewReportRepository(db), os.Args[2])
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import complete: %d migrated, %d skipped", migrated, skipped)
}

// driverFor picks postgres for postgres URLs and sqlite for everything else.
func driverFor(url string) string {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") || strings.Contains(url, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// importReports archives every report JSON file under dir, as written by
// "oppanalysis analyze --format json". Files without a report ID are skipped.
func importReports(ctx context.Context, store ports.ReportStore, dir string) (migrated, skipped int, err error) {
	files, err := findReportFiles(dir)
	if err != nil {
		return 0, 0, err
	}
	log.Printf("Found %d report files to migrate", len(files))

	for _, file := range files {
		report, err := loadReportFromFile(file)
		if err != nil {
			log.Printf("Failed to load report from %s: %v", file, err)
			skipped++
			continue
		}
		if report.ID == "" {
			log.Printf("Skipping %s: no report id", filepath.Base(file))
			skipped++
			continue
		}
		if err := store.Save(ctx, report); err != nil {
			log.Printf("Failed to save report %s: %v", report.ID, err)
			skipped++
			continue
		}
		migrated++
		log.Printf("Migrated report %s from %s", report.ID, filepath.Base(file))
	}
	return migrated, skipped, nil
}

func findReportFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

func loadReportFromFile(filePath string) (*analysis.Report, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var report analysis.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("not a report: %w", err)
	}

	return &report, nil
}
