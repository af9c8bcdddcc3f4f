package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/keatontom/salesforce-opportunity-analysis/adapters/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "postgres", driverFor("postgres://user@localhost/reports"))
	assert.Equal(t, "postgres", driverFor("host=localhost dbname=reports"))
	assert.Equal(t, "sqlite", driverFor("file:reports.db"))
}

func TestImportReports(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("a.json", `{"id":"a","source":"a.csv","date_range":"all","generated_at":"2024-06-30T09:00:00Z"}`)
	write("no-id.json", `{"source":"b.csv"}`)
	write("broken.json", `{`)
	write("notes.txt", `ignored`)

	store := memory.NewReportStore()
	migrated, skipped, err := importReports(context.Background(), store, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, migrated)
	assert.Equal(t, 2, skipped)

	got, err := store.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "a.csv", got.Source)
}
