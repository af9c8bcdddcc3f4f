package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/keatontom/salesforce-opportunity-analysis/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipelineCSV = `Account Name,Opportunity Name,Stage,Close Date,Created Date,Type,Total ACV,Primary Campaign Source,Closed Lost Reason,Law Firm Practice Area,NumofLawyers
Acme,Renewal,Won,2024-03-01,2024-01-10,New Business,12000,Spring Webinar,,IP;Real Estate,50
Baker,Expansion,Lost,2024-04-01,2024-01-15,Upsell,8000,Email Newsletter,Price,Corporate,51
Cole,Pilot,Proposal,,2024-02-01,New Business,9500,Spring Webinar,,IP,120
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.csv")
	require.NoError(t, os.WriteFile(path, []byte(pipelineCSV), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--as-of", "2024-06-30T09:00:00Z"))
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeJSON(t *testing.T) {
	out, err := run(t, "analyze", writeFixture(t))
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "pipeline.csv", report["source"])
	assert.Equal(t, "2024-06-30T09:00:00Z", report["generated_at"])
	assert.Contains(t, report, "Score Open Opportunities")
}

func TestAnalyzeIsReproducible(t *testing.T) {
	path := writeFixture(t)
	first, err := run(t, "analyze", path)
	require.NoError(t, err)
	second, err := run(t, "analyze", path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAnalyzeMarkdownToFile(t *testing.T) {
	target := filepath.Join(t.TempDir(), "report.md")
	_, err := run(t, "analyze", writeFixture(t), "--format", "markdown", "-o", target)
	require.NoError(t, err)

	body, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(body), "## Score Open Opportunities")
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "analyze", writeFixture(t), "--format", "pdf")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestScore(t *testing.T) {
	out, err := run(t, "score", writeFixture(t), "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Cole")
	assert.Contains(t, out, "historical win rate")
}

func TestInspect(t *testing.T) {
	out, err := run(t, "inspect", writeFixture(t), "--date-range", "ytd")
	require.NoError(t, err)
	assert.Contains(t, out, "pipeline.csv: 3 rows in range ytd (1 won, 1 lost, 1 open)")
	assert.Contains(t, out, "NumofLawyers")
	assert.Contains(t, out, "kept 3 of 3 row(s)")
}

func TestMissingFileAndBadRange(t *testing.T) {
	_, err := run(t, "analyze", filepath.Join(t.TempDir(), "nope.csv"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = run(t, "score", writeFixture(t), "--date-range", "decade")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
