package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"storagefacts/pkg/facts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ldevFacts = `{"ldevs": {"data": [{"status": "Defined"}, {"status": "Blocked"}]}}`

func writeFacts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "all_storage_facts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGEFACTS_FILE", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandsEndToEnd(t *testing.T) {
	file := writeFacts(t, ldevFacts)
	dir := t.TempDir()

	filtered := filepath.Join(dir, "out.json")
	out, err := run(t, "-f", file, "filter", "ldevs", "status", "Defined", "-o", filtered)
	require.NoError(t, err)
	assert.Contains(t, out, "Filtered 1 items from 'ldevs' where status=Defined")

	data, err := os.ReadFile(filtered)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": [{"status": "Defined"}]}`, string(data))

	out, err = run(t, "-f", file, "count", "ldevs")
	require.NoError(t, err)
	assert.Equal(t, "Category 'ldevs' contains 2 items\n", out)

	csvPath := filepath.Join(dir, "out.csv")
	out, err = run(t, "-f", file, "export", "ldevs", "-o", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 items from 'ldevs'")
	assert.Contains(t, out, "Columns: status")

	data, err = os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "status\nDefined\nBlocked\n", string(data))
}

func TestSummaryJSON(t *testing.T) {
	file := writeFacts(t, `{
		"ldevs": {"data": [{"id": 1}, {"id": 2}]},
		"storage_system": {"data": {"model": "VSP"}},
		"snmp_settings": {}
	}`)

	out, err := run(t, "-f", file, "--json", "summary")
	require.NoError(t, err)

	var summary facts.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, 3, summary.TotalItems)
	assert.Equal(t, []facts.CategoryCount{
		{Category: "ldevs", Count: 2},
		{Category: "snmp_settings", Count: 0},
		{Category: "storage_system", Count: 1},
	}, summary.Categories)
}

func TestSummaryStyled(t *testing.T) {
	file := writeFacts(t, ldevFacts)

	out, err := run(t, "-f", file, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Storage Facts Summary")
	assert.Contains(t, out, "ldevs")
	assert.Regexp(t, `Total Items:\s+2`, out)
	assert.Regexp(t, `Size:\s+\d+ B`, out)
}

func TestListAndExtract(t *testing.T) {
	file := writeFacts(t, `{"users": {"data": []}, "clpr": {"data": [{"id": 0}]}}`)

	out, err := run(t, "-f", file, "--json", "list")
	require.NoError(t, err)
	assert.JSONEq(t, `["clpr", "users"]`, out)

	out, err = run(t, "-f", file, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "- clpr")

	extracted := filepath.Join(t.TempDir(), "clpr.json")
	_, err = run(t, "-f", file, "extract", "clpr", "-o", extracted)
	require.NoError(t, err)
	data, err := os.ReadFile(extracted)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data": [{"id": 0}]}`, string(data))
}

func TestValidateExitStatus(t *testing.T) {
	warnOnly := writeFacts(t, `{"ldevs": {"data": []}, "clpr": {}}`)
	out, err := run(t, "-f", warnOnly, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "No errors found")
	assert.Contains(t, out, "Category 'clpr' missing 'data' key")

	badRoot := writeFacts(t, `[]`)
	out, err = run(t, "-f", badRoot, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "Root element is not an object")
}

func TestDiffJSON(t *testing.T) {
	first := writeFacts(t, `{"ldevs": {"data": [1, 2]}, "clpr": {"data": []}}`)
	second := writeFacts(t, `{"ldevs": {"data": [1]}, "users": {"data": []}}`)

	out, err := run(t, "-f", first, "--json", "diff", "-c", second)
	require.NoError(t, err)

	var report facts.DiffReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"clpr"}, report.OnlyInFirst)
	assert.Equal(t, []string{"users"}, report.OnlyInSecond)
	assert.Equal(t, []facts.CountComparison{
		{Category: "ldevs", FirstCount: 2, SecondCount: 1, Equal: false},
	}, report.Common)

	out, err = run(t, "-f", first, "diff", "-c", second)
	require.NoError(t, err)
	assert.Contains(t, out, "Common categories (1):")
	assert.Contains(t, out, "≠")
}

func TestCommandErrors(t *testing.T) {
	file := writeFacts(t, ldevFacts)
	empty := writeFacts(t, `{"ldevs": {"data": []}}`)
	invalid := writeFacts(t, `{"ldevs": `)
	out := filepath.Join(t.TempDir(), "out")

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{"missing file", []string{"-f", filepath.Join(t.TempDir(), "nope.json"), "summary"}, facts.ErrFileNotFound},
		{"invalid json", []string{"-f", invalid, "list"}, facts.ErrInvalidJSON},
		{"missing category", []string{"-f", file, "count", "journals"}, facts.ErrCategoryNotFound},
		{"extract missing category", []string{"-f", file, "extract", "journals", "-o", out}, facts.ErrCategoryNotFound},
		{"export empty category", []string{"-f", empty, "export", "ldevs", "-o", out}, facts.ErrNoItems},
		{"diff unreadable file", []string{"-f", file, "diff", "-c", filepath.Join(t.TempDir(), "nope.json")}, facts.ErrFileNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("file flag required", func(t *testing.T) {
		_, err := run(t, "summary")
		assert.ErrorContains(t, err, `"file"`)
	})

	t.Run("output flag required", func(t *testing.T) {
		_, err := run(t, "-f", file, "extract", "ldevs")
		assert.Error(t, err)
	})
}
