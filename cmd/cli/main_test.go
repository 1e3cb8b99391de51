package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bais/internal/config"
	"bais/internal/errors"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(config.Default())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDescribeValues(t *testing.T) {
	out, err := run(t, "describe", "1", "2", "3", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "2.500")
	assert.Contains(t, out, "95% CI for the mean")

	_, err = run(t, "describe", "1", "x")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = run(t, "describe")
	assert.True(t, errors.IsPrecondition(err))
}

func TestProportion(t *testing.T) {
	out, err := run(t, "proportion", "50", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "proportion=0.5000")
	assert.NotContains(t, out, "p=0.5000")
	assert.Contains(t, out, "Wilson 95% CI: [0.40")

	out, err = run(t, "proportion", "8", "10", "2", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "z=2.683")

	_, err = run(t, "proportion", "1", "2", "3")
	assert.Error(t, err)
}

func TestChisq(t *testing.T) {
	out, err := run(t, "chisq", "20,5;5,20")
	require.NoError(t, err)
	assert.Contains(t, out, "χ²(1)=18.000, p<.001")

	out, err = run(t, "chisq", "10,10,10", "--expected", "10,10,10")
	require.NoError(t, err)
	assert.Contains(t, out, "χ²(2)=0.000, p=1.000")

	_, err = run(t, "chisq", "1,2")
	assert.True(t, errors.IsPrecondition(err))
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.jsonl")
	var lines []string
	for _, v := range []string{"10", "11", "9", "12", "10"} {
		lines = append(lines, `{"model":"openai/gpt-4o","conditionId":"high-anchor-9mo","result":{"sentenceMonths":`+v+`}}`)
	}
	for _, v := range []string{"1", "2", "0", "3", "1"} {
		lines = append(lines, `{"model":"openai/gpt-4o","conditionId":"low-anchor-3mo","result":{"sentenceMonths":`+v+`}}`)
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))

	out, err := run(t, "compare", path)
	require.NoError(t, err)
	assert.Contains(t, out, "# Anchoring Analysis")
	assert.Contains(t, out, "| gpt-4o |")
	assert.Contains(t, out, "[7.8, 10.2]")

	htmlPath := filepath.Join(dir, "report.html")
	_, err = run(t, "compare", path, "--format", "html", "--out", htmlPath)
	require.NoError(t, err)
	page, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<table>")

	out, err = run(t, "compare", path, "--deployment", "openai/gpt-4o")
	require.NoError(t, err)
	assert.Contains(t, out, `"anchoringEffect": 9`)

	_, err = run(t, "compare", filepath.Join(dir, "results.parquet"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = run(t, "compare", path, "--correction", "fdr")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = run(t, "compare", path, "--log-level", "debug")
	require.NoError(t, err)
	_, err = run(t, "compare", path, "--log-level", "chatty")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestParseTable(t *testing.T) {
	rows, err := parseTable("1,2; 3,4;")
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, rows)

	_, err = parseTable("1,a")
	assert.Error(t, err)
}
