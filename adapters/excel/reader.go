package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"bais/domain/core"
	"bais/domain/trial"
	"bais/internal/errors"
	"bais/ports"
)

// Options names the columns trials are read from. Header matching is
// case-insensitive.
type Options struct {
	Sheet             string
	DeploymentColumn  string
	ConditionColumn   string
	ValueColumn       string
	DefaultDeployment string
}

// DefaultOptions reads the first sheet with columns "model", "condition" and "value"
func DefaultOptions() Options {
	return Options{
		DeploymentColumn:  "model",
		ConditionColumn:   "condition",
		ValueColumn:       "value",
		DefaultDeployment: "unknown",
	}
}

// DataReader handles reading trial tables from Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	options  Options
}

var _ ports.TrialSource = (*DataReader)(nil)

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, options Options) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, options: options}
}

// ReadTrials reads the table and converts each data row into a trial
func (r *DataReader) ReadTrials(ctx context.Context) (*trial.Batch, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath))
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType)))
	}

	return r.processRows(rows)
}

// readExcelRows reads the configured sheet, or the first one
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	sheet := r.options.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read CSV file: %v", err))
	}
	log.Printf("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))
	return rows, nil
}

// processRows maps header names to indexes and converts the data rows
func (r *DataReader) processRows(rows [][]string) (*trial.Batch, error) {
	columns := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}

	conditionIdx, ok := columns[strings.ToLower(r.options.ConditionColumn)]
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("condition column %q not found", r.options.ConditionColumn))
	}
	valueIdx, ok := columns[strings.ToLower(r.options.ValueColumn)]
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("value column %q not found", r.options.ValueColumn))
	}
	deploymentIdx, hasDeployment := columns[strings.ToLower(r.options.DeploymentColumn)]

	batch := &trial.Batch{Source: r.filePath}
	for _, row := range rows[1:] {
		value, ok := trial.ParseValue(cell(row, valueIdx))
		if !ok {
			batch.Skipped++
			continue
		}
		condition := trial.ClassifyCondition(cell(row, conditionIdx))
		if condition == trial.ConditionUnknown {
			batch.Unknown++
			continue
		}

		deployment := r.options.DefaultDeployment
		if hasDeployment {
			if d := strings.TrimSpace(cell(row, deploymentIdx)); d != "" {
				deployment = d
			}
		}

		batch.Trials = append(batch.Trials, trial.Trial{
			Deployment: core.DeploymentID(deployment),
			Condition:  condition,
			Value:      value,
		})
	}

	log.Printf("[DataReader] %s file processed (%d trials, %d skipped, %d unknown condition)",
		strings.ToUpper(r.fileType), len(batch.Trials), batch.Skipped, batch.Unknown)

	return batch, nil
}

// cell tolerates short rows; excelize trims trailing empty cells
func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
