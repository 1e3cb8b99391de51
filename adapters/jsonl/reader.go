package jsonl

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"bais/domain/core"
	"bais/domain/trial"
	"bais/internal/errors"
	"bais/ports"
)

// Options selects the JSON paths a record is read from. Paths use gjson
// syntax; the first path present in a record wins.
type Options struct {
	DeploymentPath    string
	ExperimentPath    string
	ConditionPaths    []string
	AnchorMonthsPath  string
	LowAnchorMonths   float64
	HighAnchorMonths  float64
	ValuePaths        []string
	DefaultDeployment string
}

// DefaultOptions matches the record layout written by the experiment runners
func DefaultOptions() Options {
	return Options{
		DeploymentPath:    "model",
		ExperimentPath:    "experimentId",
		ConditionPaths:    []string{"conditionId", "condition", "anchor"},
		AnchorMonthsPath:  "anchorMonths",
		LowAnchorMonths:   trial.DefaultLowAnchorMonths,
		HighAnchorMonths:  trial.DefaultHighAnchorMonths,
		ValuePaths:        []string{"result.sentenceMonths", "sentenceMonths", "response", "estimate"},
		DefaultDeployment: "unknown",
	}
}

// Reader reads newline-delimited JSON trial records
type Reader struct {
	path    string
	options Options
}

var _ ports.TrialSource = (*Reader)(nil)

// NewReader creates a reader for one JSONL file
func NewReader(path string, options Options) *Reader {
	return &Reader{path: path, options: options}
}

// maxLineSize bounds a single record; model transcripts can be long.
const maxLineSize = 16 * 1024 * 1024

// ReadTrials parses every line of the file. Lines that are not JSON objects
// or carry no numeric value are skipped and counted; records whose condition
// cannot be classified are counted as unknown.
func (r *Reader) ReadTrials(ctx context.Context) (*trial.Batch, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.InvalidInput(fmt.Sprintf("JSONL file not found: %s", r.path))
		}
		return nil, errors.Wrapf(err, "failed to open JSONL file %s", r.path)
	}
	defer file.Close()

	batch := &trial.Batch{Source: r.path}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		t, err := r.parseLine(line)
		switch {
		case err == core.ErrUnknownCondition:
			batch.Unknown++
		case err != nil:
			batch.Skipped++
		default:
			batch.Trials = append(batch.Trials, t)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read JSONL file %s", r.path)
	}

	if batch.Skipped > 0 || batch.Unknown > 0 {
		log.Printf("[JSONLReader] %s: skipped %d unparseable lines, %d with unknown condition", r.path, batch.Skipped, batch.Unknown)
	}
	log.Printf("[JSONLReader] %s: read %d trials from %d lines", r.path, len(batch.Trials), lineNo)

	return batch, nil
}

func (r *Reader) parseLine(line string) (trial.Trial, error) {
	if !gjson.Valid(line) {
		return trial.Trial{}, fmt.Errorf("invalid JSON")
	}
	record := gjson.Parse(line)
	if !record.IsObject() {
		return trial.Trial{}, fmt.Errorf("record is not an object")
	}

	value, ok := firstNumber(record, r.options.ValuePaths)
	if !ok {
		return trial.Trial{}, core.ErrNoValue
	}

	condition := trial.ConditionUnknown
	if label, ok := firstString(record, r.options.ConditionPaths); ok {
		condition = trial.ClassifyCondition(label)
	}
	if condition == trial.ConditionUnknown && r.options.AnchorMonthsPath != "" {
		if months := record.Get(r.options.AnchorMonthsPath); months.Type == gjson.Number {
			condition = trial.ConditionFromAnchorMonths(months.Float(), r.options.LowAnchorMonths, r.options.HighAnchorMonths)
		}
	}
	if condition == trial.ConditionUnknown {
		return trial.Trial{}, core.ErrUnknownCondition
	}

	deployment := r.options.DefaultDeployment
	if d := record.Get(r.options.DeploymentPath); d.Exists() && strings.TrimSpace(d.String()) != "" {
		deployment = strings.TrimSpace(d.String())
	}

	return trial.Trial{
		Deployment:   core.DeploymentID(deployment),
		ExperimentID: record.Get(r.options.ExperimentPath).String(),
		Condition:    condition,
		Value:        value,
	}, nil
}

func firstNumber(record gjson.Result, paths []string) (float64, bool) {
	for _, path := range paths {
		v := record.Get(path)
		switch v.Type {
		case gjson.Number:
			if f := v.Float(); trial.IsFinite(f) {
				return f, true
			}
		case gjson.String:
			if f, ok := trial.ParseValue(v.Str); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func firstString(record gjson.Result, paths []string) (string, bool) {
	for _, path := range paths {
		if v := record.Get(path); v.Exists() && v.Type != gjson.Null {
			return v.String(), true
		}
	}
	return "", false
}
